package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

// InsightRow é uma linha de insights no nível de campanha. A Graph API
// devolve todos os valores numéricos como texto.
type InsightRow struct {
	CampaignName string `json:"campaign_name"`
	Impressions  string `json:"impressions"`
	Clicks       string `json:"clicks"`
	Spend        string `json:"spend"`
	Reach        string `json:"reach"`
}

type Client interface {
	GetCampaignInsights(ctx context.Context, accessToken, accountID, startDate, endDate string) ([]InsightRow, error)
	CountAdAccounts(ctx context.Context, accessToken string) (int, error)
}

type MetaClient struct {
	cfg        config.Meta
	httpClient *http.Client
}

func NewClient(cfg config.Meta) Client {
	return &MetaClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type insightsResponse struct {
	Data []InsightRow `json:"data"`
}

// GetCampaignInsights consulta o endpoint de insights da conta no nível
// de campanha para o período informado
func (c *MetaClient) GetCampaignInsights(ctx context.Context, accessToken, accountID, startDate, endDate string) ([]InsightRow, error) {
	baseURL := fmt.Sprintf("%s/act_%s/insights", c.cfg.URL, accountID)

	timeRange := fmt.Sprintf("{\"since\":\"%s\",\"until\":\"%s\"}", startDate, endDate)

	params := url.Values{}
	params.Add("level", "campaign")
	params.Add("fields", "campaign_name,impressions,clicks,spend,reach")
	params.Add("time_range", timeRange)
	params.Add("access_token", accessToken)

	body, err := c.doGet(ctx, baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var response insightsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		logrus.WithError(err).Error("meta: erro ao decodificar resposta de insights")
		return nil, domain.NewVendorError(domain.ServiceMetaAds, "resposta malformada da Graph API", err)
	}

	return response.Data, nil
}

type adAccountsResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

// CountAdAccounts é a sondagem barata do verificador de status: lista as
// contas de anúncio acessíveis pelo token
func (c *MetaClient) CountAdAccounts(ctx context.Context, accessToken string) (int, error) {
	params := url.Values{}
	params.Add("fields", "id,name")
	params.Add("access_token", accessToken)

	requestURL := fmt.Sprintf("%s/me/adaccounts?%s", c.cfg.URL, params.Encode())

	body, err := c.doGet(ctx, requestURL)
	if err != nil {
		return 0, err
	}

	var response adAccountsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return 0, domain.NewVendorError(domain.ServiceMetaAds, "resposta malformada da Graph API", err)
	}

	return len(response.Data), nil
}

func (c *MetaClient) doGet(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceMetaAds, "erro ao criar requisição", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, domain.NewTimeoutError(domain.ServiceMetaAds, "timeout na Graph API do Meta", err)
		}
		return nil, domain.NewVendorError(domain.ServiceMetaAds, "erro ao chamar a Graph API do Meta", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceMetaAds, "erro ao ler resposta", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyResponse(resp.StatusCode, string(body))
	}

	return body, nil
}
