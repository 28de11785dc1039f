package googleads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

// CampaignRow é uma linha de métricas de campanha devolvida pela busca GAQL
type CampaignRow struct {
	Name        string
	Impressions int64
	Clicks      int64
	CostMicros  int64
	Conversions float64
}

type Client interface {
	SearchCampaignMetrics(ctx context.Context, accessToken, customerID, startDate, endDate string) ([]CampaignRow, error)
	ListAccessibleCustomers(ctx context.Context, accessToken string) ([]string, error)
}

type GoogleAdsClient struct {
	cfg        config.GoogleAds
	httpClient *http.Client
}

func NewClient(cfg config.GoogleAds) Client {
	return &GoogleAdsClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type searchRequest struct {
	Query string `json:"query"`
}

// A API REST serializa int64 como string; os campos numéricos chegam
// como texto e são convertidos na montagem das linhas
type searchResponse struct {
	Results []struct {
		Campaign struct {
			Name string `json:"name"`
		} `json:"campaign"`
		Metrics struct {
			Impressions string  `json:"impressions"`
			Clicks      string  `json:"clicks"`
			CostMicros  string  `json:"costMicros"`
			Conversions float64 `json:"conversions"`
		} `json:"metrics"`
	} `json:"results"`
}

// SearchCampaignMetrics executa a consulta GAQL de performance de
// campanhas filtrada pelo período informado
func (c *GoogleAdsClient) SearchCampaignMetrics(ctx context.Context, accessToken, customerID, startDate, endDate string) ([]CampaignRow, error) {
	query := fmt.Sprintf(
		"SELECT campaign.name, metrics.impressions, metrics.clicks, metrics.cost_micros, metrics.conversions "+
			"FROM campaign WHERE segments.date BETWEEN '%s' AND '%s'",
		startDate, endDate,
	)

	requestURL := fmt.Sprintf("%s/customers/%s/googleAds:search", c.cfg.BaseURL, customerID)

	payload, err := json.Marshal(searchRequest{Query: query})
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceGoogleAds, "erro ao montar requisição", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, requestURL, accessToken, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		logrus.WithError(err).Error("googleads: erro ao decodificar resposta da busca")
		return nil, domain.NewVendorError(domain.ServiceGoogleAds, "resposta malformada do Google Ads", err)
	}

	rows := make([]CampaignRow, 0, len(response.Results))
	for _, result := range response.Results {
		impressions, _ := strconv.ParseInt(result.Metrics.Impressions, 10, 64)
		clicks, _ := strconv.ParseInt(result.Metrics.Clicks, 10, 64)
		costMicros, _ := strconv.ParseInt(result.Metrics.CostMicros, 10, 64)

		rows = append(rows, CampaignRow{
			Name:        result.Campaign.Name,
			Impressions: impressions,
			Clicks:      clicks,
			CostMicros:  costMicros,
			Conversions: result.Metrics.Conversions,
		})
	}

	return rows, nil
}

type listCustomersResponse struct {
	ResourceNames []string `json:"resourceNames"`
}

// ListAccessibleCustomers é a sondagem barata usada pelo verificador de
// status: lista os clientes acessíveis pelo token sem consultar métricas
func (c *GoogleAdsClient) ListAccessibleCustomers(ctx context.Context, accessToken string) ([]string, error) {
	requestURL := fmt.Sprintf("%s/customers:listAccessibleCustomers", c.cfg.BaseURL)

	body, err := c.doRequest(ctx, http.MethodGet, requestURL, accessToken, nil)
	if err != nil {
		return nil, err
	}

	var response listCustomersResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, domain.NewVendorError(domain.ServiceGoogleAds, "resposta malformada do Google Ads", err)
	}

	customers := make([]string, 0, len(response.ResourceNames))
	for _, resourceName := range response.ResourceNames {
		customers = append(customers, strings.TrimPrefix(resourceName, "customers/"))
	}

	return customers, nil
}

func (c *GoogleAdsClient) doRequest(ctx context.Context, method, requestURL, accessToken string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, requestURL, payload)
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceGoogleAds, "erro ao criar requisição", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", c.cfg.DeveloperToken)
	if c.cfg.LoginCustomerID != "" {
		req.Header.Set("login-customer-id", c.cfg.LoginCustomerID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, domain.NewTimeoutError(domain.ServiceGoogleAds, "timeout na API do Google Ads", err)
		}
		return nil, domain.NewVendorError(domain.ServiceGoogleAds, "erro ao chamar a API do Google Ads", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceGoogleAds, "erro ao ler resposta", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyResponse(resp.StatusCode, string(body))
	}

	return body, nil
}
