package googleanalytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

type Client interface {
	RunDailyReport(ctx context.Context, accessToken, propertyID, startDate, endDate string) ([]ReportRow, error)
	CountAccountSummaries(ctx context.Context, accessToken string) (int, error)
}

// ReportRow é uma linha bruta do relatório do GA4: a dimensão de data no
// formato YYYYMMDD do fornecedor mais os valores de métrica como texto
type ReportRow struct {
	Date    string
	Metrics []string
}

type AnalyticsClient struct {
	cfg        config.GoogleAnalytics
	httpClient *http.Client
}

func NewClient(cfg config.GoogleAnalytics) Client {
	return &AnalyticsClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type runReportRequest struct {
	Dimensions []nameRef   `json:"dimensions"`
	Metrics    []nameRef   `json:"metrics"`
	DateRanges []dateRange `json:"dateRanges"`
}

type nameRef struct {
	Name string `json:"name"`
}

type dateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type runReportResponse struct {
	Rows []struct {
		DimensionValues []struct {
			Value string `json:"value"`
		} `json:"dimensionValues"`
		MetricValues []struct {
			Value string `json:"value"`
		} `json:"metricValues"`
	} `json:"rows"`
}

// Métricas na ordem em que o serviço as consome ao montar as linhas
var reportMetrics = []string{
	"sessions",
	"totalUsers",
	"bounceRate",
	"averageSessionDuration",
	"purchaseRevenue",
	"transactions",
}

// RunDailyReport executa o relatório dimensionado por data na Data API do GA4
func (c *AnalyticsClient) RunDailyReport(ctx context.Context, accessToken, propertyID, startDate, endDate string) ([]ReportRow, error) {
	request := runReportRequest{
		Dimensions: []nameRef{{Name: "date"}},
		DateRanges: []dateRange{{StartDate: startDate, EndDate: endDate}},
	}
	for _, metric := range reportMetrics {
		request.Metrics = append(request.Metrics, nameRef{Name: metric})
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceGoogleAnalytics, "erro ao montar requisição", err)
	}

	requestURL := fmt.Sprintf("%s/properties/%s:runReport", c.cfg.DataURL, propertyID)

	body, err := c.doRequest(ctx, http.MethodPost, requestURL, accessToken, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	var response runReportResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, domain.NewVendorError(domain.ServiceGoogleAnalytics, "resposta malformada do Google Analytics", err)
	}

	rows := make([]ReportRow, 0, len(response.Rows))
	for _, row := range response.Rows {
		if len(row.DimensionValues) == 0 {
			continue
		}

		reportRow := ReportRow{Date: row.DimensionValues[0].Value}
		for _, metricValue := range row.MetricValues {
			reportRow.Metrics = append(reportRow.Metrics, metricValue.Value)
		}

		rows = append(rows, reportRow)
	}

	return rows, nil
}

type accountSummariesResponse struct {
	AccountSummaries []struct {
		Account string `json:"account"`
	} `json:"accountSummaries"`
}

// CountAccountSummaries é a sondagem barata do verificador de status
func (c *AnalyticsClient) CountAccountSummaries(ctx context.Context, accessToken string) (int, error) {
	requestURL := fmt.Sprintf("%s/accountSummaries", c.cfg.AdminURL)

	body, err := c.doRequest(ctx, http.MethodGet, requestURL, accessToken, nil)
	if err != nil {
		return 0, err
	}

	var response accountSummariesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return 0, domain.NewVendorError(domain.ServiceGoogleAnalytics, "resposta malformada do Google Analytics", err)
	}

	return len(response.AccountSummaries), nil
}

func (c *AnalyticsClient) doRequest(ctx context.Context, method, requestURL, accessToken string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, requestURL, payload)
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceGoogleAnalytics, "erro ao criar requisição", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, domain.NewTimeoutError(domain.ServiceGoogleAnalytics, "timeout na API do Google Analytics", err)
		}
		return nil, domain.NewVendorError(domain.ServiceGoogleAnalytics, "erro ao chamar a API do Google Analytics", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceGoogleAnalytics, "erro ao ler resposta", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyResponse(resp.StatusCode, string(body))
	}

	return body, nil
}

// Vocabulário de erros do GA4; mesmo formato do Google Ads mas mantido
// separado porque os textos divergem entre as APIs
func classifyResponse(status int, body string) *domain.AnalysisError {
	switch {
	case strings.Contains(body, "PERMISSION_DENIED") || strings.Contains(body, "insufficient authentication scopes"):
		return domain.NewAuthError(domain.ServiceGoogleAnalytics, domain.ReasonPermission,
			"acesso ao Google Analytics negado, verifique os escopos concedidos",
			fmt.Errorf("status %d: %s", status, body))
	case strings.Contains(body, "UNAUTHENTICATED") || strings.Contains(body, "invalid_grant"):
		return domain.NewAuthError(domain.ServiceGoogleAnalytics, domain.ReasonTokenExpired,
			"sessão do Google Analytics expirada, reconecte a conta",
			fmt.Errorf("status %d: %s", status, body))
	case strings.Contains(body, "INVALID_ARGUMENT"):
		return domain.NewValidationError(domain.ServiceGoogleAnalytics,
			"propriedade do Google Analytics inválida")
	}

	return domain.NewVendorError(domain.ServiceGoogleAnalytics,
		"erro na API do Google Analytics",
		fmt.Errorf("status %d: %s", status, body))
}
