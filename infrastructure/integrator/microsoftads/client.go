package microsoftads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

// AuthContext agrupa as credenciais exigidas nos cabeçalhos de toda
// chamada ao Microsoft Ads: bearer token do usuário, developer token da
// aplicação e os IDs de cliente/conta
type AuthContext struct {
	AccessToken       string
	CustomerID        string
	CustomerAccountID string
}

// PollResult é o estado devolvido pelo endpoint de polling de relatório
type PollResult struct {
	Status      string
	DownloadURL string
}

type Client interface {
	SubmitReport(ctx context.Context, auth AuthContext, startDate, endDate string) (string, error)
	PollReport(ctx context.Context, auth AuthContext, reportRequestID string) (*PollResult, error)
	DownloadReport(ctx context.Context, downloadURL string) ([]byte, error)
	CountAccounts(ctx context.Context, auth AuthContext) (int, error)
}

type MicrosoftAdsClient struct {
	cfg        config.MicrosoftAds
	httpClient *http.Client
}

func NewClient(cfg config.MicrosoftAds) Client {
	return &MicrosoftAdsClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type reportDate struct {
	Day   int `json:"Day"`
	Month int `json:"Month"`
	Year  int `json:"Year"`
}

type submitReportRequest struct {
	ReportRequest struct {
		Type        string   `json:"Type"`
		Format      string   `json:"Format"`
		Aggregation string   `json:"Aggregation"`
		Columns     []string `json:"Columns"`
		Scope       struct {
			AccountIds []string `json:"AccountIds"`
		} `json:"Scope"`
		Time struct {
			CustomDateRangeStart reportDate `json:"CustomDateRangeStart"`
			CustomDateRangeEnd   reportDate `json:"CustomDateRangeEnd"`
		} `json:"Time"`
	} `json:"ReportRequest"`
}

type submitReportResponse struct {
	ReportRequestID string `json:"ReportRequestId"`
}

// SubmitReport envia a definição do relatório de performance de
// campanhas (agregação Summary, formato CSV, período customizado) e
// devolve o ReportRequestId gerado pelo fornecedor
func (c *MicrosoftAdsClient) SubmitReport(ctx context.Context, auth AuthContext, startDate, endDate string) (string, error) {
	start, err := time.Parse(time.DateOnly, startDate)
	if err != nil {
		return "", domain.NewValidationError(domain.ServiceMicrosoftAds, "data de início inválida")
	}
	end, err := time.Parse(time.DateOnly, endDate)
	if err != nil {
		return "", domain.NewValidationError(domain.ServiceMicrosoftAds, "data de fim inválida")
	}

	request := submitReportRequest{}
	request.ReportRequest.Type = "CampaignPerformanceReportRequest"
	request.ReportRequest.Format = "Csv"
	request.ReportRequest.Aggregation = "Summary"
	request.ReportRequest.Columns = []string{"CampaignName", "Impressions", "Clicks", "Spend"}
	request.ReportRequest.Scope.AccountIds = []string{auth.CustomerAccountID}
	request.ReportRequest.Time.CustomDateRangeStart = reportDate{Day: start.Day(), Month: int(start.Month()), Year: start.Year()}
	request.ReportRequest.Time.CustomDateRangeEnd = reportDate{Day: end.Day(), Month: int(end.Month()), Year: end.Year()}

	body, err := c.doPost(ctx, auth, c.cfg.ReportingURL+"/GenerateReport/Submit", request)
	if err != nil {
		return "", err
	}

	var response submitReportResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", domain.NewVendorError(domain.ServiceMicrosoftAds, "resposta malformada na submissão do relatório", err)
	}

	return response.ReportRequestID, nil
}

type pollReportRequest struct {
	ReportRequestID string `json:"ReportRequestId"`
}

type pollReportResponse struct {
	ReportRequestStatus struct {
		Status            string `json:"Status"`
		ReportDownloadURL string `json:"ReportDownloadUrl"`
	} `json:"ReportRequestStatus"`
}

// PollReport consulta o estado de geração do relatório
func (c *MicrosoftAdsClient) PollReport(ctx context.Context, auth AuthContext, reportRequestID string) (*PollResult, error) {
	body, err := c.doPost(ctx, auth, c.cfg.ReportingURL+"/GenerateReport/Poll", pollReportRequest{ReportRequestID: reportRequestID})
	if err != nil {
		return nil, err
	}

	var response pollReportResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "resposta malformada no polling do relatório", err)
	}

	return &PollResult{
		Status:      response.ReportRequestStatus.Status,
		DownloadURL: response.ReportRequestStatus.ReportDownloadURL,
	}, nil
}

// DownloadReport baixa o zip do relatório pronto
func (c *MicrosoftAdsClient) DownloadReport(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "erro ao criar requisição de download", err)
	}

	client := &http.Client{
		Timeout: time.Duration(c.cfg.DownloadTimeoutSecs) * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "erro ao baixar o relatório", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewVendorError(domain.ServiceMicrosoftAds,
			"erro ao baixar o relatório",
			fmt.Errorf("status %d", resp.StatusCode))
	}

	return io.ReadAll(resp.Body)
}

type searchAccountsRequest struct {
	Predicates []struct {
		Field    string `json:"Field"`
		Operator string `json:"Operator"`
		Value    string `json:"Value"`
	} `json:"Predicates"`
	Ordering []any `json:"Ordering"`
	PageInfo struct {
		Index int `json:"Index"`
		Size  int `json:"Size"`
	} `json:"PageInfo"`
}

type searchAccountsResponse struct {
	Accounts []struct {
		ID   json.Number `json:"Id"`
		Name string      `json:"Name"`
	} `json:"Accounts"`
}

// CountAccounts é a sondagem barata do verificador de status: busca as
// contas do cliente na API de Customer Management
func (c *MicrosoftAdsClient) CountAccounts(ctx context.Context, auth AuthContext) (int, error) {
	request := searchAccountsRequest{}
	request.Predicates = append(request.Predicates, struct {
		Field    string `json:"Field"`
		Operator string `json:"Operator"`
		Value    string `json:"Value"`
	}{Field: "UserId", Operator: "Equals", Value: auth.CustomerID})
	request.PageInfo.Index = 0
	request.PageInfo.Size = 100

	body, err := c.doPost(ctx, auth, c.cfg.CustomerMgmtURL+"/Accounts/Search", request)
	if err != nil {
		return 0, err
	}

	var response searchAccountsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return 0, domain.NewVendorError(domain.ServiceMicrosoftAds, "resposta malformada na busca de contas", err)
	}

	return len(response.Accounts), nil
}

func (c *MicrosoftAdsClient) doPost(ctx context.Context, auth AuthContext, requestURL string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "erro ao montar requisição", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "erro ao criar requisição", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+auth.AccessToken)
	req.Header.Set("DeveloperToken", c.cfg.DeveloperToken)
	req.Header.Set("CustomerId", auth.CustomerID)
	req.Header.Set("CustomerAccountId", auth.CustomerAccountID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, domain.NewTimeoutError(domain.ServiceMicrosoftAds, "timeout na API do Microsoft Ads", err)
		}
		return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "erro ao chamar a API do Microsoft Ads", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewVendorError(domain.ServiceMicrosoftAds, "erro ao ler resposta", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyResponse(resp.StatusCode, string(body))
	}

	return body, nil
}
