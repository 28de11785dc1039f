package googleanalytics

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/infrastructure/integrator/googleoauth"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
	"github.com/vfg2006/ads-analytics-api/pkg/utils"
)

// Service é o adaptador de análise do Google Analytics. Diferente dos
// adaptadores de anúncios, a saída deste fornecedor é orientada a linhas
// por dia; o resultado carrega Rows em vez de totais agregados.
type Service struct {
	client Client
	tokens *googleoauth.Exchanger
}

func New(client Client, tokens *googleoauth.Exchanger) *Service {
	return &Service{
		client: client,
		tokens: tokens,
	}
}

func (s *Service) Analyze(ctx context.Context, params *domain.AnalysisParams, credential *domain.Credential) (*domain.AnalysisResult, error) {
	if !params.HasDateRange() {
		return nil, domain.NewValidationError(domain.ServiceGoogleAnalytics, "período de datas é obrigatório")
	}
	if err := utils.ValidateDateRange(params.StartDate, params.EndDate); err != nil {
		return nil, domain.NewValidationError(domain.ServiceGoogleAnalytics, err.Error())
	}

	if params.PropertyID == "" {
		return nil, domain.NewValidationError(domain.ServiceGoogleAnalytics, "ID da propriedade é obrigatório")
	}

	if credential == nil || credential.RefreshToken == "" {
		return nil, domain.NewAuthError(domain.ServiceGoogleAnalytics, domain.ReasonTokenExpired,
			"conta do Google Analytics não conectada ou sem refresh token", nil)
	}

	token, err := s.tokens.RefreshAccessToken(ctx, domain.ServiceGoogleAnalytics, credential.RefreshToken)
	if err != nil {
		return nil, err
	}

	rows, err := s.client.RunDailyReport(ctx, token.AccessToken, params.PropertyID, params.StartDate, params.EndDate)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"property_id": params.PropertyID,
		"rows":        len(rows),
	}).Debug("googleanalytics: relatório diário recebido da API")

	result := &domain.AnalysisResult{
		Service:     domain.ServiceGoogleAnalytics,
		RawRowCount: len(rows),
	}

	for _, row := range rows {
		result.Rows = append(result.Rows, buildDailyMetrics(row))
	}

	return result, nil
}

// buildDailyMetrics converte uma linha bruta do GA4 em métricas diárias,
// reformatando a dimensão YYYYMMDD para uma data legível
func buildDailyMetrics(row ReportRow) domain.DailyMetrics {
	metrics := domain.DailyMetrics{
		Date: formatReportDate(row.Date),
	}

	// A ordem dos valores segue reportMetrics na requisição
	for i, value := range row.Metrics {
		switch i {
		case 0:
			metrics.Sessions, _ = strconv.ParseInt(value, 10, 64)
		case 1:
			metrics.TotalUsers, _ = strconv.ParseInt(value, 10, 64)
		case 2:
			metrics.BounceRate, _ = strconv.ParseFloat(value, 64)
		case 3:
			metrics.AvgSessionDuration, _ = strconv.ParseFloat(value, 64)
		case 4:
			metrics.PurchaseRevenue, _ = strconv.ParseFloat(value, 64)
		case 5:
			metrics.Transactions, _ = strconv.ParseInt(value, 10, 64)
		}
	}

	return metrics
}

func formatReportDate(raw string) string {
	parsed, err := time.Parse("20060102", raw)
	if err != nil {
		// Dimensão fora do padrão esperado; devolve o valor bruto em vez
		// de perder a linha
		return raw
	}
	return parsed.Format("Jan 2, 2006")
}

// CountAccounts é a sondagem usada pelo verificador de status
func (s *Service) CountAccounts(ctx context.Context, credential *domain.Credential) (int, error) {
	if credential == nil || credential.RefreshToken == "" {
		return 0, domain.NewAuthError(domain.ServiceGoogleAnalytics, domain.ReasonTokenExpired,
			"conta do Google Analytics não conectada ou sem refresh token", nil)
	}

	token, err := s.tokens.RefreshAccessToken(ctx, domain.ServiceGoogleAnalytics, credential.RefreshToken)
	if err != nil {
		return 0, err
	}

	return s.client.CountAccountSummaries(ctx, token.AccessToken)
}
