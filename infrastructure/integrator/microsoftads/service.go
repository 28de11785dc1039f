package microsoftads

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
	"github.com/vfg2006/ads-analytics-api/pkg/utils"
)

// Service é o adaptador de análise do Microsoft Ads. Diferente dos
// outros fornecedores, o relatório é assíncrono: a agregação passa pelo
// ciclo submit/poll/download conduzido pelo Aggregator.
type Service struct {
	aggregator *Aggregator
	client     Client
}

func New(client Client, cfg config.MicrosoftAds) *Service {
	return &Service{
		aggregator: NewAggregator(client, cfg),
		client:     client,
	}
}

func (s *Service) Analyze(ctx context.Context, params *domain.AnalysisParams, credential *domain.Credential) (*domain.AnalysisResult, error) {
	if !params.HasDateRange() {
		return nil, domain.NewValidationError(domain.ServiceMicrosoftAds, "período de datas é obrigatório")
	}
	if err := utils.ValidateDateRange(params.StartDate, params.EndDate); err != nil {
		return nil, domain.NewValidationError(domain.ServiceMicrosoftAds, err.Error())
	}

	if params.AccountID == "" {
		return nil, domain.NewValidationError(domain.ServiceMicrosoftAds, "ID do cliente é obrigatório")
	}
	if params.CustomerAccountID == "" {
		return nil, domain.NewValidationError(domain.ServiceMicrosoftAds, "ID da conta de anúncios é obrigatório")
	}

	if credential == nil || credential.AccessToken == "" {
		return nil, domain.NewAuthError(domain.ServiceMicrosoftAds, domain.ReasonTokenExpired,
			"conta do Microsoft Ads não conectada", nil)
	}

	auth := AuthContext{
		AccessToken:       credential.AccessToken,
		CustomerID:        params.AccountID,
		CustomerAccountID: params.CustomerAccountID,
	}

	rows, err := s.aggregator.Run(ctx, auth, params.StartDate, params.EndDate)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"customer_account_id": params.CustomerAccountID,
		"rows":                len(rows),
	}).Debug("microsoftads: relatório de campanhas processado")

	return aggregate(rows), nil
}

func aggregate(rows []ReportRow) *domain.AnalysisResult {
	result := &domain.AnalysisResult{
		Service:     domain.ServiceMicrosoftAds,
		RawRowCount: len(rows),
	}

	var totalSpend float64

	for _, row := range rows {
		result.Impressions += row.Impressions
		result.Clicks += row.Clicks
		totalSpend += row.Spend

		result.Campaigns = append(result.Campaigns, domain.CampaignMetrics{
			Name:        row.CampaignName,
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Cost:        utils.FormatCurrency(row.Spend),
			CTR:         utils.FormatCTR(row.Clicks, row.Impressions),
		})
	}

	result.Cost = utils.FormatCurrency(totalSpend)
	result.CTR = utils.FormatCTR(result.Clicks, result.Impressions)

	return result
}

// CountAccounts é a sondagem usada pelo verificador de status
func (s *Service) CountAccounts(ctx context.Context, credential *domain.Credential) (int, error) {
	if credential == nil || credential.AccessToken == "" {
		return 0, domain.NewAuthError(domain.ServiceMicrosoftAds, domain.ReasonTokenExpired,
			"conta do Microsoft Ads não conectada", nil)
	}

	return s.client.CountAccounts(ctx, AuthContext{AccessToken: credential.AccessToken})
}
