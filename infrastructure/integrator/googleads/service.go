package googleads

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/infrastructure/integrator/googleoauth"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
	"github.com/vfg2006/ads-analytics-api/pkg/utils"
)

// Service é o adaptador de análise do Google Ads: valida os parâmetros,
// renova o access token a partir do refresh token armazenado, executa a
// busca de campanhas e agrega o resultado no formato normalizado.
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
		return nil, domain.NewValidationError(domain.ServiceGoogleAds, "período de datas é obrigatório")
	}
	if err := utils.ValidateDateRange(params.StartDate, params.EndDate); err != nil {
		return nil, domain.NewValidationError(domain.ServiceGoogleAds, err.Error())
	}

	customerID := utils.DigitsOnly(params.CustomerID)
	if len(customerID) != 10 {
		return nil, domain.NewValidationError(domain.ServiceGoogleAds,
			"o ID de cliente do Google Ads deve ter exatamente 10 dígitos")
	}

	if credential == nil || credential.RefreshToken == "" {
		return nil, domain.NewAuthError(domain.ServiceGoogleAds, domain.ReasonTokenExpired,
			"conta do Google Ads não conectada ou sem refresh token", nil)
	}

	token, err := s.tokens.RefreshAccessToken(ctx, domain.ServiceGoogleAds, credential.RefreshToken)
	if err != nil {
		return nil, err
	}

	rows, err := s.client.SearchCampaignMetrics(ctx, token.AccessToken, customerID, params.StartDate, params.EndDate)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"customer_id": customerID,
		"rows":        len(rows),
	}).Debug("googleads: campanhas recebidas da API")

	return aggregate(rows), nil
}

// aggregate soma as métricas de todas as campanhas e deriva CTR e custo
// por conversão. Custos chegam em micros e são convertidos para moeda.
func aggregate(rows []CampaignRow) *domain.AnalysisResult {
	result := &domain.AnalysisResult{
		Service:     domain.ServiceGoogleAds,
		RawRowCount: len(rows),
	}

	var totalCostMicros int64

	for _, row := range rows {
		result.Impressions += row.Impressions
		result.Clicks += row.Clicks
		result.Conversions += row.Conversions
		totalCostMicros += row.CostMicros

		result.Campaigns = append(result.Campaigns, domain.CampaignMetrics{
			Name:        row.Name,
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Cost:        utils.FormatCurrency(float64(row.CostMicros) / 1e6),
			CTR:         utils.FormatCTR(row.Clicks, row.Impressions),
			Conversions: row.Conversions,
		})
	}

	totalCost := float64(totalCostMicros) / 1e6
	result.Cost = utils.FormatCurrency(totalCost)
	result.CTR = utils.FormatCTR(result.Clicks, result.Impressions)
	result.CostPerConversion = utils.FormatCostPerConversion(totalCost, result.Conversions)

	return result
}

// CountAccounts é a sondagem usada pelo verificador de status: conta os
// clientes acessíveis pelo token sem buscar métricas
func (s *Service) CountAccounts(ctx context.Context, credential *domain.Credential) (int, error) {
	if credential == nil || credential.RefreshToken == "" {
		return 0, domain.NewAuthError(domain.ServiceGoogleAds, domain.ReasonTokenExpired,
			"conta do Google Ads não conectada ou sem refresh token", nil)
	}

	token, err := s.tokens.RefreshAccessToken(ctx, domain.ServiceGoogleAds, credential.RefreshToken)
	if err != nil {
		return 0, err
	}

	customers, err := s.client.ListAccessibleCustomers(ctx, token.AccessToken)
	if err != nil {
		return 0, err
	}

	return len(customers), nil
}
