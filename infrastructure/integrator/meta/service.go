package meta

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
	"github.com/vfg2006/ads-analytics-api/pkg/utils"
)

// Service é o adaptador de análise do Meta Ads. O token usado segue duas
// rotas: o usuário pode colar um token próprio na consulta (tokens de
// system user de longa duração) ou, na ausência dele, usa-se a
// credencial OAuth armazenada.
type Service struct {
	client Client
}

func New(client Client) *Service {
	return &Service{
		client: client,
	}
}

func (s *Service) Analyze(ctx context.Context, params *domain.AnalysisParams, credential *domain.Credential) (*domain.AnalysisResult, error) {
	if !params.HasDateRange() {
		return nil, domain.NewValidationError(domain.ServiceMetaAds, "período de datas é obrigatório")
	}
	if err := utils.ValidateDateRange(params.StartDate, params.EndDate); err != nil {
		return nil, domain.NewValidationError(domain.ServiceMetaAds, err.Error())
	}

	if params.AccountID == "" {
		return nil, domain.NewValidationError(domain.ServiceMetaAds, "ID da conta de anúncios é obrigatório")
	}

	accessToken := params.AccessToken
	if accessToken == "" {
		if credential == nil || credential.AccessToken == "" {
			return nil, domain.NewAuthError(domain.ServiceMetaAds, domain.ReasonTokenExpired,
				"conta do Meta não conectada e nenhum token informado na consulta", nil)
		}
		accessToken = credential.AccessToken
	}

	accountID := utils.DigitsOnly(params.AccountID)

	rows, err := s.client.GetCampaignInsights(ctx, accessToken, accountID, params.StartDate, params.EndDate)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"rows":       len(rows),
	}).Debug("meta: insights de campanha recebidos da API")

	return aggregate(rows), nil
}

// aggregate soma impressões, cliques, investimento e alcance de todas as
// linhas de campanha devolvidas pela Graph API
func aggregate(rows []InsightRow) *domain.AnalysisResult {
	result := &domain.AnalysisResult{
		Service:     domain.ServiceMetaAds,
		RawRowCount: len(rows),
	}

	var totalSpend float64

	for _, row := range rows {
		impressions, _ := strconv.ParseInt(row.Impressions, 10, 64)
		clicks, _ := strconv.ParseInt(row.Clicks, 10, 64)
		reach, _ := strconv.ParseInt(row.Reach, 10, 64)
		spend, _ := strconv.ParseFloat(row.Spend, 64)

		result.Impressions += impressions
		result.Clicks += clicks
		result.Reach += reach
		totalSpend += spend

		result.Campaigns = append(result.Campaigns, domain.CampaignMetrics{
			Name:        row.CampaignName,
			Impressions: impressions,
			Clicks:      clicks,
			Cost:        utils.FormatCurrency(spend),
			CTR:         utils.FormatCTR(clicks, impressions),
			Reach:       reach,
		})
	}

	result.Cost = utils.FormatCurrency(totalSpend)
	result.CTR = utils.FormatCTR(result.Clicks, result.Impressions)

	return result
}

// CountAccounts é a sondagem usada pelo verificador de status. A Meta
// não valida escopos de forma confiável pela string de scope, então a
// sondagem ao vivo é a única verificação real de permissões.
func (s *Service) CountAccounts(ctx context.Context, credential *domain.Credential) (int, error) {
	if credential == nil || credential.AccessToken == "" {
		return 0, domain.NewAuthError(domain.ServiceMetaAds, domain.ReasonTokenExpired,
			"conta do Meta não conectada", nil)
	}

	return s.client.CountAdAccounts(ctx, credential.AccessToken)
}
