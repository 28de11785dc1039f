package meta

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

type fakeClient struct {
	rows          []InsightRow
	accountCount  int
	err           error
	lastToken     string
	insightCalls  int
	accountsCalls int
}

func (f *fakeClient) GetCampaignInsights(ctx context.Context, accessToken, accountID, startDate, endDate string) ([]InsightRow, error) {
	f.insightCalls++
	f.lastToken = accessToken
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeClient) CountAdAccounts(ctx context.Context, accessToken string) (int, error) {
	f.accountsCalls++
	f.lastToken = accessToken
	if f.err != nil {
		return 0, f.err
	}
	return f.accountCount, nil
}

func validParams() *domain.AnalysisParams {
	return &domain.AnalysisParams{
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
		AccountID: "123456789",
	}
}

func storedCredential() *domain.Credential {
	return &domain.Credential{
		UserID:      1,
		Provider:    domain.ServiceMetaAds,
		AccessToken: "stored-token",
	}
}

func TestAnalyzeAggregatesInsights(t *testing.T) {
	client := &fakeClient{
		rows: []InsightRow{
			{CampaignName: "Campanha A", Impressions: "1000", Clicks: "50", Spend: "2.00", Reach: "800"},
			{CampaignName: "Campanha B", Impressions: "2000", Clicks: "100", Spend: "3.00", Reach: "1500"},
		},
	}
	service := New(client)

	result, err := service.Analyze(context.Background(), validParams(), storedCredential())

	require.NoError(t, err)
	assert.Equal(t, domain.ServiceMetaAds, result.Service)
	assert.Equal(t, int64(3000), result.Impressions)
	assert.Equal(t, int64(150), result.Clicks)
	assert.Equal(t, int64(2300), result.Reach)
	assert.Equal(t, "$5.00", result.Cost)
	assert.Equal(t, "5.00%", result.CTR)
	assert.Len(t, result.Campaigns, 2)
}

func TestAnalyzeTokenPrecedence(t *testing.T) {
	t.Run("token da consulta vence a credencial armazenada", func(t *testing.T) {
		client := &fakeClient{}
		service := New(client)

		params := validParams()
		params.AccessToken = "query-token"

		_, err := service.Analyze(context.Background(), params, storedCredential())

		require.NoError(t, err)
		assert.Equal(t, "query-token", client.lastToken)
	})

	t.Run("sem token na consulta usa a credencial", func(t *testing.T) {
		client := &fakeClient{}
		service := New(client)

		_, err := service.Analyze(context.Background(), validParams(), storedCredential())

		require.NoError(t, err)
		assert.Equal(t, "stored-token", client.lastToken)
	})

	t.Run("token da consulta dispensa credencial", func(t *testing.T) {
		client := &fakeClient{}
		service := New(client)

		params := validParams()
		params.AccessToken = "query-token"

		_, err := service.Analyze(context.Background(), params, nil)

		require.NoError(t, err)
	})

	t.Run("sem token nenhum é erro de autenticação", func(t *testing.T) {
		client := &fakeClient{}
		service := New(client)

		_, err := service.Analyze(context.Background(), validParams(), nil)

		require.Error(t, err)
		analysisErr, ok := domain.AsAnalysisError(err)
		require.True(t, ok)
		assert.Equal(t, domain.ErrorKindAuth, analysisErr.Kind)
		assert.Equal(t, 0, client.insightCalls)
	})
}

func TestAnalyzeValidation(t *testing.T) {
	client := &fakeClient{}
	service := New(client)

	t.Run("sem conta de anúncios", func(t *testing.T) {
		params := validParams()
		params.AccountID = ""

		_, err := service.Analyze(context.Background(), params, storedCredential())

		require.Error(t, err)
		analysisErr, ok := domain.AsAnalysisError(err)
		require.True(t, ok)
		assert.Equal(t, domain.ErrorKindValidation, analysisErr.Kind)
	})

	t.Run("sem período", func(t *testing.T) {
		params := validParams()
		params.StartDate = ""

		_, err := service.Analyze(context.Background(), params, storedCredential())

		require.Error(t, err)
		analysisErr, ok := domain.AsAnalysisError(err)
		require.True(t, ok)
		assert.Equal(t, domain.ErrorKindValidation, analysisErr.Kind)
	})

	assert.Equal(t, 0, client.insightCalls)
}

func TestCountAccounts(t *testing.T) {
	client := &fakeClient{accountCount: 3}
	service := New(client)

	count, err := service.CountAccounts(context.Background(), storedCredential())

	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = service.CountAccounts(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, client.accountsCalls, "sem credencial a sondagem não chega ao fornecedor")
}
