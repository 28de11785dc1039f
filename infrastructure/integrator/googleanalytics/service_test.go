package googleanalytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-analytics-api/infrastructure/integrator/googleoauth"
	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

type fakeClient struct {
	rows       []ReportRow
	summaries  int
	reportCall int
}

func (f *fakeClient) RunDailyReport(ctx context.Context, accessToken, propertyID, startDate, endDate string) ([]ReportRow, error) {
	f.reportCall++
	return f.rows, nil
}

func (f *fakeClient) CountAccountSummaries(ctx context.Context, accessToken string) (int, error) {
	return f.summaries, nil
}

func newService(t *testing.T, client Client) *Service {
	t.Helper()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenServer.Close)

	exchanger := googleoauth.NewExchanger(config.Google{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     tokenServer.URL,
	})
	return New(client, exchanger)
}

func validCredential() *domain.Credential {
	return &domain.Credential{
		UserID:       1,
		Provider:     domain.ServiceGoogleAnalytics,
		RefreshToken: "refresh-token",
		Scopes:       []string{"https://www.googleapis.com/auth/analytics.readonly"},
	}
}

func TestAnalyzeBuildsDailyRows(t *testing.T) {
	client := &fakeClient{
		rows: []ReportRow{
			{Date: "20250101", Metrics: []string{"120", "95", "0.42", "83.5", "1500.50", "12"}},
			{Date: "20250102", Metrics: []string{"140", "110", "0.38", "91.2", "2200.00", "18"}},
		},
	}
	service := newService(t, client)

	result, err := service.Analyze(context.Background(), &domain.AnalysisParams{
		StartDate:  "2025-01-01",
		EndDate:    "2025-01-31",
		PropertyID: "123456789",
	}, validCredential())

	require.NoError(t, err)
	assert.Equal(t, domain.ServiceGoogleAnalytics, result.Service)
	assert.Equal(t, 2, result.RawRowCount)
	require.Len(t, result.Rows, 2)

	first := result.Rows[0]
	assert.Equal(t, "Jan 1, 2025", first.Date)
	assert.Equal(t, int64(120), first.Sessions)
	assert.Equal(t, int64(95), first.TotalUsers)
	assert.Equal(t, 0.42, first.BounceRate)
	assert.Equal(t, 83.5, first.AvgSessionDuration)
	assert.Equal(t, 1500.50, first.PurchaseRevenue)
	assert.Equal(t, int64(12), first.Transactions)
}

func TestAnalyzeKeepsRawDateOnUnexpectedFormat(t *testing.T) {
	client := &fakeClient{
		rows: []ReportRow{
			{Date: "(other)", Metrics: []string{"10", "8", "0.5", "60", "0", "0"}},
		},
	}
	service := newService(t, client)

	result, err := service.Analyze(context.Background(), &domain.AnalysisParams{
		StartDate:  "2025-01-01",
		EndDate:    "2025-01-31",
		PropertyID: "123456789",
	}, validCredential())

	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "(other)", result.Rows[0].Date)
}

func TestAnalyzeValidation(t *testing.T) {
	client := &fakeClient{}
	service := newService(t, client)

	t.Run("sem propriedade", func(t *testing.T) {
		_, err := service.Analyze(context.Background(), &domain.AnalysisParams{
			StartDate: "2025-01-01",
			EndDate:   "2025-01-31",
		}, validCredential())

		require.Error(t, err)
		analysisErr, ok := domain.AsAnalysisError(err)
		require.True(t, ok)
		assert.Equal(t, domain.ErrorKindValidation, analysisErr.Kind)
	})

	t.Run("sem refresh token", func(t *testing.T) {
		_, err := service.Analyze(context.Background(), &domain.AnalysisParams{
			StartDate:  "2025-01-01",
			EndDate:    "2025-01-31",
			PropertyID: "123456789",
		}, nil)

		require.Error(t, err)
		analysisErr, ok := domain.AsAnalysisError(err)
		require.True(t, ok)
		assert.Equal(t, domain.ErrorKindAuth, analysisErr.Kind)
	})

	assert.Equal(t, 0, client.reportCall)
}

func TestCountAccounts(t *testing.T) {
	client := &fakeClient{summaries: 4}
	service := newService(t, client)

	count, err := service.CountAccounts(context.Background(), validCredential())

	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
