package googleads

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
	rows        []CampaignRow
	customers   []string
	searchCalls int
	listCalls   int
	err         error
}

func (f *fakeClient) SearchCampaignMetrics(ctx context.Context, accessToken, customerID, startDate, endDate string) ([]CampaignRow, error) {
	f.searchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeClient) ListAccessibleCustomers(ctx context.Context, accessToken string) ([]string, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.customers, nil
}

// newTokenServer sobe um endpoint de token falso e devolve também um
// contador de chamadas
func newTokenServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func newService(client Client, tokenURL string) *Service {
	exchanger := googleoauth.NewExchanger(config.Google{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     tokenURL,
	})
	return New(client, exchanger)
}

func validCredential() *domain.Credential {
	return &domain.Credential{
		UserID:       1,
		Provider:     domain.ServiceGoogleAds,
		RefreshToken: "refresh-token",
		Scopes:       []string{"https://www.googleapis.com/auth/adwords"},
	}
}

func TestAnalyzeAggregatesCampaigns(t *testing.T) {
	tokenServer, tokenCalls := newTokenServer(t)

	client := &fakeClient{
		rows: []CampaignRow{
			{Name: "Campanha A", Impressions: 1000, Clicks: 50, CostMicros: 2_000_000, Conversions: 2},
			{Name: "Campanha B", Impressions: 2000, Clicks: 100, CostMicros: 3_000_000, Conversions: 3},
		},
	}

	service := newService(client, tokenServer.URL)

	result, err := service.Analyze(context.Background(), &domain.AnalysisParams{
		StartDate:  "2025-01-01",
		EndDate:    "2025-01-31",
		CustomerID: "6839616266",
	}, validCredential())

	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, domain.ServiceGoogleAds, result.Service)
	assert.Equal(t, int64(3000), result.Impressions)
	assert.Equal(t, int64(150), result.Clicks)
	assert.Equal(t, "5.00%", result.CTR)
	assert.Equal(t, "$5.00", result.Cost)
	assert.Equal(t, 5.0, result.Conversions)
	assert.Equal(t, "$1.00", result.CostPerConversion)
	assert.Len(t, result.Campaigns, 2)
	assert.Equal(t, 2, result.RawRowCount)

	assert.Equal(t, 1, *tokenCalls)
	assert.Equal(t, 1, client.searchCalls)
}

func TestAnalyzeCustomerIDWithSeparators(t *testing.T) {
	tokenServer, _ := newTokenServer(t)

	client := &fakeClient{rows: []CampaignRow{}}
	service := newService(client, tokenServer.URL)

	// IDs com hífens são normalizados antes da validação de 10 dígitos
	result, err := service.Analyze(context.Background(), &domain.AnalysisParams{
		StartDate:  "2025-01-01",
		EndDate:    "2025-01-31",
		CustomerID: "683-961-6266",
	}, validCredential())

	require.NoError(t, err)
	assert.Equal(t, 0, result.RawRowCount)
	assert.Equal(t, "0%", result.CTR)
}

func TestAnalyzeValidationFailures(t *testing.T) {
	tokenServer, tokenCalls := newTokenServer(t)

	tests := []struct {
		name       string
		params     *domain.AnalysisParams
		credential *domain.Credential
		wantKind   domain.ErrorKind
	}{
		{
			name: "ID de cliente com menos de 10 dígitos",
			params: &domain.AnalysisParams{
				StartDate:  "2025-01-01",
				EndDate:    "2025-01-31",
				CustomerID: "12345",
			},
			credential: validCredential(),
			wantKind:   domain.ErrorKindValidation,
		},
		{
			name: "datas ausentes",
			params: &domain.AnalysisParams{
				CustomerID: "6839616266",
			},
			credential: validCredential(),
			wantKind:   domain.ErrorKindValidation,
		},
		{
			name: "datas fora de ordem",
			params: &domain.AnalysisParams{
				StartDate:  "2025-02-01",
				EndDate:    "2025-01-01",
				CustomerID: "6839616266",
			},
			credential: validCredential(),
			wantKind:   domain.ErrorKindValidation,
		},
		{
			name: "credencial ausente",
			params: &domain.AnalysisParams{
				StartDate:  "2025-01-01",
				EndDate:    "2025-01-31",
				CustomerID: "6839616266",
			},
			credential: nil,
			wantKind:   domain.ErrorKindAuth,
		},
		{
			name: "credencial sem refresh token",
			params: &domain.AnalysisParams{
				StartDate:  "2025-01-01",
				EndDate:    "2025-01-31",
				CustomerID: "6839616266",
			},
			credential: &domain.Credential{UserID: 1, Provider: domain.ServiceGoogleAds, AccessToken: "only-access"},
			wantKind:   domain.ErrorKindAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			service := newService(client, tokenServer.URL)

			result, err := service.Analyze(context.Background(), tt.params, tt.credential)

			require.Error(t, err)
			assert.Nil(t, result)

			analysisErr, ok := domain.AsAnalysisError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, analysisErr.Kind)

			// Falhas locais nunca chegam ao fornecedor
			assert.Equal(t, 0, client.searchCalls)
		})
	}

	assert.Equal(t, 0, *tokenCalls)
}

func TestCountAccounts(t *testing.T) {
	tokenServer, _ := newTokenServer(t)

	client := &fakeClient{customers: []string{"customers/111", "customers/222"}}
	service := newService(client, tokenServer.URL)

	count, err := service.CountAccounts(context.Background(), validCredential())

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, client.listCalls)
}
