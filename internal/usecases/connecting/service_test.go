package connecting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

type fakeCredentialReader struct {
	credential *domain.Credential
	err        error
	calls      int
}

func (f *fakeCredentialReader) GetCredential(userID int, provider domain.Service) (*domain.Credential, error) {
	f.calls++
	return f.credential, f.err
}

type fakeProber struct {
	count int
	err   error
	calls int
}

func (f *fakeProber) CountAccounts(ctx context.Context, credential *domain.Credential) (int, error) {
	f.calls++
	return f.count, f.err
}

type memoryCache struct {
	mu    sync.Mutex
	data  map[string][]byte
	sets  int
	ttls  map[string]time.Duration
	hits  int
	gets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		data: map[string][]byte{},
		ttls: map[string]time.Duration{},
	}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	value, ok := m.data[key]
	if ok {
		m.hits++
	}
	return value, ok
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = value
	m.ttls[key] = ttl
}

func testStatusConfig() config.StatusCheck {
	return config.StatusCheck{
		ProbeTimeoutSeconds: 20,
		StableTTLSeconds:    3600,
		TransientTTLSeconds: 600,
	}
}

func googleCredential() *domain.Credential {
	return &domain.Credential{
		UserID:       1,
		Provider:     domain.ServiceGoogleAds,
		RefreshToken: "refresh-token",
		Scopes:       []string{"https://www.googleapis.com/auth/adwords"},
	}
}

func newChecker(reader CredentialReader, prober AccountProber, statusCache *memoryCache) StatusChecker {
	probers := map[domain.Service]AccountProber{}
	if prober != nil {
		for _, service := range domain.AnalyzableServices {
			probers[service] = prober
		}
	}
	return NewService(reader, probers, statusCache, testStatusConfig())
}

func TestCheckStatusHealthyConnection(t *testing.T) {
	reader := &fakeCredentialReader{credential: googleCredential()}
	prober := &fakeProber{count: 2}
	cache := newMemoryCache()

	checker := newChecker(reader, prober, cache)

	result := checker.CheckStatus(context.Background(), 1, domain.ServiceGoogleAds, false)

	require.NotNil(t, result)
	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.True(t, result.Connected)
	assert.True(t, result.HasCredential)
	assert.True(t, result.HasRequiredScopes)
	assert.True(t, result.HasSubAccounts)
	assert.Equal(t, 1, prober.calls)

	// Resultado estável fica no cache com o TTL longo
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, time.Hour, cache.ttls["google_ads-status:1"])
}

func TestCheckStatusCacheHitShortCircuits(t *testing.T) {
	reader := &fakeCredentialReader{credential: googleCredential()}
	prober := &fakeProber{count: 2}
	cache := newMemoryCache()

	checker := newChecker(reader, prober, cache)

	first := checker.CheckStatus(context.Background(), 1, domain.ServiceGoogleAds, false)
	second := checker.CheckStatus(context.Background(), 1, domain.ServiceGoogleAds, false)

	assert.Equal(t, first.Status, second.Status)

	// Segunda chamada não consulta banco nem fornecedor
	assert.Equal(t, 1, reader.calls)
	assert.Equal(t, 1, prober.calls)
	assert.Equal(t, 1, cache.hits)
}

func TestCheckStatusNeverReturnsNil(t *testing.T) {
	tests := []struct {
		name       string
		reader     *fakeCredentialReader
		prober     *fakeProber
		wantStatus domain.ConnectionStatus
	}{
		{
			name:       "sem credencial",
			reader:     &fakeCredentialReader{},
			prober:     &fakeProber{},
			wantStatus: domain.StatusError,
		},
		{
			name:       "erro de banco",
			reader:     &fakeCredentialReader{err: errors.New("conexão recusada")},
			prober:     &fakeProber{},
			wantStatus: domain.StatusWarning,
		},
		{
			name: "credencial sem refresh token",
			reader: &fakeCredentialReader{credential: &domain.Credential{
				UserID:      1,
				Provider:    domain.ServiceGoogleAds,
				AccessToken: "only-access",
				Scopes:      []string{"https://www.googleapis.com/auth/adwords"},
			}},
			prober:     &fakeProber{},
			wantStatus: domain.StatusError,
		},
		{
			name: "escopo ausente",
			reader: &fakeCredentialReader{credential: &domain.Credential{
				UserID:       1,
				Provider:     domain.ServiceGoogleAds,
				RefreshToken: "refresh-token",
				Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email"},
			}},
			prober:     &fakeProber{},
			wantStatus: domain.StatusWarning,
		},
		{
			name:       "sondagem com erro não classificado",
			reader:     &fakeCredentialReader{credential: googleCredential()},
			prober:     &fakeProber{err: errors.New("falha qualquer")},
			wantStatus: domain.StatusWarning,
		},
		{
			name:   "sondagem com token expirado",
			reader: &fakeCredentialReader{credential: googleCredential()},
			prober: &fakeProber{err: domain.NewAuthError(domain.ServiceGoogleAds,
				domain.ReasonTokenExpired, "token expirado", nil)},
			wantStatus: domain.StatusError,
		},
		{
			name:   "sondagem com permissão insuficiente",
			reader: &fakeCredentialReader{credential: googleCredential()},
			prober: &fakeProber{err: domain.NewAuthError(domain.ServiceGoogleAds,
				domain.ReasonPermission, "permissão negada", nil)},
			wantStatus: domain.StatusWarning,
		},
		{
			name:   "sondagem com timeout",
			reader: &fakeCredentialReader{credential: googleCredential()},
			prober: &fakeProber{err: domain.NewTimeoutError(domain.ServiceGoogleAds,
				"timeout", context.DeadlineExceeded)},
			wantStatus: domain.StatusWarning,
		},
		{
			name:       "conectado sem contas acessíveis",
			reader:     &fakeCredentialReader{credential: googleCredential()},
			prober:     &fakeProber{count: 0},
			wantStatus: domain.StatusWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := newChecker(tt.reader, tt.prober, newMemoryCache())

			result := checker.CheckStatus(context.Background(), 1, domain.ServiceGoogleAds, false)

			require.NotNil(t, result)
			assert.Equal(t, tt.wantStatus, result.Status)
		})
	}
}

func TestCheckStatusPermissionFailureClearsScopes(t *testing.T) {
	reader := &fakeCredentialReader{credential: googleCredential()}
	prober := &fakeProber{err: domain.NewAuthError(domain.ServiceGoogleAds,
		domain.ReasonPermission, "permissão negada", nil)}

	checker := newChecker(reader, prober, newMemoryCache())

	result := checker.CheckStatus(context.Background(), 1, domain.ServiceGoogleAds, false)

	assert.Equal(t, domain.StatusWarning, result.Status)
	assert.False(t, result.HasRequiredScopes)
}

func TestCheckStatusSkipSlowCheck(t *testing.T) {
	reader := &fakeCredentialReader{credential: googleCredential()}
	prober := &fakeProber{count: 2}
	cache := newMemoryCache()

	checker := newChecker(reader, prober, cache)

	result := checker.CheckStatus(context.Background(), 1, domain.ServiceGoogleAds, true)

	assert.Equal(t, domain.StatusPending, result.Status)
	assert.True(t, result.HasCredential)
	assert.True(t, result.HasRequiredScopes)

	// Sem sondagem e sem gravação no cache
	assert.Equal(t, 0, prober.calls)
	assert.Equal(t, 0, cache.sets)
}

func TestCheckStatusTransientFailureUsesShortTTL(t *testing.T) {
	reader := &fakeCredentialReader{credential: googleCredential()}
	prober := &fakeProber{err: domain.NewTimeoutError(domain.ServiceGoogleAds,
		"timeout", context.DeadlineExceeded)}
	cache := newMemoryCache()

	checker := newChecker(reader, prober, cache)

	result := checker.CheckStatus(context.Background(), 1, domain.ServiceGoogleAds, false)

	assert.Equal(t, domain.StatusWarning, result.Status)
	assert.Equal(t, 10*time.Minute, cache.ttls["google_ads-status:1"])
}

func TestCheckStatusMetaCachedSuccessSkipsGraphAPI(t *testing.T) {
	reader := &fakeCredentialReader{credential: &domain.Credential{
		UserID:      1,
		Provider:    domain.ServiceMetaAds,
		AccessToken: "stored-token",
	}}
	prober := &fakeProber{count: 1}
	cache := newMemoryCache()

	checker := newChecker(reader, prober, cache)

	first := checker.CheckStatus(context.Background(), 1, domain.ServiceMetaAds, false)
	require.Equal(t, domain.StatusSuccess, first.Status)
	require.Equal(t, 1, prober.calls)

	// Dentro do TTL a segunda verificação devolve o payload do cache
	// sem nova chamada à Graph API
	second := checker.CheckStatus(context.Background(), 1, domain.ServiceMetaAds, false)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, prober.calls)
}

func TestCheckStatusMetaSkipsScopeValidation(t *testing.T) {
	// O Meta não tem escopo exigido: credencial com scope vazio passa
	// direto para a sondagem
	reader := &fakeCredentialReader{credential: &domain.Credential{
		UserID:      1,
		Provider:    domain.ServiceMetaAds,
		AccessToken: "stored-token",
	}}
	prober := &fakeProber{count: 1}

	checker := newChecker(reader, prober, newMemoryCache())

	result := checker.CheckStatus(context.Background(), 1, domain.ServiceMetaAds, false)

	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Equal(t, 1, prober.calls)
}
