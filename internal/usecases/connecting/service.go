package connecting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/infrastructure/cache"
	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

// AccountProber é a sondagem ao vivo de um fornecedor: conta quantas
// contas de anúncio a credencial consegue enxergar. Um retorno sem erro
// prova que o token e as permissões estão vivos.
type AccountProber interface {
	CountAccounts(ctx context.Context, credential *domain.Credential) (int, error)
}

// CredentialReader é a fatia do repositório de credenciais usada aqui
type CredentialReader interface {
	GetCredential(userID int, provider domain.Service) (*domain.Credential, error)
}

// StatusChecker avalia a saúde da conexão de um usuário com um fornecedor
type StatusChecker interface {
	// CheckStatus nunca devolve erro: qualquer falha interna vira um
	// StatusResult de warning ou error com a mensagem apropriada
	CheckStatus(ctx context.Context, userID int, provider domain.Service, skipSlowCheck bool) *domain.StatusResult
}

// requiredScopes mapeia cada fornecedor ao escopo OAuth que a análise
// exige. O Meta fica fora do mapa de propósito: a string de scope da
// Graph API não é confiável e a sondagem ao vivo é a única verificação.
var requiredScopes = map[domain.Service]string{
	domain.ServiceGoogleAds:       "adwords",
	domain.ServiceGoogleAnalytics: "analytics.readonly",
	domain.ServiceMicrosoftAds:    "msads.manage",
}

// Serviços do Google renovam o access token pelo refresh token, então é
// o refresh token que precisa existir. Meta e Microsoft guardam tokens
// de acesso de longa duração.
var needsRefreshToken = map[domain.Service]bool{
	domain.ServiceGoogleAds:       true,
	domain.ServiceGoogleAnalytics: true,
}

type Service struct {
	credentials CredentialReader
	probers     map[domain.Service]AccountProber
	statusCache cache.StatusCache
	cfg         config.StatusCheck
}

func NewService(
	credentials CredentialReader,
	probers map[domain.Service]AccountProber,
	statusCache cache.StatusCache,
	cfg config.StatusCheck,
) StatusChecker {
	return &Service{
		credentials: credentials,
		probers:     probers,
		statusCache: statusCache,
		cfg:         cfg,
	}
}

// CheckStatus percorre as verificações da mais barata para a mais cara:
// cache, presença da credencial, token obrigatório, escopos e por fim a
// sondagem ao vivo no fornecedor. Resultados estáveis (sucesso ou falha
// determinística) ficam no cache por mais tempo que falhas transitórias.
func (s *Service) CheckStatus(ctx context.Context, userID int, provider domain.Service, skipSlowCheck bool) *domain.StatusResult {
	cacheKey := fmt.Sprintf("%s-status:%d", provider, userID)

	if cached, ok := s.statusCache.Get(ctx, cacheKey); ok {
		var result domain.StatusResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result
		}
		logrus.WithFields(logrus.Fields{
			"cache_key": cacheKey,
		}).Warn("connecting: resultado de status corrompido no cache, reavaliando")
	}

	credential, err := s.credentials.GetCredential(userID, provider)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"service": provider,
			"error":   err.Error(),
		}).Error("connecting: falha ao carregar credencial")
		// Falha de banco é transitória: não cachear como desconectado
		return &domain.StatusResult{
			Status:  domain.StatusWarning,
			Message: "Não foi possível verificar a conexão no momento",
		}
	}

	if credential == nil {
		result := &domain.StatusResult{
			Status:        domain.StatusError,
			HasCredential: false,
			Message:       "Conta não conectada",
		}
		s.store(ctx, cacheKey, result, s.stableTTL())
		return result
	}

	if missing := s.missingToken(provider, credential); missing != "" {
		// A linha de credencial existe (connected), mas sem o campo de
		// token que o fornecedor exige ela não é utilizável
		result := &domain.StatusResult{
			Status:        domain.StatusError,
			Connected:     true,
			HasCredential: false,
			Message:       missing,
		}
		s.store(ctx, cacheKey, result, s.stableTTL())
		return result
	}

	scope := ""
	if len(credential.Scopes) > 0 {
		scope = credential.Scopes[0]
	}

	if required, ok := requiredScopes[provider]; ok && !credential.HasScope(required) {
		result := &domain.StatusResult{
			Status:            domain.StatusWarning,
			Connected:         true,
			HasCredential:     true,
			HasRequiredScopes: false,
			Message:           "Permissões insuficientes: reconecte a conta concedendo todos os acessos",
			Scope:             scope,
		}
		s.store(ctx, cacheKey, result, s.stableTTL())
		return result
	}

	if skipSlowCheck {
		// Sem sondagem não dá para afirmar que a conexão funciona; não
		// cachear para não mascarar uma verificação completa futura
		return &domain.StatusResult{
			Status:            domain.StatusPending,
			Connected:         true,
			HasCredential:     true,
			HasRequiredScopes: true,
			Message:           "Conexão configurada; verificação completa pendente",
			Scope:             scope,
		}
	}

	result, ttl := s.probe(ctx, provider, credential)
	result.Scope = scope
	s.store(ctx, cacheKey, result, ttl)
	return result
}

// missingToken devolve a mensagem de erro quando o campo de token que o
// fornecedor exige não está presente
func (s *Service) missingToken(provider domain.Service, credential *domain.Credential) string {
	if needsRefreshToken[provider] {
		if credential.RefreshToken == "" {
			return "Conexão incompleta: refresh token ausente, reconecte a conta"
		}
		return ""
	}
	if credential.AccessToken == "" {
		return "Conexão incompleta: token de acesso ausente, reconecte a conta"
	}
	return ""
}

// probe executa a sondagem ao vivo com timeout próprio e classifica o
// desfecho. Devolve também o TTL de cache adequado ao desfecho.
func (s *Service) probe(ctx context.Context, provider domain.Service, credential *domain.Credential) (*domain.StatusResult, time.Duration) {
	prober, ok := s.probers[provider]
	if !ok {
		return &domain.StatusResult{
			Status:            domain.StatusWarning,
			Connected:         true,
			HasCredential:     true,
			HasRequiredScopes: true,
			Message:           "Verificação ao vivo indisponível para este serviço",
		}, s.transientTTL()
	}

	probeCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.ProbeTimeoutSeconds)*time.Second)
	defer cancel()

	count, err := prober.CountAccounts(probeCtx, credential)
	if err != nil {
		return s.classifyProbeFailure(provider, err)
	}

	if count == 0 {
		return &domain.StatusResult{
			Status:            domain.StatusWarning,
			Connected:         true,
			HasCredential:     true,
			HasRequiredScopes: true,
			HasSubAccounts:    false,
			Message:           "Conectado, mas nenhuma conta de anúncios acessível",
		}, s.stableTTL()
	}

	return &domain.StatusResult{
		Status:            domain.StatusSuccess,
		Connected:         true,
		HasCredential:     true,
		HasRequiredScopes: true,
		HasSubAccounts:    true,
		Message:           "Conta conectada",
	}, s.stableTTL()
}

func (s *Service) classifyProbeFailure(provider domain.Service, err error) (*domain.StatusResult, time.Duration) {
	analysisErr, ok := domain.AsAnalysisError(err)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"service": provider,
			"error":   err.Error(),
		}).Error("connecting: sondagem falhou com erro não classificado")
		return &domain.StatusResult{
			Status:        domain.StatusWarning,
			Connected:     true,
			HasCredential: true,
			Message:       "Não foi possível verificar a conexão no momento",
		}, s.transientTTL()
	}

	if analysisErr.Timeout() {
		return &domain.StatusResult{
			Status:            domain.StatusWarning,
			Connected:         true,
			HasCredential:     true,
			HasRequiredScopes: true,
			Message:           "O fornecedor demorou a responder; tente novamente em instantes",
		}, s.transientTTL()
	}

	if analysisErr.Kind == domain.ErrorKindAuth {
		if analysisErr.Reason == domain.ReasonPermission {
			return &domain.StatusResult{
				Status:            domain.StatusWarning,
				Connected:         true,
				HasCredential:     true,
				HasRequiredScopes: false,
				Message:           "Permissões insuficientes: reconecte a conta concedendo todos os acessos",
			}, s.stableTTL()
		}
		return &domain.StatusResult{
			Status:        domain.StatusError,
			Connected:     true,
			HasCredential: true,
			Message:       "Sessão expirada: reconecte a conta",
		}, s.stableTTL()
	}

	return &domain.StatusResult{
		Status:            domain.StatusWarning,
		Connected:         true,
		HasCredential:     true,
		HasRequiredScopes: true,
		Message:           "O fornecedor retornou um erro; tente novamente em instantes",
	}, s.transientTTL()
}

func (s *Service) store(ctx context.Context, key string, result *domain.StatusResult, ttl time.Duration) {
	encoded, err := json.Marshal(result)
	if err != nil {
		return
	}
	s.statusCache.Set(ctx, key, encoded, ttl)
}

func (s *Service) stableTTL() time.Duration {
	return time.Duration(s.cfg.StableTTLSeconds) * time.Second
}

func (s *Service) transientTTL() time.Duration {
	return time.Duration(s.cfg.TransientTTLSeconds) * time.Second
}
