package analyzing

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

// Analyzer orquestra uma análise de métricas em qualquer fornecedor suportado
type Analyzer interface {
	Analyze(ctx context.Context, userID int, service domain.Service, params *domain.AnalysisParams) (*domain.AnalysisResult, error)
}

// Service despacha cada análise para o adaptador do fornecedor
// correspondente. O despacho é por enum fechado: serviços fora do mapa
// de adaptadores são rejeitados antes de qualquer chamada externa.
type Service struct {
	adapters    map[domain.Service]ProviderAdapter
	credentials CredentialSource
}

func NewService(credentials CredentialSource, adapters map[domain.Service]ProviderAdapter) Analyzer {
	return &Service{
		adapters:    adapters,
		credentials: credentials,
	}
}

// Analyze carrega a credencial do usuário para o fornecedor e delega ao
// adaptador. Não há retry: falhas de fornecedor sobem intactas para o
// handler converter em status HTTP.
func (s *Service) Analyze(ctx context.Context, userID int, service domain.Service, params *domain.AnalysisParams) (*domain.AnalysisResult, error) {
	if params == nil {
		return nil, domain.NewValidationError(service, "parâmetros da análise são obrigatórios")
	}

	adapter, ok := s.adapters[service]
	if !ok {
		return nil, domain.NewValidationError(service,
			fmt.Sprintf("serviço não suporta análise: %s", service))
	}

	credential, err := s.credentials.GetCredential(userID, service)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"service": service,
			"error":   err.Error(),
		}).Error("analyzing: falha ao carregar credencial")
		return nil, err
	}

	result, err := adapter.Analyze(ctx, params, credential)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"service": service,
			"error":   err.Error(),
		}).Warn("analyzing: análise falhou")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"service":   service,
		"row_count": result.RawRowCount,
	}).Info("analyzing: análise concluída")

	return result, nil
}
