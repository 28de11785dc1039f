package analyzing

import (
	"context"

	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// ProviderAdapter é o contrato comum dos adaptadores de fornecedor. Cada
// fornecedor recebe os parâmetros da consulta e a credencial armazenada
// do usuário (que pode ser nil quando a conta nunca foi conectada).
type ProviderAdapter interface {
	// Analyze executa a consulta de métricas no fornecedor e devolve o
	// resultado agregado
	Analyze(ctx context.Context, params *domain.AnalysisParams, credential *domain.Credential) (*domain.AnalysisResult, error)
}

// CredentialSource abstrai a leitura de credenciais para o orquestrador
type CredentialSource interface {
	GetCredential(userID int, provider domain.Service) (*domain.Credential, error)
}
