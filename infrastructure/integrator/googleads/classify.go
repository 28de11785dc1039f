package googleads

import (
	"fmt"
	"strings"

	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

// Vocabulário de erros conhecidos da API do Google Ads. A API devolve
// códigos estruturados dentro de mensagens de erro; o mapeamento por
// substring fica isolado aqui para poder ser atualizado (e testado)
// separadamente da lógica de negócio quando o fornecedor mudar o texto.
var errorVocabulary = []struct {
	substr string
	kind   domain.ErrorKind
	reason string
}{
	{"USER_PERMISSION_DENIED", domain.ErrorKindAuth, domain.ReasonPermission},
	{"PERMISSION_DENIED", domain.ErrorKindAuth, domain.ReasonPermission},
	{"missing required scope", domain.ErrorKindAuth, domain.ReasonPermission},
	{"UNAUTHENTICATED", domain.ErrorKindAuth, domain.ReasonTokenExpired},
	{"AuthenticationError", domain.ErrorKindAuth, domain.ReasonTokenExpired},
	{"invalid_grant", domain.ErrorKindAuth, domain.ReasonTokenExpired},
	{"CUSTOMER_NOT_FOUND", domain.ErrorKindValidation, ""},
	{"INVALID_CUSTOMER_ID", domain.ErrorKindValidation, ""},
}

// classifyResponse converte uma resposta de erro da API em um
// AnalysisError de um dos três tipos estáveis
func classifyResponse(status int, body string) *domain.AnalysisError {
	for _, entry := range errorVocabulary {
		if strings.Contains(body, entry.substr) {
			switch entry.kind {
			case domain.ErrorKindAuth:
				return domain.NewAuthError(domain.ServiceGoogleAds, entry.reason,
					"acesso ao Google Ads negado, reconecte a conta",
					fmt.Errorf("status %d: %s", status, body))
			case domain.ErrorKindValidation:
				return domain.NewValidationError(domain.ServiceGoogleAds,
					"ID de cliente do Google Ads inválido ou inexistente")
			}
		}
	}

	return domain.NewVendorError(domain.ServiceGoogleAds,
		"erro na API do Google Ads",
		fmt.Errorf("status %d: %s", status, body))
}
