package microsoftads

import (
	"fmt"
	"strings"

	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

// Vocabulário de erros da API do Microsoft Ads. Os tokens expiram em
// cerca de uma hora e o fornecedor sinaliza isso com o código textual
// "AuthenticationTokenExpired" no corpo da resposta.
var errorVocabulary = []struct {
	substr string
	kind   domain.ErrorKind
	reason string
}{
	{"AuthenticationTokenExpired", domain.ErrorKindAuth, domain.ReasonTokenExpired},
	{"InvalidCredentials", domain.ErrorKindAuth, domain.ReasonTokenExpired},
	{"UserIsNotAuthorized", domain.ErrorKindAuth, domain.ReasonPermission},
	{"InsufficientScope", domain.ErrorKindAuth, domain.ReasonPermission},
	{"InvalidAccountId", domain.ErrorKindValidation, ""},
	{"InvalidCustomerId", domain.ErrorKindValidation, ""},
}

func classifyResponse(status int, body string) *domain.AnalysisError {
	for _, entry := range errorVocabulary {
		if strings.Contains(body, entry.substr) {
			switch entry.kind {
			case domain.ErrorKindAuth:
				message := "acesso ao Microsoft Ads negado, reconecte a conta"
				if entry.reason == domain.ReasonTokenExpired {
					message = "token do Microsoft Ads expirado, reconecte a conta"
				}
				return domain.NewAuthError(domain.ServiceMicrosoftAds, entry.reason, message,
					fmt.Errorf("status %d: %s", status, body))
			case domain.ErrorKindValidation:
				return domain.NewValidationError(domain.ServiceMicrosoftAds,
					"conta do Microsoft Ads inválida ou inexistente")
			}
		}
	}

	return domain.NewVendorError(domain.ServiceMicrosoftAds,
		"erro na API do Microsoft Ads",
		fmt.Errorf("status %d: %s", status, body))
}
