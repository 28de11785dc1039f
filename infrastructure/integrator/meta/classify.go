package meta

import (
	"fmt"
	"strings"

	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

// Mensagens conhecidas de token expirado/invalidado da Graph API.
// A Meta nem sempre devolve códigos estruturados; a detecção por
// substring é a prática consolidada e fica isolada aqui.
var tokenExpirationMessages = []string{
	"Error validating access token",
	"Session has expired",
	"The session has been invalidated",
	"The access token could not be decrypted",
}

var permissionMessages = []string{
	"(#200)",
	"Permissions error",
	"requires the ads_read permission",
}

func containsAny(message string, candidates []string) bool {
	for _, candidate := range candidates {
		if strings.Contains(message, candidate) {
			return true
		}
	}
	return false
}

// classifyResponse converte um corpo de erro da Graph API em um
// AnalysisError classificado
func classifyResponse(status int, body string) *domain.AnalysisError {
	switch {
	case containsAny(body, tokenExpirationMessages):
		return domain.NewAuthError(domain.ServiceMetaAds, domain.ReasonTokenExpired,
			"token do Meta expirado ou revogado, reconecte a conta",
			fmt.Errorf("status %d: %s", status, body))
	case containsAny(body, permissionMessages):
		return domain.NewAuthError(domain.ServiceMetaAds, domain.ReasonPermission,
			"token do Meta sem as permissões necessárias",
			fmt.Errorf("status %d: %s", status, body))
	}

	return domain.NewVendorError(domain.ServiceMetaAds,
		"erro na Graph API do Meta",
		fmt.Errorf("status %d: %s", status, body))
}
