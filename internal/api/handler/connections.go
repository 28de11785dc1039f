package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/ads-analytics-api/infrastructure/repository"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
	"github.com/vfg2006/ads-analytics-api/internal/usecases/connecting"
	"github.com/vfg2006/ads-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/ads-analytics-api/pkg/log"
	"github.com/vfg2006/ads-analytics-api/pkg/middleware"
)

// ConnectionCallbackRequest é o corpo enviado pelo painel após o fluxo
// OAuth no navegador, com os tokens devolvidos pelo fornecedor
type ConnectionCallbackRequest struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	Scopes       []string `json:"scopes"`
	ExpiresIn    int64    `json:"expires_in"`
}

// GetConnectionStatus avalia a saúde da conexão do usuário com o fornecedor
func GetConnectionStatus(service connecting.StatusChecker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		provider, ok := providerFromRequest(w, r)
		if !ok {
			return
		}

		skipSlowCheck := r.URL.Query().Get("skip_slow_check") == "true"

		result := service.CheckStatus(r.Context(), userClaims.UserID, provider, skipSlowCheck)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	})
}

// ConnectionCallback grava (ou regrava) a credencial OAuth do usuário
// para o fornecedor
func ConnectionCallback(credentialRepo repository.CredentialRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		provider, ok := providerFromRequest(w, r)
		if !ok {
			return
		}

		var req ConnectionCallbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		if req.AccessToken == "" && req.RefreshToken == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Nenhum token informado", nil)
			return
		}

		credential := &domain.Credential{
			UserID:       userClaims.UserID,
			Provider:     provider,
			AccessToken:  req.AccessToken,
			RefreshToken: req.RefreshToken,
			Scopes:       req.Scopes,
		}
		if req.ExpiresIn > 0 {
			expiresAt := time.Now().Add(time.Duration(req.ExpiresIn) * time.Second)
			credential.ExpiresAt = &expiresAt
		}

		if err := credentialRepo.UpsertCredential(credential); err != nil {
			logger.WithFields(log.Fields{
				"user_id": userClaims.UserID,
				"service": provider,
				"error":   err.Error(),
			}).Error("connections: failed to store credential")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao salvar a conexão", nil)
			return
		}

		logger.WithFields(log.Fields{
			"user_id": userClaims.UserID,
			"service": provider,
		}).Info("connections: credential stored")

		w.WriteHeader(http.StatusNoContent)
	})
}

// Disconnect remove a credencial do usuário para o fornecedor
func Disconnect(credentialRepo repository.CredentialRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		provider, ok := providerFromRequest(w, r)
		if !ok {
			return
		}

		if err := credentialRepo.DeleteCredential(userClaims.UserID, provider); err != nil {
			logger.WithFields(log.Fields{
				"user_id": userClaims.UserID,
				"service": provider,
				"error":   err.Error(),
			}).Error("connections: failed to delete credential")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao remover a conexão", nil)
			return
		}

		logger.WithFields(log.Fields{
			"user_id": userClaims.UserID,
			"service": provider,
		}).Info("connections: credential removed")

		w.WriteHeader(http.StatusNoContent)
	})
}

// providerFromRequest valida o parâmetro :provider da URL. TrackingData
// não é um fornecedor conectável: não há OAuth nem credencial para ele.
func providerFromRequest(w http.ResponseWriter, r *http.Request) (domain.Service, bool) {
	provider := domain.Service(httprouter.ParamsFromContext(r.Context()).ByName("provider"))
	if !provider.Valid() || !provider.Analyzable() {
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest,
			"Fornecedor desconhecido: "+string(provider), nil)
		return "", false
	}
	return provider, true
}
