package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
	"github.com/vfg2006/ads-analytics-api/internal/usecases/analyzing"
	"github.com/vfg2006/ads-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/ads-analytics-api/pkg/log"
	"github.com/vfg2006/ads-analytics-api/pkg/middleware"
)

// RunAnalysis executa uma análise de métricas no fornecedor informado na URL
func RunAnalysis(service analyzing.Analyzer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		serviceName := domain.Service(httprouter.ParamsFromContext(r.Context()).ByName("service"))
		if !serviceName.Valid() || !serviceName.Analyzable() {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest,
				"Serviço não suporta análise: "+string(serviceName), nil)
			return
		}

		var params domain.AnalysisParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			logger.WithFields(log.Fields{
				"service": serviceName,
				"error":   err.Error(),
			}).Warn("analysis: invalid request body")

			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		result, err := service.Analyze(r.Context(), userClaims.UserID, serviceName, &params)
		if err != nil {
			writeAnalysisError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.WithError(err).Error("analysis: failed to encode response")
		}
	})
}

// writeAnalysisError converte a taxonomia de erros de análise nos
// códigos e status HTTP da API
func writeAnalysisError(w http.ResponseWriter, err error) {
	analysisErr, ok := domain.AsAnalysisError(err)
	if !ok {
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno ao executar análise", nil)
		return
	}

	switch analysisErr.Kind {
	case domain.ErrorKindValidation:
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, analysisErr.Message, nil)

	case domain.ErrorKindAuth:
		apiErrors.WriteError(w, apiErrors.ErrAccountReconnect, analysisErr.Message, map[string]any{
			"service": analysisErr.Service,
			"reason":  analysisErr.Reason,
		})

	case domain.ErrorKindVendor:
		if analysisErr.Timeout() {
			apiErrors.WriteError(w, apiErrors.ErrExternalTimeout, analysisErr.Message, map[string]any{
				"service": analysisErr.Service,
			})
			return
		}
		apiErrors.WriteError(w, apiErrors.ErrExternalService, analysisErr.Message, map[string]any{
			"service": analysisErr.Service,
		})

	default:
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno ao executar análise", nil)
	}
}
