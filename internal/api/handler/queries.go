package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/ads-analytics-api/infrastructure/repository"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
	"github.com/vfg2006/ads-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/ads-analytics-api/pkg/log"
	"github.com/vfg2006/ads-analytics-api/pkg/middleware"
	"github.com/vfg2006/ads-analytics-api/pkg/utils"
)

// SavedQueryRequest é o corpo de criação/atualização de consulta salva
type SavedQueryRequest struct {
	Service   domain.Service  `json:"service"`
	QueryName string          `json:"query_name"`
	QueryData json.RawMessage `json:"query_data"`
}

func (r *SavedQueryRequest) validate() string {
	if !r.Service.Valid() {
		return "Serviço desconhecido: " + string(r.Service)
	}
	if r.QueryName == "" {
		return "Nome da consulta é obrigatório"
	}
	if len(r.QueryData) == 0 {
		return "Parâmetros da consulta são obrigatórios"
	}
	return ""
}

// ListQueries lista as consultas salvas do usuário logado
func ListQueries(queryRepo repository.SavedQueryRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		queries, err := queryRepo.ListQueriesByUser(userClaims.UserID)
		if err != nil {
			logger.WithError(err).Error("queries: failed to list saved queries")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar consultas salvas", nil)
			return
		}

		if queries == nil {
			queries = []*domain.SavedQuery{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(queries)
	})
}

// CreateQuery salva uma nova consulta parametrizada
func CreateQuery(queryRepo repository.SavedQueryRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		var req SavedQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		if msg := req.validate(); msg != "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, msg, nil)
			return
		}

		id, err := utils.GenerateID()
		if err != nil {
			logger.WithError(err).Error("queries: failed to generate query ID")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao criar consulta", nil)
			return
		}

		query := &domain.SavedQuery{
			ID:        id,
			UserID:    userClaims.UserID,
			Service:   req.Service,
			QueryName: req.QueryName,
			QueryData: req.QueryData,
		}

		if err := queryRepo.CreateQuery(query); err != nil {
			logger.WithError(err).Error("queries: failed to create saved query")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao criar consulta", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(query)
	})
}

// UpdateQuery atualiza uma consulta salva do usuário logado
func UpdateQuery(queryRepo repository.SavedQueryRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		queryID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req SavedQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		if msg := req.validate(); msg != "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, msg, nil)
			return
		}

		query := &domain.SavedQuery{
			ID:        queryID,
			UserID:    userClaims.UserID,
			Service:   req.Service,
			QueryName: req.QueryName,
			QueryData: req.QueryData,
		}

		if err := queryRepo.UpdateQuery(query); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Consulta não encontrada", nil)
				return
			}
			logger.WithError(err).Error("queries: failed to update saved query")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao atualizar consulta", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(query)
	})
}

// DeleteQuery remove uma consulta salva do usuário logado
func DeleteQuery(queryRepo repository.SavedQueryRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		queryID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		if err := queryRepo.DeleteQuery(userClaims.UserID, queryID); err != nil {
			logger.WithError(err).Error("queries: failed to delete saved query")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao remover consulta", nil)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
