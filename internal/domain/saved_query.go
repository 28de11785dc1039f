package domain

import (
	"encoding/json"
	"time"
)

// SavedQuery é uma consulta parametrizada salva pelo usuário no painel.
// QueryData é o saco de parâmetros específico do serviço, guardado como
// JSONB e devolvido intacto para o painel repopular o formulário.
type SavedQuery struct {
	ID        string          `json:"id"`
	UserID    int             `json:"user_id"`
	Service   Service         `json:"service"`
	QueryName string          `json:"query_name"`
	QueryData json.RawMessage `json:"query_data"`
	CreatedAt time.Time       `json:"created_at"`
}

// AnalysisParams decodifica o saco de parâmetros da consulta salva
func (q *SavedQuery) AnalysisParams() (*AnalysisParams, error) {
	params := &AnalysisParams{}
	if err := json.Unmarshal(q.QueryData, params); err != nil {
		return nil, err
	}
	return params, nil
}
