package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/ads-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

const savedQueriesTable = "saved_queries"

type SavedQueryRepository interface {
	CreateQuery(query *domain.SavedQuery) error
	UpdateQuery(query *domain.SavedQuery) error
	DeleteQuery(userID int, queryID string) error
	GetQueryByID(userID int, queryID string) (*domain.SavedQuery, error)
	ListQueriesByUser(userID int) ([]*domain.SavedQuery, error)
}

type savedQueryRepository struct {
	conn *postgres.Connection
}

func NewSavedQueryRepository(conn *postgres.Connection) SavedQueryRepository {
	return &savedQueryRepository{
		conn: conn,
	}
}

func (r *savedQueryRepository) CreateQuery(query *domain.SavedQuery) error {
	queryBuilder := squirrel.
		Insert(savedQueriesTable).
		Columns("id", "user_id", "service", "query_name", "query_data").
		Values(query.ID, query.UserID, string(query.Service), query.QueryName, []byte(query.QueryData)).
		Suffix("RETURNING created_at").
		PlaceholderFormat(squirrel.Dollar)

	querySQL, queryArgs, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if err := r.conn.QueryRow(querySQL, queryArgs...).Scan(&query.CreatedAt); err != nil {
		return fmt.Errorf("erro ao salvar consulta: %w", err)
	}

	return nil
}

func (r *savedQueryRepository) UpdateQuery(query *domain.SavedQuery) error {
	queryBuilder := squirrel.
		Update(savedQueriesTable).
		Where(squirrel.Eq{"id": query.ID, "user_id": query.UserID})

	if query.QueryName != "" {
		queryBuilder = queryBuilder.Set("query_name", query.QueryName)
	}

	if len(query.QueryData) > 0 {
		queryBuilder = queryBuilder.Set("query_data", []byte(query.QueryData))
	}

	querySQL, queryArgs, err := queryBuilder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	result, err := r.conn.Exec(querySQL, queryArgs...)
	if err != nil {
		return fmt.Errorf("erro ao atualizar consulta: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *savedQueryRepository) DeleteQuery(userID int, queryID string) error {
	queryBuilder := squirrel.
		Delete(savedQueriesTable).
		Where(squirrel.Eq{"id": queryID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	querySQL, queryArgs, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.Exec(querySQL, queryArgs...); err != nil {
		return fmt.Errorf("erro ao remover consulta: %w", err)
	}

	return nil
}

func (r *savedQueryRepository) GetQueryByID(userID int, queryID string) (*domain.SavedQuery, error) {
	queryBuilder := squirrel.
		Select("id", "user_id", "service", "query_name", "query_data", "created_at").
		From(savedQueriesTable).
		Where(squirrel.Eq{"id": queryID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	querySQL, queryArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	var saved domain.SavedQuery
	var queryData []byte

	err = r.conn.QueryRow(querySQL, queryArgs...).Scan(
		&saved.ID,
		&saved.UserID,
		&saved.Service,
		&saved.QueryName,
		&queryData,
		&saved.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar consulta: %w", err)
	}

	saved.QueryData = queryData
	return &saved, nil
}

// ListQueriesByUser devolve as consultas do usuário ordenadas por recência
func (r *savedQueryRepository) ListQueriesByUser(userID int) ([]*domain.SavedQuery, error) {
	queryBuilder := squirrel.
		Select("id", "user_id", "service", "query_name", "query_data", "created_at").
		From(savedQueriesTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	querySQL, queryArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	rows, err := r.conn.Query(querySQL, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar consultas salvas: %w", err)
	}
	defer rows.Close()

	var queries []*domain.SavedQuery
	for rows.Next() {
		var saved domain.SavedQuery
		var queryData []byte

		if err := rows.Scan(
			&saved.ID,
			&saved.UserID,
			&saved.Service,
			&saved.QueryName,
			&queryData,
			&saved.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao processar resultado: %w", err)
		}

		saved.QueryData = queryData
		queries = append(queries, &saved)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante iteração: %w", err)
	}

	return queries, nil
}
