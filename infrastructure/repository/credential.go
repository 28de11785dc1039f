package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/vfg2006/ads-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

const credentialsTable = "provider_credentials"

// CredentialRepository persiste as concessões OAuth por usuário/serviço.
// É a única fronteira de persistência que o núcleo de análise conhece;
// nos testes é trocada por um fake em memória.
type CredentialRepository interface {
	GetCredential(userID int, provider domain.Service) (*domain.Credential, error)
	UpsertCredential(credential *domain.Credential) error
	DeleteCredential(userID int, provider domain.Service) error
	ListExpiring(within time.Duration) ([]*domain.Credential, error)
}

type credentialRepository struct {
	conn *postgres.Connection
}

func NewCredentialRepository(conn *postgres.Connection) CredentialRepository {
	return &credentialRepository{
		conn: conn,
	}
}

func (r *credentialRepository) GetCredential(userID int, provider domain.Service) (*domain.Credential, error) {
	queryBuilder := squirrel.
		Select("user_id", "provider", "access_token", "refresh_token", "scope", "expires_at", "updated_at").
		From(credentialsTable).
		Where(squirrel.Eq{"user_id": userID, "provider": string(provider)}).
		PlaceholderFormat(squirrel.Dollar)

	credSQL, credArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	var (
		cred         domain.Credential
		refreshToken sql.NullString
		scope        sql.NullString
		expiresAt    sql.NullTime
	)

	err = r.conn.QueryRow(credSQL, credArgs...).Scan(
		&cred.UserID,
		&cred.Provider,
		&cred.AccessToken,
		&refreshToken,
		&scope,
		&expiresAt,
		&cred.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar credencial: %w", err)
	}

	cred.RefreshToken = refreshToken.String
	if scope.Valid && scope.String != "" {
		cred.Scopes = strings.Fields(scope.String)
	}
	if expiresAt.Valid {
		cred.ExpiresAt = &expiresAt.Time
	}

	return &cred, nil
}

func (r *credentialRepository) UpsertCredential(credential *domain.Credential) error {
	var refreshToken any
	if credential.RefreshToken != "" {
		refreshToken = credential.RefreshToken
	}

	var expiresAt any
	if credential.ExpiresAt != nil {
		expiresAt = *credential.ExpiresAt
	}

	queryBuilder := squirrel.
		Insert(credentialsTable).
		Columns("user_id", "provider", "access_token", "refresh_token", "scope", "expires_at", "updated_at").
		Values(
			credential.UserID,
			string(credential.Provider),
			credential.AccessToken,
			refreshToken,
			strings.Join(credential.Scopes, " "),
			expiresAt,
			squirrel.Expr("NOW()"),
		).
		Suffix(`ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			scope = EXCLUDED.scope,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()`).
		PlaceholderFormat(squirrel.Dollar)

	credSQL, credArgs, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.Exec(credSQL, credArgs...); err != nil {
		return fmt.Errorf("erro ao salvar credencial: %w", err)
	}

	return nil
}

func (r *credentialRepository) DeleteCredential(userID int, provider domain.Service) error {
	queryBuilder := squirrel.
		Delete(credentialsTable).
		Where(squirrel.Eq{"user_id": userID, "provider": string(provider)}).
		PlaceholderFormat(squirrel.Dollar)

	credSQL, credArgs, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir consulta: %w", err)
	}

	if _, err := r.conn.Exec(credSQL, credArgs...); err != nil {
		return fmt.Errorf("erro ao remover credencial: %w", err)
	}

	return nil
}

// ListExpiring busca as credenciais com expiração dentro da janela dada,
// usadas pelo agendador de renovação proativa
func (r *credentialRepository) ListExpiring(within time.Duration) ([]*domain.Credential, error) {
	queryBuilder := squirrel.
		Select("user_id", "provider", "access_token", "refresh_token", "scope", "expires_at", "updated_at").
		From(credentialsTable).
		Where(squirrel.NotEq{"expires_at": nil}).
		Where(squirrel.Lt{"expires_at": time.Now().Add(within)}).
		OrderBy("expires_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	credSQL, credArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	rows, err := r.conn.Query(credSQL, credArgs...)
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar credenciais: %w", err)
	}
	defer rows.Close()

	var credentials []*domain.Credential
	for rows.Next() {
		var (
			cred         domain.Credential
			refreshToken sql.NullString
			scope        sql.NullString
			expiresAt    sql.NullTime
		)

		if err := rows.Scan(
			&cred.UserID,
			&cred.Provider,
			&cred.AccessToken,
			&refreshToken,
			&scope,
			&expiresAt,
			&cred.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao processar resultado: %w", err)
		}

		cred.RefreshToken = refreshToken.String
		if scope.Valid && scope.String != "" {
			cred.Scopes = strings.Fields(scope.String)
		}
		if expiresAt.Valid {
			cred.ExpiresAt = &expiresAt.Time
		}

		credentials = append(credentials, &cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante iteração: %w", err)
	}

	return credentials, nil
}
