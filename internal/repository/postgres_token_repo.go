package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/shopwithme/internal/model"
)

// PostgresTokenRepo はPostgreSQLを使用したセキュリティトークンリポジトリ。
type PostgresTokenRepo struct {
	db *sql.DB
}

// NewPostgresTokenRepo はPostgresTokenRepoを生成する。
func NewPostgresTokenRepo(db *sql.DB) *PostgresTokenRepo {
	return &PostgresTokenRepo{db: db}
}

// Save はセキュリティトークンを保存する。
func (r *PostgresTokenRepo) Save(ctx context.Context, token *model.SecurityToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO security_tokens (api_access_token, issue_date, expiration_date,
			application, user_id, facebook_access_token)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		token.APIAccessToken, token.IssueDate, token.ExpirationDate,
		token.Application, token.UserID, token.FacebookAccessToken,
	)
	if err != nil {
		return fmt.Errorf("failed to save security token: %w", err)
	}
	return nil
}

// FindByToken はAPIアクセストークン文字列でセキュリティトークンを検索する。
func (r *PostgresTokenRepo) FindByToken(ctx context.Context, apiAccessToken string) (*model.SecurityToken, error) {
	token := &model.SecurityToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT api_access_token, issue_date, expiration_date, application,
			user_id, facebook_access_token
		 FROM security_tokens
		 WHERE api_access_token = $1`,
		apiAccessToken,
	).Scan(
		&token.APIAccessToken, &token.IssueDate, &token.ExpirationDate,
		&token.Application, &token.UserID, &token.FacebookAccessToken,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find security token: %w", err)
	}

	return token, nil
}

// Remove は指定トークンを削除する。存在しない場合もエラーにならない（冪等）。
func (r *PostgresTokenRepo) Remove(ctx context.Context, apiAccessToken string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM security_tokens WHERE api_access_token = $1`,
		apiAccessToken,
	)
	if err != nil {
		return fmt.Errorf("failed to remove security token: %w", err)
	}
	return nil
}

// RemoveAllForUser は指定ユーザーの全トークンを削除する。
func (r *PostgresTokenRepo) RemoveAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM security_tokens WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove user security tokens: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TokenRepository = (*PostgresTokenRepo)(nil)
