package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// TokenKey is the well-known key the bearer token is stored under.
const TokenKey = "token"

// TokenRepository implements domain.TokenStore using SQLite.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new SQLite-backed TokenRepository.
func NewTokenRepository(db *DB) *TokenRepository {
	return &TokenRepository{db: db.SqlDB}
}

func (r *TokenRepository) Load(ctx context.Context) (string, error) {
	var token string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM auth_token WHERE key = ?`, TokenKey,
	).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("query token: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) Save(ctx context.Context, token string) error {
	if token == "" {
		return r.Clear(ctx)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_token (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		TokenKey, token, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_token WHERE key = ?`, TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
