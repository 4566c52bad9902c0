package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/shared"
)

// TokenRepository stores the token in the tokens table of a SQLite database.
//
// The table holds a single row (id = 1); Save overwrites it in place. Expiry is stored as Unix nanoseconds.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection.
// The schema must already be migrated with [shared.RunMigrations].
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Load returns the stored token or [shared.ErrNoToken].
func (r *TokenRepository) Load(ctx context.Context) (models.Token, error) {
	query := `
		SELECT access_token, refresh_token, expires_at, scope
		FROM tokens
		WHERE id = 1
	`

	var (
		token     models.Token
		expiresAt int64
	)

	err := r.db.QueryRowContext(ctx, query).Scan(&token.AccessToken, &token.RefreshToken, &expiresAt, &token.Scope)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Token{}, shared.ErrNoToken
	}
	if err != nil {
		return models.Token{}, fmt.Errorf("failed to query token: %w", err)
	}

	token.ExpiresAt = time.Unix(0, expiresAt)
	return token, nil
}

// Save inserts or overwrites the stored token.
func (r *TokenRepository) Save(ctx context.Context, token models.Token) error {
	if token.IsZero() {
		return fmt.Errorf("%w: refusing to store an empty access token", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO tokens (id, access_token, refresh_token, expires_at, scope, created_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			scope = excluded.scope,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query, token.AccessToken, token.RefreshToken, token.ExpiresAt.UnixNano(), token.Scope, now, now)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Clear deletes the stored token. Clearing an empty table is not an error.
func (r *TokenRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM tokens WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
