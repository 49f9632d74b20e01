package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/playster/internal/models"
	"github.com/desertthunder/playster/internal/shared"
	"golang.org/x/oauth2"
)

// TokenRepository stores one OAuth token per account name.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save upserts the token for the account.
//
// A token without a refresh token keeps the previously stored one, since Google only issues it on first consent.
func (r *TokenRepository) Save(ctx context.Context, id models.Identity, token *oauth2.Token) error {
	if err := id.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidIdentity, err)
	}
	if token == nil {
		return fmt.Errorf("%w: nil token", shared.ErrInvalidArgument)
	}

	var expiry sql.NullTime
	if !token.Expiry.IsZero() {
		expiry = sql.NullTime{Time: token.Expiry.UTC(), Valid: true}
	}

	query := `
		INSERT INTO account_tokens (account_name, account_type, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_name) DO UPDATE SET
			account_type = excluded.account_type,
			access_token = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token = '' THEN account_tokens.refresh_token ELSE excluded.refresh_token END,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		id.Name, id.Type, token.AccessToken, token.RefreshToken, token.TokenType, expiry, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Get returns the stored token for the account name. Missing accounts wrap [shared.ErrNotFound].
func (r *TokenRepository) Get(ctx context.Context, name string) (*oauth2.Token, error) {
	query := `
		SELECT access_token, refresh_token, token_type, expiry
		FROM account_tokens
		WHERE account_name = ?
	`

	var (
		token  oauth2.Token
		expiry sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, name).Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: token for %s", shared.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}
	if expiry.Valid {
		token.Expiry = expiry.Time
	}
	return &token, nil
}

// Delete removes the token for the account name. Deleting a missing account is not an error.
func (r *TokenRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM account_tokens WHERE account_name = ?", name); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// List returns every account with a stored token, ordered by name.
func (r *TokenRepository) List(ctx context.Context) ([]models.Identity, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT account_name, account_type FROM account_tokens ORDER BY account_name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	var ids []models.Identity
	for rows.Next() {
		var id models.Identity
		if err := rows.Scan(&id.Name, &id.Type); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}
