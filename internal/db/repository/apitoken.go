package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/signetlab/signet/internal/models"
)

// APITokenRepository handles API token data access
type APITokenRepository struct {
	db *sql.DB
}

// NewAPITokenRepository creates a new API token repository
func NewAPITokenRepository(db *sql.DB) *APITokenRepository {
	return &APITokenRepository{db: db}
}

// Create persists a new API token hash
func (r *APITokenRepository) Create(token *models.APIToken) error {
	query := `
		INSERT INTO api_tokens (user_id, token_hash, label, expires_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		token.UserID,
		token.TokenHash,
		token.Label,
		token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create api token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	token.ID = id
	token.CreatedAt = time.Now()

	return nil
}

// FindActiveByHash retrieves a token by its hash, excluding expired ones.
// A NULL expires_at means the token never expires.
func (r *APITokenRepository) FindActiveByHash(tokenHash string) (*models.APIToken, error) {
	query := `
		SELECT id, user_id, token_hash, label, created_at, expires_at, last_used_at
		FROM api_tokens
		WHERE token_hash = ? AND (expires_at IS NULL OR expires_at > DATETIME('now'))
	`

	token := &models.APIToken{}
	var expiresAt, lastUsedAt sql.NullTime

	err := r.db.QueryRow(query, tokenHash).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.Label,
		&token.CreatedAt,
		&expiresAt,
		&lastUsedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if expiresAt.Valid {
		token.ExpiresAt = &expiresAt.Time
	}
	if lastUsedAt.Valid {
		token.LastUsedAt = &lastUsedAt.Time
	}

	return token, nil
}

// UpdateLastUsed updates the last_used_at timestamp
func (r *APITokenRepository) UpdateLastUsed(id int64) error {
	query := `
		UPDATE api_tokens
		SET last_used_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to update last used: %w", err)
	}

	return nil
}

// ListByUserID lists all tokens for a signer
func (r *APITokenRepository) ListByUserID(userID string) ([]*models.APIToken, error) {
	query := `
		SELECT id, user_id, token_hash, label, created_at, expires_at, last_used_at
		FROM api_tokens
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*models.APIToken

	for rows.Next() {
		token := &models.APIToken{}
		var expiresAt, lastUsedAt sql.NullTime

		err := rows.Scan(
			&token.ID,
			&token.UserID,
			&token.TokenHash,
			&token.Label,
			&token.CreatedAt,
			&expiresAt,
			&lastUsedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}

		if expiresAt.Valid {
			token.ExpiresAt = &expiresAt.Time
		}
		if lastUsedAt.Valid {
			token.LastUsedAt = &lastUsedAt.Time
		}

		tokens = append(tokens, token)
	}

	return tokens, rows.Err()
}
