package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"debtkeeper/internal/domain"
)

type ApiTokenRepository struct {
	db *sql.DB
}

func NewApiTokenRepository(db *sql.DB) *ApiTokenRepository {
	return &ApiTokenRepository{db: db}
}

// FindByPlainToken resolves a bearer token to its owner. Tokens are stored
// SHA-256 hashed; only unexpired tokens match.
func (r *ApiTokenRepository) FindByPlainToken(ctx context.Context, plainToken string) (*domain.ApiToken, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, errors.New("empty token")
	}

	sum := sha256.Sum256([]byte(plainToken))
	hash := fmt.Sprintf("%x", sum)

	query := `
		SELECT id, token_hash, owner_id, name, expires_at
		FROM api_tokens
		WHERE token_hash = $1
		  AND (expires_at IS NULL OR expires_at > $2)
		LIMIT 1
	`

	var t domain.ApiToken
	err := r.db.QueryRowContext(ctx, query, hash, time.Now()).Scan(
		&t.ID,
		&t.TokenHash,
		&t.OwnerID,
		&t.Name,
		&t.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}
