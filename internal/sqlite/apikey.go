package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rpggio/tabsync/internal/repository"
)

// APIKeyRepository maps bearer tokens to owners. Only token hashes are stored.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// AddKey registers token for owner
func (r *APIKeyRepository) AddKey(ctx context.Context, token, owner, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, owner, created_at, description) VALUES (?, ?, ?, ?)`,
		HashToken(token), owner, time.Now().UTC(), description)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// ResolveOwner returns the owner of token
func (r *APIKeyRepository) ResolveOwner(ctx context.Context, token string) (string, error) {
	hash := HashToken(token)
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT owner FROM api_keys WHERE key_hash = ?`, hash).Scan(&owner)
	if err == sql.ErrNoRows || (err == nil && owner == "") {
		return "", repository.ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash); err != nil {
		return "", fmt.Errorf("failed to touch api key: %w", err)
	}
	return owner, nil
}

// HashToken returns the stored form of a bearer token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
