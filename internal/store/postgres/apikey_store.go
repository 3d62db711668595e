package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/wardenhub/internal/models"
)

// ApiKeyStore implements store.ApiKeyStore using PostgreSQL.
type ApiKeyStore struct {
	pool *pgxpool.Pool
}

// NewApiKeyStore creates a new PostgreSQL-backed API key store.
// It shares the connection pool with other stores.
func NewApiKeyStore(pool *pgxpool.Pool) *ApiKeyStore {
	return &ApiKeyStore{
		pool: pool,
	}
}

// Create records a key reference for an organization.
func (s *ApiKeyStore) Create(ctx context.Context, key *models.ApiKey) error {
	query := `
		INSERT INTO api_keys (
			key_id, org_id, secret, fingerprint, created_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := s.pool.Exec(ctx, query,
		key.KeyID,
		key.OrgID,
		key.Secret,
		key.Fingerprint,
		key.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create api key: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("org_id", key.OrgID.String()).
		Str("fingerprint", key.Fingerprint).
		Msg("Created api key")

	return nil
}

// ListForOrganization returns all keys for an organization, oldest first.
func (s *ApiKeyStore) ListForOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.ApiKey, error) {
	query := `
		SELECT key_id, org_id, secret, fingerprint, created_at
		FROM api_keys
		WHERE org_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", mapPostgresError(err))
	}
	defer rows.Close()

	keys := make([]*models.ApiKey, 0)
	for rows.Next() {
		var key models.ApiKey
		err := rows.Scan(
			&key.KeyID,
			&key.OrgID,
			&key.Secret,
			&key.Fingerprint,
			&key.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		keys = append(keys, &key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api keys: %w", mapPostgresError(err))
	}

	return keys, nil
}
