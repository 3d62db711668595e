package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/wardenhub/internal/models"
)

// ApiKeyStore implements store.ApiKeyStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type ApiKeyStore struct {
	mu sync.RWMutex

	keys map[uuid.UUID][]*models.ApiKey // org_id -> keys, append order
}

// NewApiKeyStore creates a new in-memory API key store.
func NewApiKeyStore() *ApiKeyStore {
	return &ApiKeyStore{
		keys: make(map[uuid.UUID][]*models.ApiKey),
	}
}

// Create records a key reference for an organization.
func (s *ApiKeyStore) Create(ctx context.Context, key *models.ApiKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *key
	s.keys[key.OrgID] = append(s.keys[key.OrgID], &clone)

	return nil
}

// ListForOrganization returns all keys for an organization, oldest first.
func (s *ApiKeyStore) ListForOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.ApiKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.keys[orgID]
	result := make([]*models.ApiKey, 0, len(stored))
	for _, key := range stored {
		clone := *key
		result = append(result, &clone)
	}

	return result, nil
}
