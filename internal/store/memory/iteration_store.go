package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/wardenhub/internal/models"
	"github.com/wolfeidau/wardenhub/internal/store"
)

// IterationStore implements store.IterationStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type IterationStore struct {
	mu sync.RWMutex

	iterations map[uuid.UUID][]*models.WardenIteration // org_id -> ledger, ordinal order
}

// NewIterationStore creates a new in-memory iteration store.
func NewIterationStore() *IterationStore {
	return &IterationStore{
		iterations: make(map[uuid.UUID][]*models.WardenIteration),
	}
}

// Append records an iteration, enforcing strictly increasing ordinals.
func (s *IterationStore) Append(ctx context.Context, iteration *models.WardenIteration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.iterations[iteration.OrgID]
	if len(ledger) > 0 && iteration.Ordinal <= ledger[len(ledger)-1].Ordinal {
		return store.ErrOrdinalNotIncreasing
	}

	// Iterations are immutable once constructed, so storing the pointer is
	// safe here.
	s.iterations[iteration.OrgID] = append(ledger, iteration)

	return nil
}

// LastOrdinal returns the highest recorded ordinal, or -1 when none exist.
func (s *IterationStore) LastOrdinal(ctx context.Context, orgID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger := s.iterations[orgID]
	if len(ledger) == 0 {
		return -1, nil
	}

	return ledger[len(ledger)-1].Ordinal, nil
}

// ListByOrganization returns up to limit iterations, newest first.
func (s *IterationStore) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit int) ([]*models.WardenIteration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = store.DefaultIterationListLimit
	}

	ledger := s.iterations[orgID]

	result := make([]*models.WardenIteration, 0, limit)
	for i := len(ledger) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, ledger[i])
	}

	return result, nil
}
