// Package history turns check outcomes into the append-only iteration ledger.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/wardenhub/internal/models"
	"github.com/wolfeidau/wardenhub/internal/store"
)

// Recorder assigns iteration ordinals and appends to the ledger. Ordinal
// assignment is serialized per organization, so concurrent execution drivers
// still observe a strictly increasing stream.
type Recorder struct {
	iterations store.IterationStore

	mu       sync.Mutex
	orgLocks map[uuid.UUID]*sync.Mutex
}

// NewRecorder creates a recorder on top of an iteration store.
func NewRecorder(iterations store.IterationStore) *Recorder {
	return &Recorder{
		iterations: iterations,
		orgLocks:   make(map[uuid.UUID]*sync.Mutex),
	}
}

// Record captures one execution pass: it assigns the next ordinal for the
// organization, builds the iteration and appends it to the ledger.
func (r *Recorder) Record(ctx context.Context, orgID uuid.UUID, results []models.CheckResult, startedAt, completedAt time.Time) (*models.WardenIteration, error) {
	lock := r.lockFor(orgID)
	lock.Lock()
	defer lock.Unlock()

	last, err := r.iterations.LastOrdinal(ctx, orgID)
	if err != nil {
		return nil, err
	}

	iteration, err := models.NewWardenIteration(orgID, last+1, results, startedAt, completedAt)
	if err != nil {
		return nil, err
	}

	if err := r.iterations.Append(ctx, iteration); err != nil {
		return nil, err
	}

	log.Debug().
		Str("org_id", orgID.String()).
		Int64("ordinal", iteration.Ordinal).
		Int("results", iteration.ResultsTotal()).
		Int("failed", iteration.ResultsFailed()).
		Bool("valid", iteration.IsValid()).
		Msg("Recorded iteration")

	return iteration, nil
}

// History returns up to limit recorded iterations, newest first.
func (r *Recorder) History(ctx context.Context, orgID uuid.UUID, limit int) ([]*models.WardenIteration, error) {
	return r.iterations.ListByOrganization(ctx, orgID, limit)
}

func (r *Recorder) lockFor(orgID uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.orgLocks[orgID]
	if !ok {
		lock = &sync.Mutex{}
		r.orgLocks[orgID] = lock
	}

	return lock
}
