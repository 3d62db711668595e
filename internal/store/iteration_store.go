package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/wardenhub/internal/models"
)

// ErrOrdinalNotIncreasing is returned when an appended iteration's ordinal
// does not exceed the organization's last recorded ordinal.
var ErrOrdinalNotIncreasing = errors.New("iteration ordinal must exceed the last recorded ordinal")

// DefaultIterationListLimit is the page size applied when a list call
// doesn't set one.
const DefaultIterationListLimit = 50

// IterationStore defines the interface for the append-only iteration ledger.
// Entries are never mutated or deleted once appended.
type IterationStore interface {
	// Append records an iteration. Ordinals must be strictly increasing per
	// organization; returns ErrOrdinalNotIncreasing otherwise.
	Append(ctx context.Context, iteration *models.WardenIteration) error

	// LastOrdinal returns the highest ordinal recorded for the organization,
	// or -1 when no iterations exist yet.
	LastOrdinal(ctx context.Context, orgID uuid.UUID) (int64, error)

	// ListByOrganization returns up to limit iterations for the
	// organization, newest first. limit <= 0 applies a default of 50.
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit int) ([]*models.WardenIteration, error)
}
