package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNegativeOrdinal is returned when an iteration is created with an
// ordinal below zero.
var ErrNegativeOrdinal = errors.New("iteration ordinal must not be negative")

// CheckResult is the minimal capability a warden check outcome must expose.
// The ledger reads nothing but the validity flag, so new check kinds can be
// recorded without changes here.
type CheckResult interface {
	IsValid() bool
}

// WardenIteration is an immutable record of one execution pass over an
// organization's wardens. Ordinals are strictly increasing per organization;
// assignment is serialized by the history recorder.
type WardenIteration struct {
	OrgID       uuid.UUID
	Ordinal     int64
	Results     []CheckResult // captured once at creation, never appended to
	StartedAt   time.Time
	CompletedAt time.Time

	valid         bool
	resultsTotal  int
	resultsFailed int
}

// NewWardenIteration creates a ledger entry for one execution pass. The
// results slice is copied; later mutation of the caller's slice does not
// affect the iteration.
//
// Timestamp ordering is the caller's responsibility: completedAt earlier
// than startedAt is not rejected and yields a negative ExecutionTime.
func NewWardenIteration(orgID uuid.UUID, ordinal int64, results []CheckResult, startedAt, completedAt time.Time) (*WardenIteration, error) {
	if ordinal < 0 {
		return nil, ErrNegativeOrdinal
	}

	captured := make([]CheckResult, len(results))
	copy(captured, results)

	failed := 0
	for _, r := range results {
		if !r.IsValid() {
			failed++
		}
	}

	return &WardenIteration{
		OrgID:         orgID,
		Ordinal:       ordinal,
		Results:       captured,
		StartedAt:     startedAt,
		CompletedAt:   completedAt,
		valid:         failed == 0,
		resultsTotal:  len(results),
		resultsFailed: failed,
	}, nil
}

// RestoreWardenIteration rebuilds a ledger entry from persisted summary
// fields. Results themselves are opaque to storage, so restored iterations
// carry counts and the verdict but no result values.
func RestoreWardenIteration(orgID uuid.UUID, ordinal int64, startedAt, completedAt time.Time, valid bool, total, failed int) *WardenIteration {
	return &WardenIteration{
		OrgID:         orgID,
		Ordinal:       ordinal,
		StartedAt:     startedAt,
		CompletedAt:   completedAt,
		valid:         valid,
		resultsTotal:  total,
		resultsFailed: failed,
	}
}

// IsValid reports the aggregate verdict: true iff every captured result was
// valid. An iteration with no results is valid (vacuous truth, intentional).
func (it *WardenIteration) IsValid() bool {
	return it.valid
}

// ExecutionTime returns completedAt minus startedAt.
func (it *WardenIteration) ExecutionTime() time.Duration {
	return it.CompletedAt.Sub(it.StartedAt)
}

// ResultsTotal returns the number of results captured by this iteration.
func (it *WardenIteration) ResultsTotal() int {
	return it.resultsTotal
}

// ResultsFailed returns the number of captured results that were invalid.
func (it *WardenIteration) ResultsFailed() int {
	return it.resultsFailed
}
