package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/wardenhub/internal/models"
	"github.com/wolfeidau/wardenhub/internal/store"
)

// IterationStore implements store.IterationStore using PostgreSQL.
// Check results are opaque to storage, so rows carry the aggregate verdict
// and counts only; listed iterations come back without result values.
type IterationStore struct {
	pool *pgxpool.Pool
}

// NewIterationStore creates a new PostgreSQL-backed iteration store.
// It shares the connection pool with other stores.
func NewIterationStore(pool *pgxpool.Pool) *IterationStore {
	return &IterationStore{
		pool: pool,
	}
}

// Append records an iteration, enforcing strictly increasing ordinals. The
// guard runs inside the insert so two racing producers can't both land the
// same or an out-of-order ordinal.
func (s *IterationStore) Append(ctx context.Context, iteration *models.WardenIteration) error {
	query := `
		INSERT INTO warden_iterations (
			org_id, ordinal, started_at, completed_at, valid, results_total, results_failed
		)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE NOT EXISTS (
			SELECT 1 FROM warden_iterations
			WHERE org_id = $1 AND ordinal >= $2
		)
	`

	result, err := s.pool.Exec(ctx, query,
		iteration.OrgID,
		iteration.Ordinal,
		iteration.StartedAt,
		iteration.CompletedAt,
		iteration.IsValid(),
		iteration.ResultsTotal(),
		iteration.ResultsFailed(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrOrdinalNotIncreasing
		}
		return fmt.Errorf("failed to append iteration: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrOrdinalNotIncreasing
	}

	log.Debug().
		Str("org_id", iteration.OrgID.String()).
		Int64("ordinal", iteration.Ordinal).
		Bool("valid", iteration.IsValid()).
		Msg("Appended iteration")

	return nil
}

// LastOrdinal returns the highest recorded ordinal, or -1 when none exist.
func (s *IterationStore) LastOrdinal(ctx context.Context, orgID uuid.UUID) (int64, error) {
	query := `
		SELECT ordinal
		FROM warden_iterations
		WHERE org_id = $1
		ORDER BY ordinal DESC
		LIMIT 1
	`

	var ordinal int64
	err := s.pool.QueryRow(ctx, query, orgID).Scan(&ordinal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return -1, nil
		}
		return 0, fmt.Errorf("failed to get last ordinal: %w", mapPostgresError(err))
	}

	return ordinal, nil
}

// ListByOrganization returns up to limit iterations, newest first.
func (s *IterationStore) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit int) ([]*models.WardenIteration, error) {
	if limit <= 0 {
		limit = store.DefaultIterationListLimit
	}

	query := `
		SELECT org_id, ordinal, started_at, completed_at, valid, results_total, results_failed
		FROM warden_iterations
		WHERE org_id = $1
		ORDER BY ordinal DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list iterations: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var iterations []*models.WardenIteration
	for rows.Next() {
		var (
			scanOrgID     uuid.UUID
			ordinal       int64
			startedAt     time.Time
			completedAt   time.Time
			valid         bool
			resultsTotal  int
			resultsFailed int
		)

		err := rows.Scan(&scanOrgID, &ordinal, &startedAt, &completedAt, &valid, &resultsTotal, &resultsFailed)
		if err != nil {
			return nil, fmt.Errorf("failed to scan iteration: %w", err)
		}

		iterations = append(iterations, models.RestoreWardenIteration(
			scanOrgID, ordinal, startedAt, completedAt, valid, resultsTotal, resultsFailed,
		))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating iterations: %w", mapPostgresError(err))
	}

	return iterations, nil
}
