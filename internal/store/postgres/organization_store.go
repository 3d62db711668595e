package postgres

import (
	"context"
	"encoding/json"
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

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
// The aggregate is stored document-style: wardens and memberships live in
// jsonb columns and every write replaces the whole row.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{
		pool: pool,
	}
}

// wardenDoc is the jsonb shape of one embedded warden.
type wardenDoc struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// memberDoc is the jsonb shape of one embedded membership.
type memberDoc struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
	AddedAt time.Time `json:"added_at"`
}

func encodeWardens(wardens []models.Warden) ([]byte, error) {
	docs := make([]wardenDoc, 0, len(wardens))
	for _, w := range wardens {
		docs = append(docs, wardenDoc{Name: w.Name, Enabled: w.Enabled})
	}
	return json.Marshal(docs)
}

func encodeMembers(members []models.Membership) ([]byte, error) {
	docs := make([]memberDoc, 0, len(members))
	for _, m := range members {
		docs = append(docs, memberDoc{
			UserID:  m.UserID,
			Email:   m.Email,
			Role:    string(m.Role),
			AddedAt: m.AddedAt,
		})
	}
	return json.Marshal(docs)
}

func decodeOrganization(org *models.Organization, wardens, members []byte) error {
	var wardenDocs []wardenDoc
	if err := json.Unmarshal(wardens, &wardenDocs); err != nil {
		return fmt.Errorf("failed to decode wardens: %w", err)
	}

	var memberDocs []memberDoc
	if err := json.Unmarshal(members, &memberDocs); err != nil {
		return fmt.Errorf("failed to decode members: %w", err)
	}

	org.Wardens = make([]models.Warden, 0, len(wardenDocs))
	for _, d := range wardenDocs {
		org.Wardens = append(org.Wardens, models.Warden{Name: d.Name, Enabled: d.Enabled})
	}

	org.Members = make([]models.Membership, 0, len(memberDocs))
	for _, d := range memberDocs {
		org.Members = append(org.Members, models.Membership{
			UserID:  d.UserID,
			Email:   d.Email,
			Role:    models.OrganizationRole(d.Role),
			AddedAt: d.AddedAt,
		})
	}

	return nil
}

const organizationColumns = `org_id, name, owner_user_id, wardens, members, revision, created_at, updated_at`

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var (
		org     models.Organization
		wardens []byte
		members []byte
	)

	err := row.Scan(
		&org.OrgID,
		&org.Name,
		&org.OwnerUserID,
		&wardens,
		&members,
		&org.Revision,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeOrganization(&org, wardens, members); err != nil {
		return nil, err
	}

	return &org, nil
}

// Create inserts a new organization.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	wardens, err := encodeWardens(org.Wardens)
	if err != nil {
		return fmt.Errorf("failed to encode wardens: %w", err)
	}

	members, err := encodeMembers(org.Members)
	if err != nil {
		return fmt.Errorf("failed to encode members: %w", err)
	}

	query := `
		INSERT INTO organizations (
			org_id, name, owner_user_id, wardens, members, revision, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err = s.pool.Exec(ctx, query,
		org.OrgID,
		org.Name,
		org.OwnerUserID,
		wardens,
		members,
		org.Revision,
		org.CreatedAt,
		org.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrOrganizationAlreadyExists
		}
		return fmt.Errorf("failed to create organization: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("org_id", org.OrgID.String()).
		Str("name", org.Name).
		Msg("Created organization")

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		WHERE org_id = $1
	`

	org, err := scanOrganization(s.pool.QueryRow(ctx, query, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", mapPostgresError(err))
	}

	return org, nil
}

// GetByNameForOwner retrieves an organization by its (name, owner) pair.
func (s *OrganizationStore) GetByNameForOwner(ctx context.Context, name string, ownerUserID uuid.UUID) (*models.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		WHERE name = $1 AND owner_user_id = $2
	`

	org, err := scanOrganization(s.pool.QueryRow(ctx, query, name, ownerUserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization by name: %w", mapPostgresError(err))
	}

	return org, nil
}

// Replace overwrites the stored aggregate, conditional on the revision.
func (s *OrganizationStore) Replace(ctx context.Context, org *models.Organization) error {
	wardens, err := encodeWardens(org.Wardens)
	if err != nil {
		return fmt.Errorf("failed to encode wardens: %w", err)
	}

	members, err := encodeMembers(org.Members)
	if err != nil {
		return fmt.Errorf("failed to encode members: %w", err)
	}

	org.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE organizations SET
			name = $2,
			wardens = $3,
			members = $4,
			revision = revision + 1,
			updated_at = $5
		WHERE org_id = $1 AND revision = $6
	`

	result, err := s.pool.Exec(ctx, query,
		org.OrgID,
		org.Name,
		wardens,
		members,
		org.UpdatedAt,
		org.Revision,
	)
	if err != nil {
		return fmt.Errorf("failed to replace organization: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		// Either the row is gone or a concurrent writer bumped the revision.
		var exists bool
		err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM organizations WHERE org_id = $1)`, org.OrgID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check organization existence: %w", mapPostgresError(err))
		}
		if !exists {
			return store.ErrOrganizationNotFound
		}
		return store.ErrRevisionConflict
	}

	org.Revision++

	log.Debug().
		Str("org_id", org.OrgID.String()).
		Int64("revision", org.Revision).
		Msg("Replaced organization")

	return nil
}

// Browse returns a page of organizations matching the query.
func (s *OrganizationStore) Browse(ctx context.Context, query store.BrowseQuery) (*store.OrganizationPage, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = store.DefaultBrowseLimit
	}

	where := ""
	args := []any{}

	if query.OwnerUserID != uuid.Nil {
		args = append(args, query.OwnerUserID)
		where += fmt.Sprintf(" AND owner_user_id = $%d", len(args))
	}

	if query.NameContains != "" {
		args = append(args, "%"+query.NameContains+"%")
		where += fmt.Sprintf(" AND name LIKE $%d", len(args))
	}

	orderBy := "created_at DESC"
	if query.SortBy == store.BrowseSortName {
		orderBy = "name ASC"
	}

	// Fetch one extra row to detect whether another page exists.
	args = append(args, limit+1)
	limitPos := len(args)
	args = append(args, query.Offset)
	offsetPos := len(args)

	sql := fmt.Sprintf(`
		SELECT `+organizationColumns+`
		FROM organizations
		WHERE TRUE%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, limitPos, offsetPos)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to browse organizations: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", mapPostgresError(err))
	}

	hasMore := len(orgs) > limit
	if hasMore {
		orgs = orgs[:limit]
	}

	return &store.OrganizationPage{
		Organizations: orgs,
		HasMore:       hasMore,
	}, nil
}
