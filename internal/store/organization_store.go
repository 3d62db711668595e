package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/wardenhub/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")

	// ErrRevisionConflict is returned by Replace when the stored revision no
	// longer matches the caller's copy, meaning a concurrent writer got there
	// first. Callers should reload and retry the whole update cycle.
	ErrRevisionConflict = errors.New("organization revision conflict")
)

// DefaultBrowseLimit is the page size applied when a query doesn't set one.
const DefaultBrowseLimit = 25

// BrowseSort selects the ordering of a browse result page.
type BrowseSort string

const (
	BrowseSortName      BrowseSort = "name"
	BrowseSortCreatedAt BrowseSort = "created_at"
)

// BrowseQuery filters and paginates organization listings. The zero value
// matches everything; a nil query at the service level yields an empty page.
type BrowseQuery struct {
	OwnerUserID  uuid.UUID  // filter by owner (zero value = all owners)
	NameContains string     // case-sensitive substring match on name
	SortBy       BrowseSort // default BrowseSortCreatedAt
	Limit        int        // max results per page (0 = default 25)
	Offset       int
}

// OrganizationPage is one page of a browse result.
type OrganizationPage struct {
	Organizations []*models.Organization
	HasMore       bool
}

// OrganizationStore defines the interface for organization storage.
// The aggregate is the unit of consistency: every write persists the whole
// organization document, never individual fields.
type OrganizationStore interface {
	// Create inserts a new organization.
	// Returns ErrOrganizationAlreadyExists if the ID or the (name, owner)
	// pair is already taken.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// GetByNameForOwner retrieves an organization by its (name, owner) pair.
	// Returns ErrOrganizationNotFound if no such organization exists.
	GetByNameForOwner(ctx context.Context, name string, ownerUserID uuid.UUID) (*models.Organization, error)

	// Replace overwrites the stored aggregate with the caller's copy,
	// conditional on org.Revision matching the stored revision. On success
	// the stored revision is incremented and org.Revision is updated to
	// match. Returns ErrRevisionConflict on a revision mismatch and
	// ErrOrganizationNotFound if the organization doesn't exist.
	Replace(ctx context.Context, org *models.Organization) error

	// Browse returns a page of organizations matching the query.
	Browse(ctx context.Context, query BrowseQuery) (*OrganizationPage, error)
}
