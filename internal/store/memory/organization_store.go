package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/wardenhub/internal/models"
	"github.com/wolfeidau/wardenhub/internal/store"
)

// OrganizationStore implements store.OrganizationStore using in-memory
// storage. This implementation is for testing only - data is lost on restart.
type OrganizationStore struct {
	mu sync.RWMutex

	organizations map[uuid.UUID]*models.Organization // org_id -> Organization
}

// NewOrganizationStore creates a new in-memory organization store.
func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{
		organizations: make(map[uuid.UUID]*models.Organization),
	}
}

// Create inserts a new organization in memory.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[org.OrgID]; exists {
		return store.ErrOrganizationAlreadyExists
	}

	// (name, owner) must be unique as well
	for _, existing := range s.organizations {
		if existing.Name == org.Name && existing.OwnerUserID == org.OwnerUserID {
			return store.ErrOrganizationAlreadyExists
		}
	}

	s.organizations[org.OrgID] = cloneOrganization(org)

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, exists := s.organizations[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	return cloneOrganization(org), nil
}

// GetByNameForOwner retrieves an organization by its (name, owner) pair.
func (s *OrganizationStore) GetByNameForOwner(ctx context.Context, name string, ownerUserID uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, org := range s.organizations {
		if org.Name == name && org.OwnerUserID == ownerUserID {
			return cloneOrganization(org), nil
		}
	}

	return nil, store.ErrOrganizationNotFound
}

// Replace overwrites the stored aggregate, conditional on the revision.
func (s *OrganizationStore) Replace(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.organizations[org.OrgID]
	if !exists {
		return store.ErrOrganizationNotFound
	}

	if current.Revision != org.Revision {
		return store.ErrRevisionConflict
	}

	org.Revision++
	org.UpdatedAt = time.Now().UTC()

	s.organizations[org.OrgID] = cloneOrganization(org)

	return nil
}

// Browse returns a page of organizations matching the query.
func (s *OrganizationStore) Browse(ctx context.Context, query store.BrowseQuery) (*store.OrganizationPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Organization
	for _, org := range s.organizations {
		if query.OwnerUserID != uuid.Nil && org.OwnerUserID != query.OwnerUserID {
			continue
		}
		if query.NameContains != "" && !strings.Contains(org.Name, query.NameContains) {
			continue
		}
		matched = append(matched, cloneOrganization(org))
	}

	switch query.SortBy {
	case store.BrowseSortName:
		sort.Slice(matched, func(i, j int) bool {
			return matched[i].Name < matched[j].Name
		})
	default:
		// newest first, matching the postgres store's default ordering
		sort.Slice(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	limit := query.Limit
	if limit <= 0 {
		limit = store.DefaultBrowseLimit
	}

	if query.Offset >= len(matched) {
		return &store.OrganizationPage{}, nil
	}
	matched = matched[query.Offset:]

	hasMore := len(matched) > limit
	if hasMore {
		matched = matched[:limit]
	}

	return &store.OrganizationPage{
		Organizations: matched,
		HasMore:       hasMore,
	}, nil
}

// cloneOrganization deep-copies the aggregate so stored state can't be
// mutated through retained pointers.
func cloneOrganization(org *models.Organization) *models.Organization {
	clone := *org
	clone.Wardens = append([]models.Warden(nil), org.Wardens...)
	clone.Members = append([]models.Membership(nil), org.Members...)
	return &clone
}
