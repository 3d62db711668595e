package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/wardenhub/internal/models"
	"github.com/wolfeidau/wardenhub/internal/store"
)

// replaceMaxAttempts bounds the retries of one read-mutate-replace cycle
// when concurrent writers keep bumping the aggregate revision.
const replaceMaxAttempts = 5

// OrganizationService is the application-facing contract for organization
// management. Lookups that find nothing return an absent result, not an
// error; mutations against a missing target fail with the store's not-found
// sentinel.
type OrganizationService interface {
	// Get returns the organization with its API keys, or (nil, nil) when the
	// organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*OrganizationDto, error)

	// GetByName looks an organization up by its (name, owner) pair.
	// Returns (nil, nil) when no such organization exists.
	GetByName(ctx context.Context, name string, ownerUserID uuid.UUID) (*OrganizationDto, error)

	// GetDefault returns the owner's default organization, if any.
	GetDefault(ctx context.Context, ownerUserID uuid.UUID) (*OrganizationDto, error)

	// Create creates an organization owned by the given user, optionally
	// pre-registering the default warden. Fails with models.ErrNameRequired
	// on an empty name, store.ErrUserNotFound when the owner doesn't exist
	// and store.ErrOrganizationAlreadyExists when the owner already has an
	// organization with that name.
	Create(ctx context.Context, name string, ownerUserID uuid.UUID, registerDefaultWarden bool) (*OrganizationDto, error)

	// CreateDefault creates the owner's default organization.
	CreateDefault(ctx context.Context, ownerUserID uuid.UUID) (*OrganizationDto, error)

	// AddWarden appends a warden to the organization.
	AddWarden(ctx context.Context, orgID uuid.UUID, name string, enabled bool) error

	// AddUser adds the user with the given email as a member.
	AddUser(ctx context.Context, orgID uuid.UUID, email string, role models.OrganizationRole) error

	// EnableWarden enables the named warden. Enabling an enabled warden is a
	// no-op.
	EnableWarden(ctx context.Context, orgID uuid.UUID, name string) error

	// DisableWarden disables the named warden. Disabling a disabled warden
	// is a no-op.
	DisableWarden(ctx context.Context, orgID uuid.UUID, name string) error

	// IsUserInOrganization reports membership. A missing organization yields
	// false, not an error.
	IsUserInOrganization(ctx context.Context, orgID, userID uuid.UUID) (bool, error)

	// Browse returns a page of organizations matching the query. A nil or
	// zero-value query yields an empty page.
	Browse(ctx context.Context, query *store.BrowseQuery) (*store.OrganizationPage, error)
}

// Organizations implements OrganizationService against the store
// collaborators. It stays a thin orchestrator: every mutation is a
// load-mutate-replace cycle with invariants enforced inside the aggregate,
// retried when a concurrent writer wins the replace.
type Organizations struct {
	orgs  store.OrganizationStore
	users store.UserStore
	keys  store.ApiKeyStore
}

// Verify Organizations implements the service interface
var _ OrganizationService = (*Organizations)(nil)

// NewOrganizations creates the organization service.
func NewOrganizations(orgs store.OrganizationStore, users store.UserStore, keys store.ApiKeyStore) *Organizations {
	return &Organizations{
		orgs:  orgs,
		users: users,
		keys:  keys,
	}
}

// Get returns the organization with its API keys, or (nil, nil) when absent.
func (s *Organizations) Get(ctx context.Context, orgID uuid.UUID) (*OrganizationDto, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return s.toDto(ctx, org)
}

// GetByName looks an organization up by its (name, owner) pair.
func (s *Organizations) GetByName(ctx context.Context, name string, ownerUserID uuid.UUID) (*OrganizationDto, error) {
	org, err := s.orgs.GetByNameForOwner(ctx, name, ownerUserID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return s.toDto(ctx, org)
}

// GetDefault returns the owner's default organization, if any.
func (s *Organizations) GetDefault(ctx context.Context, ownerUserID uuid.UUID) (*OrganizationDto, error) {
	return s.GetByName(ctx, models.DefaultOrganizationName, ownerUserID)
}

// Create creates an organization owned by the given user.
func (s *Organizations) Create(ctx context.Context, name string, ownerUserID uuid.UUID, registerDefaultWarden bool) (*OrganizationDto, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.ErrNameRequired
	}

	owner, err := s.users.Get(ctx, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("owner lookup failed: %w", err)
	}

	_, err = s.orgs.GetByNameForOwner(ctx, name, ownerUserID)
	if err == nil {
		return nil, store.ErrOrganizationAlreadyExists
	}
	if !errors.Is(err, store.ErrOrganizationNotFound) {
		return nil, err
	}

	org, err := models.NewOrganization(name, owner)
	if err != nil {
		return nil, err
	}

	if registerDefaultWarden {
		if err := org.AddWarden(models.DefaultWardenName, true); err != nil {
			return nil, err
		}
	}

	// The store's uniqueness constraint still guards against a racing
	// creator between the lookup above and this insert.
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}

	log.Info().
		Str("org_id", org.OrgID.String()).
		Str("name", org.Name).
		Str("owner_user_id", ownerUserID.String()).
		Msg("Created organization")

	return s.toDto(ctx, org)
}

// CreateDefault creates the owner's default organization.
func (s *Organizations) CreateDefault(ctx context.Context, ownerUserID uuid.UUID) (*OrganizationDto, error) {
	return s.Create(ctx, models.DefaultOrganizationName, ownerUserID, true)
}

// AddWarden appends a warden to the organization.
func (s *Organizations) AddWarden(ctx context.Context, orgID uuid.UUID, name string, enabled bool) error {
	return s.update(ctx, orgID, func(org *models.Organization) error {
		return org.AddWarden(name, enabled)
	})
}

// AddUser adds the user with the given email as a member.
func (s *Organizations) AddUser(ctx context.Context, orgID uuid.UUID, email string, role models.OrganizationRole) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user lookup failed: %w", err)
	}

	return s.update(ctx, orgID, func(org *models.Organization) error {
		return org.AddUser(user, role)
	})
}

// EnableWarden enables the named warden.
func (s *Organizations) EnableWarden(ctx context.Context, orgID uuid.UUID, name string) error {
	return s.update(ctx, orgID, func(org *models.Organization) error {
		warden, err := org.WardenByName(name)
		if err != nil {
			return err
		}
		warden.Enable()
		return nil
	})
}

// DisableWarden disables the named warden.
func (s *Organizations) DisableWarden(ctx context.Context, orgID uuid.UUID, name string) error {
	return s.update(ctx, orgID, func(org *models.Organization) error {
		warden, err := org.WardenByName(name)
		if err != nil {
			return err
		}
		warden.Disable()
		return nil
	})
}

// IsUserInOrganization reports membership. A missing organization yields
// false, not an error.
func (s *Organizations) IsUserInOrganization(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return false, nil
		}
		return false, err
	}

	return org.HasMember(userID), nil
}

// Browse returns a page of organizations matching the query. An absent
// query, nil or the zero value, yields an empty page rather than a scan of
// every organization.
func (s *Organizations) Browse(ctx context.Context, query *store.BrowseQuery) (*store.OrganizationPage, error) {
	if query == nil || *query == (store.BrowseQuery{}) {
		return &store.OrganizationPage{}, nil
	}

	return s.orgs.Browse(ctx, *query)
}

// update runs one load-mutate-replace cycle against the aggregate. A replace
// losing to a concurrent writer is retried with exponential backoff, reloading
// the aggregate each attempt; every other failure is permanent and propagates
// unchanged.
func (s *Organizations) update(ctx context.Context, orgID uuid.UUID, mutate func(*models.Organization) error) error {
	operation := func() (struct{}, error) {
		org, err := s.orgs.Get(ctx, orgID)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		if err := mutate(org); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		if err := s.orgs.Replace(ctx, org); err != nil {
			if errors.Is(err, store.ErrRevisionConflict) {
				log.Debug().
					Str("org_id", orgID.String()).
					Msg("Replace lost to concurrent writer, retrying")
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}

		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(replaceMaxAttempts),
	)

	return err
}

// toDto projects the aggregate plus its API keys into the transfer shape.
func (s *Organizations) toDto(ctx context.Context, org *models.Organization) (*OrganizationDto, error) {
	keys, err := s.keys.ListForOrganization(ctx, org.OrgID)
	if err != nil {
		return nil, fmt.Errorf("api key lookup failed: %w", err)
	}

	return newOrganizationDto(org, keys), nil
}
