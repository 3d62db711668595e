package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultOrganizationName is the name used for an owner's default organization.
const DefaultOrganizationName = "My organization"

// DefaultWardenName is the warden pre-registered when an organization is
// created with warden auto-registration enabled.
const DefaultWardenName = "Default warden"

// OrganizationRole represents the permission tier of an organization member.
// Roles are stored for later authorization decisions; this package does not
// enforce them.
type OrganizationRole string

const (
	OrganizationRoleUser  OrganizationRole = "user"
	OrganizationRoleAdmin OrganizationRole = "admin"
	OrganizationRoleOwner OrganizationRole = "owner"
)

// Errors raised by aggregate invariants.
var (
	ErrNameRequired        = errors.New("name must not be empty or blank")
	ErrWardenAlreadyExists = errors.New("warden with that name already exists in organization")
	ErrWardenNotFound      = errors.New("warden not found in organization")
	ErrMemberAlreadyExists = errors.New("user is already a member of organization")
)

// Warden represents a named monitored unit belonging to an organization.
type Warden struct {
	Name    string
	Enabled bool
}

// Enable turns the warden on. Enabling an already-enabled warden is a no-op.
func (w *Warden) Enable() {
	w.Enabled = true
}

// Disable turns the warden off. Disabling an already-disabled warden is a no-op.
func (w *Warden) Disable() {
	w.Enabled = false
}

// Membership records a user's membership in an organization with its role.
type Membership struct {
	UserID  uuid.UUID
	Email   string
	Role    OrganizationRole
	AddedAt time.Time
}

// Organization is the aggregate root for a tenant. It exclusively owns its
// wardens and membership list; mutations happen in memory and the whole
// aggregate is persisted as one document via a conditional replace keyed on
// Revision.
type Organization struct {
	OrgID       uuid.UUID // UUIDv7
	Name        string
	OwnerUserID uuid.UUID // UUIDv7, the owning user
	Wardens     []Warden
	Members     []Membership
	Revision    int64 // incremented by the store on every successful replace
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrganization creates an organization owned by the given user. The owner
// is always registered as an implicit member with the owner role.
// Names must contain at least one non-whitespace character.
func NewOrganization(name string, owner *User) (*Organization, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	now := time.Now().UTC()

	return &Organization{
		OrgID:       uuid.Must(uuid.NewV7()),
		Name:        name,
		OwnerUserID: owner.UserID,
		Members: []Membership{
			{
				UserID:  owner.UserID,
				Email:   owner.Email,
				Role:    OrganizationRoleOwner,
				AddedAt: now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddWarden appends a warden to the organization. Warden names are unique
// within an organization, compared case-sensitively.
// Returns ErrWardenAlreadyExists on a name collision.
func (o *Organization) AddWarden(name string, enabled bool) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}

	for i := range o.Wardens {
		if o.Wardens[i].Name == name {
			return ErrWardenAlreadyExists
		}
	}

	o.Wardens = append(o.Wardens, Warden{Name: name, Enabled: enabled})

	return nil
}

// AddUser appends a membership for the given user.
// Returns ErrMemberAlreadyExists if the user is already a member.
func (o *Organization) AddUser(user *User, role OrganizationRole) error {
	if o.HasMember(user.UserID) {
		return ErrMemberAlreadyExists
	}

	o.Members = append(o.Members, Membership{
		UserID:  user.UserID,
		Email:   user.Email,
		Role:    role,
		AddedAt: time.Now().UTC(),
	})

	return nil
}

// WardenByName returns a pointer into the aggregate's warden list so callers
// can toggle the enabled flag in place.
// Returns ErrWardenNotFound if no warden carries that name.
func (o *Organization) WardenByName(name string) (*Warden, error) {
	for i := range o.Wardens {
		if o.Wardens[i].Name == name {
			return &o.Wardens[i], nil
		}
	}

	return nil, ErrWardenNotFound
}

// HasMember reports whether the given user is a member of the organization.
// The owner is always a member.
func (o *Organization) HasMember(userID uuid.UUID) bool {
	if o.OwnerUserID == userID {
		return true
	}

	for i := range o.Members {
		if o.Members[i].UserID == userID {
			return true
		}
	}

	return false
}
