package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/wardenhub/internal/models"
	"github.com/wolfeidau/wardenhub/internal/store"
	"github.com/wolfeidau/wardenhub/internal/store/memory"
)

type fixture struct {
	svc   *Organizations
	orgs  *memory.OrganizationStore
	users *memory.UserStore
	keys  *memory.ApiKeyStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	orgs := memory.NewOrganizationStore()
	users := memory.NewUserStore()
	keys := memory.NewApiKeyStore()

	return &fixture{
		svc:   NewOrganizations(orgs, users, keys),
		orgs:  orgs,
		users: users,
		keys:  keys,
	}
}

func (f *fixture) addUser(t *testing.T, email string) *models.User {
	t.Helper()

	user := &models.User{
		UserID:    uuid.Must(uuid.NewV7()),
		Email:     email,
		Name:      "Test User",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.users.Create(context.Background(), user))

	return user
}

func TestOrganizations_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("create then get by name round-trips", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")

		created, err := f.svc.Create(ctx, "Acme", owner.UserID, true)
		require.NoError(t, err)
		require.Equal(t, "Acme", created.Name)
		require.Equal(t, owner.UserID, created.OwnerUserID)

		got, err := f.svc.GetByName(ctx, "Acme", owner.UserID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, created.OrgID, got.OrgID)
	})

	t.Run("default warden is pre-registered", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")

		created, err := f.svc.Create(ctx, "Acme", owner.UserID, true)
		require.NoError(t, err)
		require.Len(t, created.Wardens, 1)
		require.Equal(t, models.DefaultWardenName, created.Wardens[0].Name)
		require.True(t, created.Wardens[0].Enabled)
	})

	t.Run("warden registration can be skipped", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")

		created, err := f.svc.Create(ctx, "Acme", owner.UserID, false)
		require.NoError(t, err)
		require.Empty(t, created.Wardens)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")

		_, err := f.svc.Create(ctx, "", owner.UserID, true)
		require.ErrorIs(t, err, models.ErrNameRequired)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")

		_, err := f.svc.Create(ctx, "   ", owner.UserID, true)
		require.ErrorIs(t, err, models.ErrNameRequired)

		// nothing was persisted for the owner
		page, err := f.svc.Browse(ctx, &store.BrowseQuery{OwnerUserID: owner.UserID})
		require.NoError(t, err)
		require.Empty(t, page.Organizations)
	})

	t.Run("unknown owner is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(ctx, "Acme", uuid.Must(uuid.NewV7()), true)
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("duplicate name per owner is rejected", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")

		_, err := f.svc.Create(ctx, "Acme", owner.UserID, true)
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, "Acme", owner.UserID, true)
		require.ErrorIs(t, err, store.ErrOrganizationAlreadyExists)
	})
}

func TestOrganizations_Defaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.addUser(t, "owner@example.com")

	got, err := f.svc.GetDefault(ctx, owner.UserID)
	require.NoError(t, err)
	require.Nil(t, got)

	created, err := f.svc.CreateDefault(ctx, owner.UserID)
	require.NoError(t, err)
	require.Equal(t, models.DefaultOrganizationName, created.Name)

	got, err = f.svc.GetDefault(ctx, owner.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, created.OrgID, got.OrgID)
}

func TestOrganizations_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("missing organization yields nil, not an error", func(t *testing.T) {
		f := newFixture(t)

		got, err := f.svc.Get(ctx, uuid.Must(uuid.NewV7()))
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("api keys are projected onto the dto", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")

		created, err := f.svc.Create(ctx, "Acme", owner.UserID, true)
		require.NoError(t, err)

		key := models.NewApiKey(created.OrgID, "super-secret")
		require.NoError(t, f.keys.Create(ctx, key))

		got, err := f.svc.Get(ctx, created.OrgID)
		require.NoError(t, err)
		require.Len(t, got.ApiKeys, 1)
		require.Equal(t, "super-secret", got.ApiKeys[0].Secret)
		require.Equal(t, key.Fingerprint, got.ApiKeys[0].Fingerprint)
	})
}

func TestOrganizations_AddWarden(t *testing.T) {
	ctx := context.Background()

	t.Run("appends and persists", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")
		created, err := f.svc.Create(ctx, "Acme", owner.UserID, false)
		require.NoError(t, err)

		require.NoError(t, f.svc.AddWarden(ctx, created.OrgID, "api-health", true))

		got, err := f.svc.Get(ctx, created.OrgID)
		require.NoError(t, err)
		require.Len(t, got.Wardens, 1)
	})

	t.Run("duplicate warden name fails and leaves state unchanged", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")
		created, err := f.svc.Create(ctx, "Acme", owner.UserID, false)
		require.NoError(t, err)

		require.NoError(t, f.svc.AddWarden(ctx, created.OrgID, "api-health", true))

		err = f.svc.AddWarden(ctx, created.OrgID, "api-health", false)
		require.ErrorIs(t, err, models.ErrWardenAlreadyExists)

		got, err := f.svc.Get(ctx, created.OrgID)
		require.NoError(t, err)
		require.Len(t, got.Wardens, 1)
		require.True(t, got.Wardens[0].Enabled)
	})

	t.Run("missing organization", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.AddWarden(ctx, uuid.Must(uuid.NewV7()), "api-health", true)
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)
	})
}

func TestOrganizations_WardenToggle(t *testing.T) {
	ctx := context.Background()

	t.Run("enable and disable persist", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")
		created, err := f.svc.Create(ctx, "Acme", owner.UserID, false)
		require.NoError(t, err)
		require.NoError(t, f.svc.AddWarden(ctx, created.OrgID, "api-health", false))

		require.NoError(t, f.svc.EnableWarden(ctx, created.OrgID, "api-health"))

		got, err := f.svc.Get(ctx, created.OrgID)
		require.NoError(t, err)
		require.True(t, got.Wardens[0].Enabled)

		// enabling an already-enabled warden is a no-op, not an error
		require.NoError(t, f.svc.EnableWarden(ctx, created.OrgID, "api-health"))

		require.NoError(t, f.svc.DisableWarden(ctx, created.OrgID, "api-health"))

		got, err = f.svc.Get(ctx, created.OrgID)
		require.NoError(t, err)
		require.False(t, got.Wardens[0].Enabled)
	})

	t.Run("missing warden name", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")
		created, err := f.svc.Create(ctx, "Acme", owner.UserID, false)
		require.NoError(t, err)

		err = f.svc.EnableWarden(ctx, created.OrgID, "nope")
		require.ErrorIs(t, err, models.ErrWardenNotFound)

		err = f.svc.DisableWarden(ctx, created.OrgID, "nope")
		require.ErrorIs(t, err, models.ErrWardenNotFound)
	})
}

func TestOrganizations_AddUserAndMembership(t *testing.T) {
	ctx := context.Background()

	t.Run("full membership scenario", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")
		bob := f.addUser(t, "bob@example.com")
		stranger := uuid.Must(uuid.NewV7())

		created, err := f.svc.Create(ctx, "Acme", owner.UserID, true)
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, "Acme", owner.UserID, true)
		require.ErrorIs(t, err, store.ErrOrganizationAlreadyExists)

		require.NoError(t, f.svc.AddUser(ctx, created.OrgID, "bob@example.com", models.OrganizationRoleAdmin))

		inOrg, err := f.svc.IsUserInOrganization(ctx, created.OrgID, bob.UserID)
		require.NoError(t, err)
		require.True(t, inOrg)

		inOrg, err = f.svc.IsUserInOrganization(ctx, created.OrgID, stranger)
		require.NoError(t, err)
		require.False(t, inOrg)
	})

	t.Run("duplicate membership", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")
		f.addUser(t, "bob@example.com")

		created, err := f.svc.Create(ctx, "Acme", owner.UserID, true)
		require.NoError(t, err)

		require.NoError(t, f.svc.AddUser(ctx, created.OrgID, "bob@example.com", models.OrganizationRoleUser))

		err = f.svc.AddUser(ctx, created.OrgID, "bob@example.com", models.OrganizationRoleAdmin)
		require.ErrorIs(t, err, models.ErrMemberAlreadyExists)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")

		created, err := f.svc.Create(ctx, "Acme", owner.UserID, true)
		require.NoError(t, err)

		err = f.svc.AddUser(ctx, created.OrgID, "nobody@example.com", models.OrganizationRoleUser)
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("missing organization yields false membership without error", func(t *testing.T) {
		f := newFixture(t)

		inOrg, err := f.svc.IsUserInOrganization(ctx, uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()))
		require.NoError(t, err)
		require.False(t, inOrg)
	})
}

func TestOrganizations_Browse(t *testing.T) {
	ctx := context.Background()

	t.Run("nil query yields empty page", func(t *testing.T) {
		f := newFixture(t)

		page, err := f.svc.Browse(ctx, nil)
		require.NoError(t, err)
		require.Empty(t, page.Organizations)
		require.False(t, page.HasMore)
	})

	t.Run("zero-value query yields empty page", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")

		_, err := f.svc.Create(ctx, "Acme", owner.UserID, true)
		require.NoError(t, err)

		page, err := f.svc.Browse(ctx, &store.BrowseQuery{})
		require.NoError(t, err)
		require.Empty(t, page.Organizations)
		require.False(t, page.HasMore)
	})

	t.Run("delegates filter to the store", func(t *testing.T) {
		f := newFixture(t)
		owner := f.addUser(t, "owner@example.com")

		_, err := f.svc.Create(ctx, "Acme", owner.UserID, true)
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, "Beta", owner.UserID, true)
		require.NoError(t, err)

		page, err := f.svc.Browse(ctx, &store.BrowseQuery{OwnerUserID: owner.UserID, SortBy: store.BrowseSortName})
		require.NoError(t, err)
		require.Len(t, page.Organizations, 2)
		require.Equal(t, "Acme", page.Organizations[0].Name)
	})
}

func TestOrganizations_ReplaceRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.addUser(t, "owner@example.com")

	created, err := f.svc.Create(ctx, "Acme", owner.UserID, false)
	require.NoError(t, err)

	// concurrent writers racing on the same aggregate; every mutation must
	// land despite revision conflicts forcing retries
	done := make(chan error, 2)
	go func() {
		done <- f.svc.AddWarden(ctx, created.OrgID, "warden-a", true)
	}()
	go func() {
		done <- f.svc.AddWarden(ctx, created.OrgID, "warden-b", true)
	}()

	require.NoError(t, <-done)
	require.NoError(t, <-done)

	got, err := f.svc.Get(ctx, created.OrgID)
	require.NoError(t, err)
	require.Len(t, got.Wardens, 2)
}
