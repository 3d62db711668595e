package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/wardenhub/internal/models"
	"github.com/wolfeidau/wardenhub/internal/service"
	"github.com/wolfeidau/wardenhub/internal/store"
	"github.com/wolfeidau/wardenhub/internal/store/postgres"
)

// OrgCmd groups organization management subcommands.
type OrgCmd struct {
	Create        OrgCreateCmd        `cmd:"" help:"Create an organization."`
	List          OrgListCmd          `cmd:"" help:"List organizations for an owner."`
	AddWarden     OrgAddWardenCmd     `cmd:"" help:"Add a warden to an organization."`
	AddUser       OrgAddUserCmd       `cmd:"" help:"Add a user to an organization."`
	EnableWarden  OrgEnableWardenCmd  `cmd:"" help:"Enable a warden."`
	DisableWarden OrgDisableWardenCmd `cmd:"" help:"Disable a warden."`
}

func newService(pool *pgxpool.Pool) *service.Organizations {
	return service.NewOrganizations(
		postgres.NewOrganizationStore(pool),
		postgres.NewUserStore(pool),
		postgres.NewApiKeyStore(pool),
	)
}

// OrgCreateCmd creates an organization for an owner looked up by email.
type OrgCreateCmd struct {
	DatabaseFlags

	Name            string `arg:"" help:"Organization name, unique per owner."`
	OwnerEmail      string `required:"" help:"Email of the owning user."`
	NoDefaultWarden bool   `help:"Skip registering the default warden."`
}

func (c *OrgCreateCmd) Run(ctx context.Context, g *Globals) error {
	pool, err := c.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	owner, err := postgres.NewUserStore(pool).GetByEmail(ctx, c.OwnerEmail)
	if err != nil {
		return err
	}

	org, err := newService(pool).Create(ctx, c.Name, owner.UserID, !c.NoDefaultWarden)
	if err != nil {
		return err
	}

	fmt.Printf("created organization %s (%s)\n", org.OrgID, org.Name)

	return nil
}

// OrgListCmd lists organizations owned by a user.
type OrgListCmd struct {
	DatabaseFlags

	OwnerEmail string `required:"" help:"Email of the owning user."`
	Limit      int    `help:"Max results." default:"25"`
}

func (c *OrgListCmd) Run(ctx context.Context, g *Globals) error {
	pool, err := c.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	owner, err := postgres.NewUserStore(pool).GetByEmail(ctx, c.OwnerEmail)
	if err != nil {
		return err
	}

	page, err := newService(pool).Browse(ctx, &store.BrowseQuery{
		OwnerUserID: owner.UserID,
		SortBy:      store.BrowseSortName,
		Limit:       c.Limit,
	})
	if err != nil {
		return err
	}

	for _, org := range page.Organizations {
		fmt.Printf("%s\t%s\t%d wardens\t%d members\n", org.OrgID, org.Name, len(org.Wardens), len(org.Members))
	}
	if page.HasMore {
		fmt.Println("(more results available)")
	}

	return nil
}

// OrgAddWardenCmd adds a warden to an organization.
type OrgAddWardenCmd struct {
	DatabaseFlags

	OrgID    uuid.UUID `arg:"" help:"Organization ID."`
	Name     string    `arg:"" help:"Warden name, unique within the organization."`
	Disabled bool      `help:"Register the warden disabled."`
}

func (c *OrgAddWardenCmd) Run(ctx context.Context, g *Globals) error {
	pool, err := c.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	return newService(pool).AddWarden(ctx, c.OrgID, c.Name, !c.Disabled)
}

// OrgAddUserCmd adds a member to an organization.
type OrgAddUserCmd struct {
	DatabaseFlags

	OrgID uuid.UUID `arg:"" help:"Organization ID."`
	Email string    `arg:"" help:"Email of the user to add."`
	Role  string    `help:"Membership role." default:"user" enum:"user,admin"`
}

func (c *OrgAddUserCmd) Run(ctx context.Context, g *Globals) error {
	pool, err := c.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	return newService(pool).AddUser(ctx, c.OrgID, c.Email, models.OrganizationRole(c.Role))
}

// OrgEnableWardenCmd enables a warden.
type OrgEnableWardenCmd struct {
	DatabaseFlags

	OrgID uuid.UUID `arg:"" help:"Organization ID."`
	Name  string    `arg:"" help:"Warden name."`
}

func (c *OrgEnableWardenCmd) Run(ctx context.Context, g *Globals) error {
	pool, err := c.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	return newService(pool).EnableWarden(ctx, c.OrgID, c.Name)
}

// OrgDisableWardenCmd disables a warden.
type OrgDisableWardenCmd struct {
	DatabaseFlags

	OrgID uuid.UUID `arg:"" help:"Organization ID."`
	Name  string    `arg:"" help:"Warden name."`
}

func (c *OrgDisableWardenCmd) Run(ctx context.Context, g *Globals) error {
	pool, err := c.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	return newService(pool).DisableWarden(ctx, c.OrgID, c.Name)
}
