package commands

import (
	"context"

	"github.com/wolfeidau/wardenhub/internal/store/postgres"
)

// MigrateCmd applies pending database migrations.
type MigrateCmd struct {
	DatabaseFlags
}

func (c *MigrateCmd) Run(ctx context.Context, g *Globals) error {
	pool, err := c.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	return postgres.RunMigrations(ctx, pool)
}
