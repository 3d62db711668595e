package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/wardenhub/internal/models"
	"github.com/wolfeidau/wardenhub/internal/store/postgres"
)

// UserCmd groups user management subcommands.
type UserCmd struct {
	Create UserCreateCmd `cmd:"" help:"Register a user."`
}

// UserCreateCmd registers a user so they can own or join organizations.
type UserCreateCmd struct {
	DatabaseFlags

	Email string `arg:"" help:"Email address, unique."`
	Name  string `help:"Display name."`
}

func (c *UserCreateCmd) Run(ctx context.Context, g *Globals) error {
	pool, err := c.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	user := &models.User{
		UserID:    uuid.Must(uuid.NewV7()),
		Email:     c.Email,
		Name:      c.Name,
		CreatedAt: time.Now().UTC(),
	}

	if err := postgres.NewUserStore(pool).Create(ctx, user); err != nil {
		return err
	}

	fmt.Printf("created user %s (%s)\n", user.UserID, user.Email)

	return nil
}
