package main

import (
	"context"

	"github.com/alecthomas/kong"
	zlog "github.com/rs/zerolog/log"
	"github.com/wolfeidau/wardenhub/cmd/wardend/internal/commands"
	"github.com/wolfeidau/wardenhub/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode."`
		Version kong.VersionFlag
		Migrate commands.MigrateCmd `cmd:"" help:"Run database migrations."`
		User    commands.UserCmd    `cmd:"" help:"Manage users."`
		Org     commands.OrgCmd     `cmd:"" help:"Manage organizations."`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	zlog.Logger = logger.Setup(cli.Debug)

	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
