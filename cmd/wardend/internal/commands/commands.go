package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/wardenhub/internal/store/postgres"
	"gopkg.in/yaml.v3"
)

type Globals struct {
	Debug   bool
	Version string
}

// Config is the wardend configuration file shape.
type Config struct {
	Postgres postgres.PoolConfig `yaml:"postgres"`
}

// DatabaseFlags are shared by every command that talks to the store.
// The connection string flag/env wins over the config file.
type DatabaseFlags struct {
	Config     string `help:"Path to config file." default:"wardend.yaml" env:"WARDENHUB_CONFIG"`
	ConnString string `help:"PostgreSQL connection string, overrides the config file." env:"WARDENHUB_CONN_STRING"`
}

func (f *DatabaseFlags) loadConfig() (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(f.Config)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", f.Config, err)
		}
	case os.IsNotExist(err):
		// config file is optional when the connection string is given
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", f.Config, err)
	}

	if f.ConnString != "" {
		cfg.Postgres.ConnString = f.ConnString
	}

	return cfg, nil
}

// openPool loads configuration and connects to PostgreSQL.
func (f *DatabaseFlags) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	return postgres.NewPool(ctx, &cfg.Postgres)
}
