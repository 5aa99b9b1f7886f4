// Package commands implements the buildledger subcommands.
package commands

import (
	"context"
	"fmt"

	"github.com/kolmo-labs/buildledger/internal/config"
	"github.com/kolmo-labs/buildledger/internal/state"
	"github.com/kolmo-labs/buildledger/pkg/core"
)

// migrator is implemented by both store types.
type migrator interface {
	core.Store
	Migrate() error
}

// openStore opens the configured store without migrating it.
func openStore(ctx context.Context, cfg *config.Config) (migrator, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		store := state.NewSQLiteStore()
		if err := store.Open(cfg.Storage.Path); err != nil {
			return nil, err
		}
		return store, nil

	case "postgres":
		pg := cfg.Storage.Postgres
		store := state.NewPostgresStore()
		err := store.Open(ctx, state.PostgresConfig{
			Host:     pg.Host,
			Port:     pg.Port,
			Database: pg.Database,
			Username: pg.Username,
			Password: pg.Password,
			SSLMode:  pg.SSLMode,
		})
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// openMigratedStore opens the configured store and brings the schema up to
// date.
func openMigratedStore(ctx context.Context, cfg *config.Config) (migrator, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
