package system

import (
	"fmt"
	"io/fs"

	"github.com/julianstephens/weeklog/internal/cli"
	"github.com/julianstephens/weeklog/internal/migration"
	"github.com/julianstephens/weeklog/internal/storage/postgres"
	"github.com/julianstephens/weeklog/internal/storage/sqlite"
	"github.com/julianstephens/weeklog/migrations"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	var runner *migration.Runner
	switch store := ctx.Store.(type) {
	case *sqlite.Store:
		sub, err := fs.Sub(migrations.FS, "sqlite")
		if err != nil {
			return fmt.Errorf("failed to access sqlite migrations: %w", err)
		}
		runner = migration.NewRunner(store.GetDB(), sub)
	case *postgres.Store:
		sub, err := fs.Sub(migrations.FS, "postgres")
		if err != nil {
			return fmt.Errorf("failed to access postgres migrations: %w", err)
		}
		runner = migration.NewRunner(store.GetDB(), sub)
	default:
		return fmt.Errorf("unsupported storage backend for migrate")
	}

	count, err := runner.ApplyMigrations(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}

	return nil
}
