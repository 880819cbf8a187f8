package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/weeklog/internal/cli"
	"github.com/julianstephens/weeklog/internal/storage"
	"github.com/julianstephens/weeklog/internal/storage/postgres"
	"github.com/julianstephens/weeklog/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing database before initialization."`
	Source string `help:"Source database path or connection string to migrate data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	// If force flag is provided, delete existing database
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		// Don't delete if it's the source (user error protection)
		if c.Source != "" {
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			// Close before deleting to prevent file locking issues
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized weeklog storage at: %s\n", ctx.Store.GetConfigPath())

	if err := os.MkdirAll(ctx.Journal.BasePath(), 0700); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}
	fmt.Printf("Journal directory: %s\n", ctx.Journal.BasePath())

	if c.Source != "" {
		fmt.Printf("Migrating data from: %s\n", c.Source)
		if err := c.migrateData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}

	return nil
}

func (c *InitCmd) migrateData(ctx *cli.Context, sourcePath string) error {
	// Determine source store type and instantiate it
	var sourceStore storage.Provider
	if strings.HasPrefix(sourcePath, "postgres://") || strings.HasPrefix(sourcePath, "postgresql://") {
		if valid, err := postgres.ValidateConnString(sourcePath); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return err
		}
		sourceStore = postgres.New(sourcePath)
	} else {
		// Default to SQLite for file paths
		sourceStore = sqlite.NewStore(sourcePath)
	}

	if err := sourceStore.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer sourceStore.Close()

	bg := context.Background()

	// Migrate settings rows
	fmt.Println("  Migrating settings...")
	settings, err := sourceStore.GetAllSettings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	for key, value := range settings {
		if err := ctx.Store.SetSetting(bg, key, value); err != nil {
			return fmt.Errorf("failed to save setting %s to destination: %w", key, err)
		}
	}
	fmt.Printf("    Migrated %d settings\n", len(settings))

	// Migrate entry index records
	fmt.Println("  Migrating entry records...")
	entries, err := sourceStore.ListEntries(bg, 0)
	if err != nil {
		return fmt.Errorf("failed to get entries from source: %w", err)
	}
	for _, rec := range entries {
		if err := ctx.Store.UpsertEntry(bg, rec); err != nil {
			return fmt.Errorf("failed to add entry %s: %w", rec.Date, err)
		}
	}
	fmt.Printf("    Migrated %d entry records\n", len(entries))

	return nil
}
