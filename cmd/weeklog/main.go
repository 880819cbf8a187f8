package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/weeklog/internal/cache"
	"github.com/julianstephens/weeklog/internal/cli"
	"github.com/julianstephens/weeklog/internal/cli/backups"
	"github.com/julianstephens/weeklog/internal/cli/entries"
	"github.com/julianstephens/weeklog/internal/cli/maintenance"
	"github.com/julianstephens/weeklog/internal/cli/settings"
	"github.com/julianstephens/weeklog/internal/cli/system"
	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/errors"
	"github.com/julianstephens/weeklog/internal/journal"
	"github.com/julianstephens/weeklog/internal/keyring"
	"github.com/julianstephens/weeklog/internal/logger"
	"github.com/julianstephens/weeklog/internal/storage"
	"github.com/julianstephens/weeklog/internal/storage/postgres"
	"github.com/julianstephens/weeklog/internal/storage/sqlite"
	"github.com/julianstephens/weeklog/internal/workweek"
)

var CLI struct {
	Version kong.VersionFlag
	Debug   bool   `help:"Enable debug logging to stderr."`
	Config  string `help:"Database file path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use environment variables, .pgpass, or OS keyring instead." type:"string" default:"~/.config/weeklog/weeklog.db"`
	Journal string `help:"Directory holding journal entry files. Defaults to a 'journal' directory next to the database." type:"string"`

	Init    system.InitCmd         `cmd:"" help:"Initialize weeklog storage."`
	Save    entries.SaveCmd        `cmd:"" help:"Save a journal entry."`
	Show    entries.ShowCmd        `cmd:"" help:"Show a journal entry."`
	List    entries.ListCmd        `cmd:"" help:"List indexed journal entries."`
	Delete  entries.DeleteCmd      `cmd:"" help:"Delete a journal entry."`
	Reindex maintenance.ReindexCmd `cmd:"" help:"Recalculate week endings for all indexed entries."`
	Check   maintenance.CheckCmd   `cmd:"" help:"Check index integrity without modifying anything."`
	Rescan  maintenance.RescanCmd  `cmd:"" help:"Rebuild the index from entry files on disk."`
	Watch   maintenance.WatchCmd   `cmd:"" help:"Watch the journal directory and sync the index on changes."`
	Export  maintenance.ExportCmd  `cmd:"" help:"Export the entry index as JSONL."`
	Import  maintenance.ImportCmd  `cmd:"" help:"Import entry index records from JSONL."`
	Migrate system.MigrateCmd      `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Backup  struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage work week settings."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Work-week journal with a calculated week-ending index"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	config := resolveConfig(CLI.Config)

	// Initialize storage based on config format
	var store storage.Provider
	var configDir string
	if strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://") {
		// PostgreSQL connection string detected - validate for embedded credentials
		if storage.HasEmbeddedCredentials(config) {
			fmt.Fprintf(os.Stderr, "❌ Error: PostgreSQL connection strings with embedded credentials are NOT allowed.\n")
			fmt.Fprintf(os.Stderr, "       Use one of these secure alternatives:\n")
			fmt.Fprintf(os.Stderr, "       1. OS keyring:    weeklog keyring set \"postgresql://user@host:5432/weeklog\"\n")
			fmt.Fprintf(os.Stderr, "       2. Environment:   export WEEKLOG_DB_CONNECTION=\"postgresql://user@host:5432/weeklog\"\n")
			fmt.Fprintf(os.Stderr, "       3. .pgpass file:  Use a connection string without a password\n")
			os.Exit(1)
		}
		store = postgres.New(config)
		configDir = defaultConfigDir()
	} else {
		store = sqlite.NewStore(config)
		configDir = filepath.Dir(config)
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	journalDir := CLI.Journal
	if journalDir == "" {
		journalDir = filepath.Join(configDir, constants.JournalDirName)
	} else {
		journalDir = expandHome(journalDir)
	}

	workWeek := workweek.NewService(store, cache.NewTTLCache(constants.ConfigCacheTTL))
	appCtx := &cli.Context{
		Store:    store,
		WorkWeek: workWeek,
		Journal:  journal.NewSynchronizer(journalDir, store, workWeek),
	}

	// Load the store before running the command (init handles its own setup,
	// keyring commands never touch the database)
	command := ctx.Command()
	if !strings.HasPrefix(command, "init") && !strings.HasPrefix(command, "keyring") {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
		defer store.Close()
	}

	if err := ctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
}

// resolveConfig expands the --config value, falling back to the environment
// and the OS keyring for a PostgreSQL connection string when the flag is
// left at its default.
func resolveConfig(config string) string {
	if config == constants.DefaultConfigPath {
		if env := os.Getenv("WEEKLOG_DB_CONNECTION"); env != "" {
			return env
		}
		if connStr, err := keyring.GetConnectionString(); err == nil && connStr != "" {
			return connStr
		}
	}
	return expandHome(config)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", constants.AppName)
}
