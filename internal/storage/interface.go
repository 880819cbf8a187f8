package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/julianstephens/weeklog/internal/models"
)

var (
	// ErrSettingNotFound is returned when a settings key has no row.
	// Callers treat it as "use the default for that field", not as a failure.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrEntryNotFound is returned when no index record exists for a date.
	ErrEntryNotFound = errors.New("entry record not found")
)

// Provider is the persistent store behind weeklog: the flat settings rows
// that parameterize the work week and the secondary index of journal entries.
// Entry content itself lives on the filesystem; the store only carries
// derived metadata.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings rows, read and upserted one key at a time
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetAllSettings(ctx context.Context) (map[string]string, error)

	// Entry index records
	GetEntry(ctx context.Context, date string) (models.EntryRecord, error)
	UpsertEntry(ctx context.Context, rec models.EntryRecord) error
	DeleteEntry(ctx context.Context, date string) error
	// ListEntries returns records newest-first; limit <= 0 means no limit.
	ListEntries(ctx context.Context, limit int) ([]models.EntryRecord, error)
	ListEntriesByWeek(ctx context.Context, weekEnding string) ([]models.EntryRecord, error)
	// EntriesPage returns records ordered by date ascending for batch jobs.
	EntriesPage(ctx context.Context, offset, limit int) ([]models.EntryRecord, error)
	CountEntries(ctx context.Context) (int, error)
	// UpdateWeekEndings rewrites week_ending_date for the given dates in a
	// single transaction, so a batch commits or rolls back as a unit.
	UpdateWeekEndings(ctx context.Context, updates map[string]string) error
	// TouchEntryAccess bumps last_accessed_at and access_count for a date.
	TouchEntryAccess(ctx context.Context, date string, at time.Time) error

	// Schema
	SchemaVersion() (current, latest int, err error)

	// Utils
	GetConfigPath() string
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string
// carries an inline password, which weeklog refuses on the command line.
func HasEmbeddedCredentials(connStr string) bool {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		if u.User != nil {
			if _, set := u.User.Password(); set {
				return true
			}
		}
		return false
	}

	// DSN format: space-separated key=value pairs
	for _, pair := range strings.Fields(connStr) {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), "password") {
			return true
		}
	}
	return false
}
