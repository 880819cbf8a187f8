// Package journal keeps the file store and the entry index in step. The
// filesystem is authoritative for entry content; the index is a derived
// accelerator for listing and searching. Every mutation updates both, every
// read takes content from disk.
package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/logger"
	"github.com/julianstephens/weeklog/internal/models"
	"github.com/julianstephens/weeklog/internal/storage"
	"github.com/julianstephens/weeklog/internal/workweek"
)

// ErrEntryNotFound is returned when no entry file exists for a date in the
// current layout, any week bucket, or the legacy day-directory layout.
var ErrEntryNotFound = errors.New("journal entry not found")

// Synchronizer places entry files into week-ending buckets and keeps one
// index record per entry date consistent with the file on disk.
type Synchronizer struct {
	basePath string
	store    storage.Provider
	workweek *workweek.Service
	scope    string
}

// NewSynchronizer creates a synchronizer rooted at basePath.
func NewSynchronizer(basePath string, store storage.Provider, ww *workweek.Service) *Synchronizer {
	return &Synchronizer{
		basePath: basePath,
		store:    store,
		workweek: ww,
		scope:    constants.DefaultScope,
	}
}

// BasePath returns the journal root directory.
func (s *Synchronizer) BasePath() string {
	return s.basePath
}

// EntryPath returns the path an entry for the given date would be written to
// under the live config. Path construction always recomputes from the config;
// the week_ending_date stored in the index is never trusted for placement.
func (s *Synchronizer) EntryPath(ctx context.Context, date time.Time) string {
	dateStr := date.Format(constants.DateFormat)

	cfg := s.workweek.Config(ctx, s.scope)
	weekEnding, err := workweek.Calculate(date, cfg)
	if err != nil {
		// No bucket under the configured schedule. Prefer a bucket that
		// already holds this entry before inventing a new one.
		logger.Warn("Week ending lookup failed, scanning existing buckets",
			"date", dateStr, "error", err)
		if path, ok := s.findInBuckets(dateStr); ok {
			return path
		}
		weekEnding = workweek.SimpleFridayWeekEnding(date)
	}

	bucket := constants.WeekBucketPrefix + weekEnding.Format(constants.DateFormat)
	return filepath.Join(s.basePath, bucket, dateStr+constants.EntryFileExt)
}

// SaveEntry writes entry content to its bucket file and upserts the matching
// index record. The file write happens first and the index write second; the
// two are not one transaction, so a crash in between leaves an orphan file
// that a rescan recovers. Failures are logged and reported as false, never
// raised: callers must check the result.
func (s *Synchronizer) SaveEntry(ctx context.Context, date time.Time, content string) bool {
	dateStr := date.Format(constants.DateFormat)
	path := s.EntryPath(ctx, date)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		logger.Error("Failed to create week bucket directory", "date", dateStr, "path", path, "error", err)
		return false
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		logger.Error("Failed to write entry file", "date", dateStr, "path", path, "error", err)
		return false
	}

	if err := s.syncIndexRecord(ctx, dateStr, path, content); err != nil {
		logger.Error("Entry file written but index update failed", "date", dateStr, "path", path, "error", err)
		return false
	}

	return true
}

// syncIndexRecord upserts the index record for an entry file, preserving
// CreatedAt and access bookkeeping on existing records.
func (s *Synchronizer) syncIndexRecord(ctx context.Context, dateStr, path, content string) error {
	now := time.Now().UTC()

	rec := models.EntryRecord{
		Date:       dateStr,
		FilePath:   path,
		WordCount:  len(strings.Fields(content)),
		CharCount:  utf8.RuneCountInString(content),
		LineCount:  countLines(content),
		HasContent: strings.TrimSpace(content) != "",
		CreatedAt:  now,
		ModifiedAt: now,
		SyncedAt:   now,
	}

	if bucket, ok := bucketDate(filepath.Base(filepath.Dir(path))); ok {
		rec.WeekEnding = bucket
	}
	if info, err := os.Stat(path); err == nil {
		rec.FileSize = info.Size()
		rec.FileModifiedAt = info.ModTime().UTC()
	}

	if existing, err := s.store.GetEntry(ctx, dateStr); err == nil {
		rec.CreatedAt = existing.CreatedAt
		rec.LastAccessedAt = existing.LastAccessedAt
		rec.AccessCount = existing.AccessCount
	} else if !errors.Is(err, storage.ErrEntryNotFound) {
		return err
	}

	return s.store.UpsertEntry(ctx, rec)
}

// EntryContent reads an entry's content from disk. If no file exists at the
// path the live config predicts, it falls back to the index record's stored
// path, then a scan of every week bucket, then the legacy one-directory-per-
// day layout, so entries written before work-week bucketing stay readable.
// Returns ErrEntryNotFound when nothing exists in any layout.
func (s *Synchronizer) EntryContent(ctx context.Context, date time.Time) (string, error) {
	dateStr := date.Format(constants.DateFormat)

	path := s.EntryPath(ctx, date)
	if _, err := os.Stat(path); err != nil {
		found, ok := s.legacyLookup(ctx, dateStr)
		if !ok {
			return "", ErrEntryNotFound
		}
		path = found
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	// Access bookkeeping is best-effort; a failed bump never surfaces
	if err := s.store.TouchEntryAccess(ctx, dateStr, time.Now().UTC()); err != nil {
		logger.Warn("Failed to record entry access", "date", dateStr, "error", err)
	}

	return string(content), nil
}

// DeleteEntry removes the entry file and its index record. The index row is
// removed even when no file was found, so a dangling record can be cleaned up.
func (s *Synchronizer) DeleteEntry(ctx context.Context, date time.Time) error {
	dateStr := date.Format(constants.DateFormat)

	path := s.EntryPath(ctx, date)
	if _, err := os.Stat(path); err != nil {
		if found, ok := s.legacyLookup(ctx, dateStr); ok {
			path = found
		} else {
			path = ""
		}
	}

	if path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	if err := s.store.DeleteEntry(ctx, dateStr); err != nil {
		if errors.Is(err, storage.ErrEntryNotFound) {
			if path == "" {
				return ErrEntryNotFound
			}
			return nil
		}
		return err
	}
	return nil
}

// legacyLookup hunts for an entry file outside the expected location: the
// index record's stored path first, then every week bucket, then the legacy
// day-directory layout.
func (s *Synchronizer) legacyLookup(ctx context.Context, dateStr string) (string, bool) {
	if rec, err := s.store.GetEntry(ctx, dateStr); err == nil && rec.FilePath != "" {
		if _, err := os.Stat(rec.FilePath); err == nil {
			return rec.FilePath, true
		}
	}

	if path, ok := s.findInBuckets(dateStr); ok {
		return path, true
	}

	// Legacy layout: one directory per day
	dayDir := filepath.Join(s.basePath, dateStr)
	candidates := []string{
		filepath.Join(dayDir, dateStr+constants.EntryFileExt),
		filepath.Join(dayDir, "entry"+constants.EntryFileExt),
		filepath.Join(s.basePath, dateStr+constants.EntryFileExt),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

// findInBuckets scans every week_ending_* directory for a file named after
// the date.
func (s *Synchronizer) findInBuckets(dateStr string) (string, bool) {
	dirs, err := os.ReadDir(s.basePath)
	if err != nil {
		return "", false
	}

	for _, dir := range dirs {
		if !dir.IsDir() || !strings.HasPrefix(dir.Name(), constants.WeekBucketPrefix) {
			continue
		}
		candidate := filepath.Join(s.basePath, dir.Name(), dateStr+constants.EntryFileExt)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// bucketDate extracts the week-ending date from a bucket directory name.
func bucketDate(dirName string) (string, bool) {
	if !strings.HasPrefix(dirName, constants.WeekBucketPrefix) {
		return "", false
	}
	dateStr := strings.TrimPrefix(dirName, constants.WeekBucketPrefix)
	if _, err := time.Parse(constants.DateFormat, dateStr); err != nil {
		return "", false
	}
	return dateStr, true
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n") + 1
	if strings.HasSuffix(content, "\n") {
		n--
	}
	return n
}
