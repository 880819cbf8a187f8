package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/logger"
	"github.com/julianstephens/weeklog/internal/storage"
)

// RescanReport aggregates one walk of the journal tree.
type RescanReport struct {
	FilesScanned   int      `json:"files_scanned"`
	RecordsCreated int      `json:"records_created"`
	RecordsUpdated int      `json:"records_updated"`
	RecordsPruned  int      `json:"records_pruned"`
	SkippedFiles   []string `json:"skipped_files,omitempty"`
}

// Rescan walks the journal tree and upserts an index record for every entry
// file found, healing the window where a crash left a file on disk with no
// index row. Files in week buckets and in the legacy day-directory layout are
// both discovered. With prune set, index records whose file no longer exists
// are deleted.
func (s *Synchronizer) Rescan(ctx context.Context, prune bool) (*RescanReport, error) {
	report := &RescanReport{}

	dirs, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return report, nil
		}
		return nil, err
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !dir.IsDir() {
			continue
		}

		switch {
		case strings.HasPrefix(dir.Name(), constants.WeekBucketPrefix):
			if err := s.rescanBucket(ctx, dir.Name(), report); err != nil {
				return report, err
			}
		case isDateName(dir.Name()):
			// Legacy one-directory-per-day layout
			if err := s.rescanDayDir(ctx, dir.Name(), report); err != nil {
				return report, err
			}
		}
	}

	if prune {
		if err := s.pruneMissing(ctx, report); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (s *Synchronizer) rescanBucket(ctx context.Context, bucketName string, report *RescanReport) error {
	bucketPath := filepath.Join(s.basePath, bucketName)
	files, err := os.ReadDir(bucketPath)
	if err != nil {
		return err
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), constants.EntryFileExt) {
			continue
		}
		dateStr := strings.TrimSuffix(file.Name(), constants.EntryFileExt)
		if !isDateName(dateStr) {
			report.SkippedFiles = append(report.SkippedFiles, filepath.Join(bucketName, file.Name()))
			continue
		}
		if err := s.indexFile(ctx, dateStr, filepath.Join(bucketPath, file.Name()), report); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synchronizer) rescanDayDir(ctx context.Context, dateStr string, report *RescanReport) error {
	dayPath := filepath.Join(s.basePath, dateStr)
	files, err := os.ReadDir(dayPath)
	if err != nil {
		return err
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), constants.EntryFileExt) {
			continue
		}
		if err := s.indexFile(ctx, dateStr, filepath.Join(dayPath, file.Name()), report); err != nil {
			return err
		}
		// A legacy day directory holds at most one entry worth indexing
		break
	}
	return nil
}

// indexFile syncs one discovered file into the index.
func (s *Synchronizer) indexFile(ctx context.Context, dateStr, path string, report *RescanReport) error {
	report.FilesScanned++

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read entry file during rescan", "path", path, "error", err)
		report.SkippedFiles = append(report.SkippedFiles, path)
		return nil
	}

	_, getErr := s.store.GetEntry(ctx, dateStr)
	existed := getErr == nil
	if getErr != nil && !errors.Is(getErr, storage.ErrEntryNotFound) {
		return getErr
	}

	if err := s.syncIndexRecord(ctx, dateStr, path, string(content)); err != nil {
		return err
	}

	if existed {
		report.RecordsUpdated++
	} else {
		report.RecordsCreated++
	}
	return nil
}

// pruneMissing deletes index records whose file no longer exists anywhere.
func (s *Synchronizer) pruneMissing(ctx context.Context, report *RescanReport) error {
	offset := 0
	batchSize := constants.DefaultReindexBatchSize

	var stale []string
	for {
		batch, err := s.store.EntriesPage(ctx, offset, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}

		for _, rec := range batch {
			if rec.FilePath != "" {
				if _, err := os.Stat(rec.FilePath); err == nil {
					continue
				}
			}
			if _, ok := s.findInBuckets(rec.Date); ok {
				continue
			}
			stale = append(stale, rec.Date)
		}

		offset += len(batch)
		if len(batch) < batchSize {
			break
		}
	}

	for _, date := range stale {
		if err := s.store.DeleteEntry(ctx, date); err != nil && !errors.Is(err, storage.ErrEntryNotFound) {
			return err
		}
		report.RecordsPruned++
	}
	return nil
}

// SyncFromDisk refreshes the index record for an entry file path, or removes
// the record when the file is gone. The watch daemon calls this for every
// out-of-band edit it sees.
func (s *Synchronizer) SyncFromDisk(ctx context.Context, path string) error {
	name := filepath.Base(path)
	dateStr := strings.TrimSuffix(name, constants.EntryFileExt)
	if !strings.HasSuffix(name, constants.EntryFileExt) || !isDateName(dateStr) {
		return nil // not an entry file
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if delErr := s.store.DeleteEntry(ctx, dateStr); delErr != nil && !errors.Is(delErr, storage.ErrEntryNotFound) {
				return delErr
			}
			return nil
		}
		return err
	}

	return s.syncIndexRecord(ctx, dateStr, path, string(content))
}

func isDateName(name string) bool {
	_, err := time.Parse(constants.DateFormat, name)
	return err == nil
}
