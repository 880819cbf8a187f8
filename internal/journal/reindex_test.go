package journal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/weeklog/internal/models"
)

func seedRecord(t *testing.T, sync *Synchronizer, date, weekEnding string) {
	t.Helper()
	now := time.Now().UTC()
	err := sync.store.UpsertEntry(context.Background(), models.EntryRecord{
		Date:       date,
		FilePath:   filepath.Join(sync.BasePath(), "week_ending_"+weekEnding, date+".md"),
		WeekEnding: weekEnding,
		HasContent: true,
		CreatedAt:  now,
		ModifiedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to seed record for %s: %v", date, err)
	}
}

func TestReindex(t *testing.T) {
	ctx := context.Background()

	t.Run("corrects stale week endings", func(t *testing.T) {
		sync, store := setupSynchronizer(t)

		// One stale bucket, one already correct
		seedRecord(t, sync, "2025-01-08", "2025-01-03")
		seedRecord(t, sync, "2025-01-09", "2025-01-10")

		report, err := sync.Reindex(ctx, 10)
		if err != nil {
			t.Fatalf("Reindex() returned unexpected error: %v", err)
		}
		if report.RunID == "" {
			t.Error("report run id is empty")
		}
		if report.EntriesProcessed != 2 {
			t.Errorf("entries processed = %d, want 2", report.EntriesProcessed)
		}
		if report.EntriesUpdated != 1 {
			t.Errorf("entries updated = %d, want 1", report.EntriesUpdated)
		}

		rec, err := store.GetEntry(ctx, "2025-01-08")
		if err != nil {
			t.Fatalf("GetEntry() returned unexpected error: %v", err)
		}
		if rec.WeekEnding != "2025-01-10" {
			t.Errorf("week ending after reindex = %q, want %q", rec.WeekEnding, "2025-01-10")
		}
	})

	t.Run("second run makes no updates", func(t *testing.T) {
		sync, _ := setupSynchronizer(t)
		seedRecord(t, sync, "2025-01-08", "2025-01-03")

		if _, err := sync.Reindex(ctx, 10); err != nil {
			t.Fatalf("Reindex() returned unexpected error: %v", err)
		}
		second, err := sync.Reindex(ctx, 10)
		if err != nil {
			t.Fatalf("Reindex() returned unexpected error: %v", err)
		}
		if second.EntriesUpdated != 0 {
			t.Errorf("second run updated %d entries, want 0", second.EntriesUpdated)
		}
	})

	t.Run("pages through more entries than the batch size", func(t *testing.T) {
		sync, _ := setupSynchronizer(t)
		for d := 6; d <= 10; d++ { // Mon..Fri 2025-01-06..10
			seedRecord(t, sync, time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), "2025-02-28")
		}

		report, err := sync.Reindex(ctx, 2)
		if err != nil {
			t.Fatalf("Reindex() returned unexpected error: %v", err)
		}
		if report.EntriesProcessed != 5 {
			t.Errorf("entries processed = %d, want 5", report.EntriesProcessed)
		}
		if report.EntriesUpdated != 5 {
			t.Errorf("entries updated = %d, want 5", report.EntriesUpdated)
		}
	})

	t.Run("empty index is a clean no-op", func(t *testing.T) {
		sync, _ := setupSynchronizer(t)

		report, err := sync.Reindex(ctx, 10)
		if err != nil {
			t.Fatalf("Reindex() returned unexpected error: %v", err)
		}
		if report.EntriesProcessed != 0 || report.EntriesUpdated != 0 {
			t.Errorf("report = %+v, want all zero", report)
		}
	})
}

func TestCheckIntegrity(t *testing.T) {
	ctx := context.Background()
	sync, store := setupSynchronizer(t)

	seedRecord(t, sync, "2025-01-08", "2025-01-10") // valid
	seedRecord(t, sync, "2025-01-09", "2025-01-19") // 10 days out
	now := time.Now().UTC()
	if err := store.UpsertEntry(ctx, models.EntryRecord{ // missing week ending
		Date:      "2025-01-06",
		FilePath:  "unused",
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("UpsertEntry() returned unexpected error: %v", err)
	}

	report, err := sync.CheckIntegrity(ctx)
	if err != nil {
		t.Fatalf("CheckIntegrity() returned unexpected error: %v", err)
	}

	if report.TotalEntries != 3 {
		t.Errorf("total entries = %d, want 3", report.TotalEntries)
	}
	if report.ValidEntries != 1 {
		t.Errorf("valid entries = %d, want 1", report.ValidEntries)
	}
	if report.MissingWeekEndings != 1 {
		t.Errorf("missing week endings = %d, want 1", report.MissingWeekEndings)
	}
	if report.InvalidDateRanges != 1 {
		t.Errorf("invalid date ranges = %d, want 1", report.InvalidDateRanges)
	}

	// Integrity check never repairs
	rec, err := store.GetEntry(ctx, "2025-01-09")
	if err != nil {
		t.Fatalf("GetEntry() returned unexpected error: %v", err)
	}
	if rec.WeekEnding != "2025-01-19" {
		t.Errorf("CheckIntegrity() modified a record: week ending = %q", rec.WeekEnding)
	}
}

func TestRescan(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes orphan files", func(t *testing.T) {
		sync, store := setupSynchronizer(t)

		// Files on disk with no index rows: one in a bucket, one legacy
		bucket := filepath.Join(sync.BasePath(), "week_ending_2025-01-10")
		if err := os.MkdirAll(bucket, 0700); err != nil {
			t.Fatalf("failed to create bucket: %v", err)
		}
		if err := os.WriteFile(filepath.Join(bucket, "2025-01-08.md"), []byte("orphan one"), 0600); err != nil {
			t.Fatalf("failed to write entry file: %v", err)
		}
		legacy := filepath.Join(sync.BasePath(), "2025-01-02")
		if err := os.MkdirAll(legacy, 0700); err != nil {
			t.Fatalf("failed to create legacy dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(legacy, "entry.md"), []byte("orphan two"), 0600); err != nil {
			t.Fatalf("failed to write legacy file: %v", err)
		}

		report, err := sync.Rescan(ctx, false)
		if err != nil {
			t.Fatalf("Rescan() returned unexpected error: %v", err)
		}
		if report.RecordsCreated != 2 {
			t.Errorf("records created = %d, want 2", report.RecordsCreated)
		}

		rec, err := store.GetEntry(ctx, "2025-01-08")
		if err != nil {
			t.Fatalf("orphan not indexed: %v", err)
		}
		if rec.WeekEnding != "2025-01-10" {
			t.Errorf("indexed week ending = %q, want %q", rec.WeekEnding, "2025-01-10")
		}
		if _, err := store.GetEntry(ctx, "2025-01-02"); err != nil {
			t.Errorf("legacy orphan not indexed: %v", err)
		}
	})

	t.Run("updates known files and skips junk", func(t *testing.T) {
		sync, _ := setupSynchronizer(t)

		if ok := sync.SaveEntry(ctx, testDate(t, "2025-01-08"), "known"); !ok {
			t.Fatal("SaveEntry() = false, want true")
		}
		bucket := filepath.Join(sync.BasePath(), "week_ending_2025-01-10")
		if err := os.WriteFile(filepath.Join(bucket, "notes.md"), []byte("junk"), 0600); err != nil {
			t.Fatalf("failed to write junk file: %v", err)
		}

		report, err := sync.Rescan(ctx, false)
		if err != nil {
			t.Fatalf("Rescan() returned unexpected error: %v", err)
		}
		if report.RecordsUpdated != 1 {
			t.Errorf("records updated = %d, want 1", report.RecordsUpdated)
		}
		if report.RecordsCreated != 0 {
			t.Errorf("records created = %d, want 0", report.RecordsCreated)
		}
		if len(report.SkippedFiles) != 1 {
			t.Errorf("skipped files = %v, want one entry", report.SkippedFiles)
		}
	})

	t.Run("prune drops records without files", func(t *testing.T) {
		sync, store := setupSynchronizer(t)

		seedRecord(t, sync, "2025-01-08", "2025-01-10") // no file anywhere

		report, err := sync.Rescan(ctx, true)
		if err != nil {
			t.Fatalf("Rescan() returned unexpected error: %v", err)
		}
		if report.RecordsPruned != 1 {
			t.Errorf("records pruned = %d, want 1", report.RecordsPruned)
		}
		if _, err := store.GetEntry(ctx, "2025-01-08"); err == nil {
			t.Error("pruned record still present")
		}
	})

	t.Run("missing journal directory is a no-op", func(t *testing.T) {
		sync, _ := setupSynchronizer(t)

		report, err := sync.Rescan(ctx, false)
		if err != nil {
			t.Fatalf("Rescan() returned unexpected error: %v", err)
		}
		if report.FilesScanned != 0 {
			t.Errorf("files scanned = %d, want 0", report.FilesScanned)
		}
	})
}

func TestSyncFromDisk(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes a new file", func(t *testing.T) {
		sync, store := setupSynchronizer(t)

		bucket := filepath.Join(sync.BasePath(), "week_ending_2025-01-10")
		if err := os.MkdirAll(bucket, 0700); err != nil {
			t.Fatalf("failed to create bucket: %v", err)
		}
		path := filepath.Join(bucket, "2025-01-08.md")
		if err := os.WriteFile(path, []byte("edited outside weeklog"), 0600); err != nil {
			t.Fatalf("failed to write entry file: %v", err)
		}

		if err := sync.SyncFromDisk(ctx, path); err != nil {
			t.Fatalf("SyncFromDisk() returned unexpected error: %v", err)
		}
		if _, err := store.GetEntry(ctx, "2025-01-08"); err != nil {
			t.Errorf("record not created: %v", err)
		}
	})

	t.Run("removes the record for a deleted file", func(t *testing.T) {
		sync, store := setupSynchronizer(t)

		if ok := sync.SaveEntry(ctx, testDate(t, "2025-01-08"), "short-lived"); !ok {
			t.Fatal("SaveEntry() = false, want true")
		}
		rec, err := store.GetEntry(ctx, "2025-01-08")
		if err != nil {
			t.Fatalf("GetEntry() returned unexpected error: %v", err)
		}
		if err := os.Remove(rec.FilePath); err != nil {
			t.Fatalf("failed to remove entry file: %v", err)
		}

		if err := sync.SyncFromDisk(ctx, rec.FilePath); err != nil {
			t.Fatalf("SyncFromDisk() returned unexpected error: %v", err)
		}
		if _, err := store.GetEntry(ctx, "2025-01-08"); err == nil {
			t.Error("record survived file deletion")
		}
	})

	t.Run("ignores files that are not entries", func(t *testing.T) {
		sync, _ := setupSynchronizer(t)

		if err := sync.SyncFromDisk(ctx, filepath.Join(sync.BasePath(), "README.md")); err != nil {
			t.Errorf("SyncFromDisk() returned unexpected error for non-entry file: %v", err)
		}
	})
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		source, _ := setupSynchronizer(t)
		seedRecord(t, source, "2025-01-08", "2025-01-10")
		seedRecord(t, source, "2025-01-09", "2025-01-10")

		var buf bytes.Buffer
		count, err := source.Export(ctx, &buf)
		if err != nil {
			t.Fatalf("Export() returned unexpected error: %v", err)
		}
		if count != 2 {
			t.Errorf("Export() = %d records, want 2", count)
		}
		if got := strings.Count(buf.String(), "\n"); got != 2 {
			t.Errorf("export has %d lines, want 2", got)
		}

		dest, destStore := setupSynchronizer(t)
		report, err := dest.Import(ctx, &buf)
		if err != nil {
			t.Fatalf("Import() returned unexpected error: %v", err)
		}
		if report.RecordsImported != 2 {
			t.Errorf("records imported = %d, want 2", report.RecordsImported)
		}

		rec, err := destStore.GetEntry(ctx, "2025-01-08")
		if err != nil {
			t.Fatalf("imported record missing: %v", err)
		}
		if rec.WeekEnding != "2025-01-10" {
			t.Errorf("imported week ending = %q, want %q", rec.WeekEnding, "2025-01-10")
		}
	})

	t.Run("bad lines are collected, good lines land", func(t *testing.T) {
		sync, _ := setupSynchronizer(t)

		input := strings.Join([]string{
			`{"date":"2025-01-08","file_path":"x","week_ending_date":"2025-01-10"}`,
			`not json at all`,
			`{"date":"January 8th","file_path":"y"}`,
			``,
			`{"date":"2025-01-09","file_path":"z","week_ending_date":"2025-01-10"}`,
		}, "\n")

		report, err := sync.Import(ctx, strings.NewReader(input))
		if err != nil {
			t.Fatalf("Import() returned unexpected error: %v", err)
		}
		if report.RecordsImported != 2 {
			t.Errorf("records imported = %d, want 2", report.RecordsImported)
		}
		if report.RecordsFailed != 2 {
			t.Errorf("records failed = %d, want 2", report.RecordsFailed)
		}
		if len(report.Errors) != 2 {
			t.Fatalf("errors = %v, want 2", report.Errors)
		}
		if report.Errors[0].Line != 2 || report.Errors[1].Line != 3 {
			t.Errorf("error lines = %d, %d, want 2, 3", report.Errors[0].Line, report.Errors[1].Line)
		}
	})
}
