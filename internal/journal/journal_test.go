package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/weeklog/internal/cache"
	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/storage/sqlite"
	"github.com/julianstephens/weeklog/internal/workweek"
)

// setupSynchronizer creates a synchronizer over a real SQLite store and a
// temporary journal directory.
func setupSynchronizer(t *testing.T) (*Synchronizer, *sqlite.Store) {
	t.Helper()
	dir := t.TempDir()

	store := sqlite.NewStore(filepath.Join(dir, "weeklog.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ww := workweek.NewService(store, cache.NewTTLCache(time.Minute))
	return NewSynchronizer(filepath.Join(dir, "journal"), store, ww), store
}

func testDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestEntryPath(t *testing.T) {
	sync, _ := setupSynchronizer(t)
	ctx := context.Background()

	// Wednesday 2025-01-08 buckets under Friday 2025-01-10 with the default schedule
	got := sync.EntryPath(ctx, testDate(t, "2025-01-08"))
	want := filepath.Join(sync.BasePath(), "week_ending_2025-01-10", "2025-01-08.md")
	if got != want {
		t.Errorf("EntryPath() = %q, want %q", got, want)
	}
}

func TestSaveEntryAndEntryContent(t *testing.T) {
	sync, store := setupSynchronizer(t)
	ctx := context.Background()
	date := testDate(t, "2025-01-08")
	content := "Shipped the parser rewrite.\n\nTwo review rounds left.\n"

	if ok := sync.SaveEntry(ctx, date, content); !ok {
		t.Fatal("SaveEntry() = false, want true")
	}

	// Content round-trips exactly
	got, err := sync.EntryContent(ctx, date)
	if err != nil {
		t.Fatalf("EntryContent() returned unexpected error: %v", err)
	}
	if got != content {
		t.Errorf("EntryContent() = %q, want %q", got, content)
	}

	// Index record carries derived metadata
	rec, err := store.GetEntry(ctx, "2025-01-08")
	if err != nil {
		t.Fatalf("GetEntry() returned unexpected error: %v", err)
	}
	if rec.WeekEnding != "2025-01-10" {
		t.Errorf("record week ending = %q, want %q", rec.WeekEnding, "2025-01-10")
	}
	if rec.WordCount != 8 {
		t.Errorf("record word count = %d, want 8", rec.WordCount)
	}
	if rec.LineCount != 3 {
		t.Errorf("record line count = %d, want 3", rec.LineCount)
	}
	if !rec.HasContent {
		t.Error("record has_content = false, want true")
	}
	if rec.FileSize != int64(len(content)) {
		t.Errorf("record file size = %d, want %d", rec.FileSize, len(content))
	}
	if !strings.Contains(rec.FilePath, constants.WeekBucketPrefix) {
		t.Errorf("record file path %q is not inside a week bucket", rec.FilePath)
	}

	// Reading bumps access bookkeeping
	after, err := store.GetEntry(ctx, "2025-01-08")
	if err != nil {
		t.Fatalf("GetEntry() returned unexpected error: %v", err)
	}
	if after.AccessCount != 1 {
		t.Errorf("access count after one read = %d, want 1", after.AccessCount)
	}
	if after.LastAccessedAt == nil {
		t.Error("last accessed at = nil after a read, want set")
	}
}

func TestSaveEntryPreservesCreatedAt(t *testing.T) {
	sync, store := setupSynchronizer(t)
	ctx := context.Background()
	date := testDate(t, "2025-01-08")

	if ok := sync.SaveEntry(ctx, date, "first"); !ok {
		t.Fatal("SaveEntry() = false, want true")
	}
	first, err := store.GetEntry(ctx, "2025-01-08")
	if err != nil {
		t.Fatalf("GetEntry() returned unexpected error: %v", err)
	}

	if ok := sync.SaveEntry(ctx, date, "second version"); !ok {
		t.Fatal("SaveEntry() = false, want true")
	}
	second, err := store.GetEntry(ctx, "2025-01-08")
	if err != nil {
		t.Fatalf("GetEntry() returned unexpected error: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("resave changed created_at: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if second.WordCount != 2 {
		t.Errorf("resaved word count = %d, want 2", second.WordCount)
	}
}

func TestSaveEntryEmptyContent(t *testing.T) {
	sync, store := setupSynchronizer(t)
	ctx := context.Background()

	if ok := sync.SaveEntry(ctx, testDate(t, "2025-01-08"), "   \n"); !ok {
		t.Fatal("SaveEntry() = false, want true")
	}

	rec, err := store.GetEntry(ctx, "2025-01-08")
	if err != nil {
		t.Fatalf("GetEntry() returned unexpected error: %v", err)
	}
	if rec.HasContent {
		t.Error("record has_content = true for whitespace-only content, want false")
	}
	if rec.WordCount != 0 {
		t.Errorf("record word count = %d, want 0", rec.WordCount)
	}
}

func TestEntryContentNotFound(t *testing.T) {
	sync, _ := setupSynchronizer(t)

	_, err := sync.EntryContent(context.Background(), testDate(t, "2025-01-08"))
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("EntryContent() error = %v, want ErrEntryNotFound", err)
	}
}

func TestEntryContentLegacyLayouts(t *testing.T) {
	tests := []struct {
		name string
		path []string // joined under the journal base
	}{
		{"day directory with date-named file", []string{"2025-01-08", "2025-01-08.md"}},
		{"day directory with entry.md", []string{"2025-01-08", "entry.md"}},
		{"flat file at the root", []string{"2025-01-08.md"}},
		{"stale week bucket", []string{"week_ending_2025-01-03", "2025-01-08.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sync, _ := setupSynchronizer(t)

			full := filepath.Join(append([]string{sync.BasePath()}, tt.path...)...)
			if err := os.MkdirAll(filepath.Dir(full), 0700); err != nil {
				t.Fatalf("failed to create legacy layout: %v", err)
			}
			if err := os.WriteFile(full, []byte("old entry"), 0600); err != nil {
				t.Fatalf("failed to write legacy file: %v", err)
			}

			got, err := sync.EntryContent(context.Background(), testDate(t, "2025-01-08"))
			if err != nil {
				t.Fatalf("EntryContent() returned unexpected error: %v", err)
			}
			if got != "old entry" {
				t.Errorf("EntryContent() = %q, want %q", got, "old entry")
			}
		})
	}
}

func TestEntryContentPrefersIndexPath(t *testing.T) {
	sync, store := setupSynchronizer(t)
	ctx := context.Background()
	date := testDate(t, "2025-01-08")

	// File saved under one schedule, then found via the index record after
	// the file is moved and the record repointed
	if ok := sync.SaveEntry(ctx, date, "moved entry"); !ok {
		t.Fatal("SaveEntry() = false, want true")
	}
	rec, err := store.GetEntry(ctx, "2025-01-08")
	if err != nil {
		t.Fatalf("GetEntry() returned unexpected error: %v", err)
	}

	moved := filepath.Join(sync.BasePath(), "week_ending_2025-01-17", "2025-01-08.md")
	if err := os.MkdirAll(filepath.Dir(moved), 0700); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}
	if err := os.Rename(rec.FilePath, moved); err != nil {
		t.Fatalf("failed to move entry file: %v", err)
	}
	rec.FilePath = moved
	if err := store.UpsertEntry(ctx, rec); err != nil {
		t.Fatalf("UpsertEntry() returned unexpected error: %v", err)
	}

	got, err := sync.EntryContent(ctx, date)
	if err != nil {
		t.Fatalf("EntryContent() returned unexpected error: %v", err)
	}
	if got != "moved entry" {
		t.Errorf("EntryContent() = %q, want %q", got, "moved entry")
	}
}

func TestDeleteEntry(t *testing.T) {
	t.Run("removes file and record", func(t *testing.T) {
		sync, store := setupSynchronizer(t)
		ctx := context.Background()
		date := testDate(t, "2025-01-08")

		if ok := sync.SaveEntry(ctx, date, "doomed"); !ok {
			t.Fatal("SaveEntry() = false, want true")
		}
		rec, err := store.GetEntry(ctx, "2025-01-08")
		if err != nil {
			t.Fatalf("GetEntry() returned unexpected error: %v", err)
		}

		if err := sync.DeleteEntry(ctx, date); err != nil {
			t.Fatalf("DeleteEntry() returned unexpected error: %v", err)
		}

		if _, err := os.Stat(rec.FilePath); !os.IsNotExist(err) {
			t.Error("entry file still exists after delete")
		}
		if _, err := store.GetEntry(ctx, "2025-01-08"); err == nil {
			t.Error("index record still exists after delete")
		}
	})

	t.Run("nothing to delete", func(t *testing.T) {
		sync, _ := setupSynchronizer(t)

		err := sync.DeleteEntry(context.Background(), testDate(t, "2025-01-08"))
		if !errors.Is(err, ErrEntryNotFound) {
			t.Errorf("DeleteEntry() error = %v, want ErrEntryNotFound", err)
		}
	})

	t.Run("cleans up a dangling record", func(t *testing.T) {
		sync, store := setupSynchronizer(t)
		ctx := context.Background()
		date := testDate(t, "2025-01-08")

		if ok := sync.SaveEntry(ctx, date, "content"); !ok {
			t.Fatal("SaveEntry() = false, want true")
		}
		rec, err := store.GetEntry(ctx, "2025-01-08")
		if err != nil {
			t.Fatalf("GetEntry() returned unexpected error: %v", err)
		}
		if err := os.Remove(rec.FilePath); err != nil {
			t.Fatalf("failed to remove entry file: %v", err)
		}

		if err := sync.DeleteEntry(ctx, date); err != nil {
			t.Fatalf("DeleteEntry() returned unexpected error: %v", err)
		}
		if _, err := store.GetEntry(ctx, "2025-01-08"); err == nil {
			t.Error("dangling record survived delete")
		}
	})
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"single line no newline", "hello", 1},
		{"single line with newline", "hello\n", 1},
		{"two lines", "a\nb", 2},
		{"two lines trailing newline", "a\nb\n", 2},
		{"blank middle line", "a\n\nb\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countLines(tt.content); got != tt.want {
				t.Errorf("countLines(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}
