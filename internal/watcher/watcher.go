// Package watcher keeps the entry index in step with out-of-band edits to
// the journal tree. It watches the base directory and every week bucket,
// debounces bursts of filesystem events, and re-syncs the affected entries.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/journal"
	"github.com/julianstephens/weeklog/internal/logger"
)

// Watcher mirrors filesystem changes under the journal base path into the
// entry index.
type Watcher struct {
	sync     *journal.Synchronizer
	debounce time.Duration
}

// New creates a watcher for the given synchronizer. A non-positive debounce
// falls back to the default.
func New(sync *journal.Synchronizer, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = constants.DefaultWatchDebounce
	}
	return &Watcher{
		sync:     sync,
		debounce: debounce,
	}
}

// Run watches until the context is cancelled. Events for the same path inside
// one debounce window collapse into a single sync. New week bucket
// directories are added to the watch as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	defer fsw.Close()

	base := w.sync.BasePath()
	if err := os.MkdirAll(base, 0700); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}
	if err := fsw.Add(base); err != nil {
		return fmt.Errorf("failed to watch journal directory %s: %w", base, err)
	}

	// Watch buckets that already exist
	dirs, err := os.ReadDir(base)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if dir.IsDir() && strings.HasPrefix(dir.Name(), constants.WeekBucketPrefix) {
			if err := fsw.Add(filepath.Join(base, dir.Name())); err != nil {
				logger.Warn("Failed to watch week bucket", "bucket", dir.Name(), "error", err)
			}
		}
	}

	logger.Info("Watching journal tree", "path", base, "debounce", w.debounce)

	pending := make(map[string]struct{})
	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if strings.HasPrefix(filepath.Base(event.Name), constants.WeekBucketPrefix) {
						if err := fsw.Add(event.Name); err != nil {
							logger.Warn("Failed to watch new week bucket", "path", event.Name, "error", err)
						}
					}
					continue
				}
			}

			if !strings.HasSuffix(event.Name, constants.EntryFileExt) {
				continue
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) ||
				event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				pending[event.Name] = struct{}{}
				flush = time.After(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Filesystem watcher error", "error", err)

		case <-flush:
			for path := range pending {
				if err := w.sync.SyncFromDisk(ctx, path); err != nil {
					logger.Error("Failed to sync entry from disk", "path", path, "error", err)
				} else {
					logger.Debug("Synced entry from disk", "path", path)
				}
			}
			pending = make(map[string]struct{})
			flush = nil
		}
	}
}
