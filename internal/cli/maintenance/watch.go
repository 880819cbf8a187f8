package maintenance

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/weeklog/internal/cli"
	"github.com/julianstephens/weeklog/internal/watcher"
)

type WatchCmd struct {
	Debounce time.Duration `default:"500ms" help:"How long to coalesce filesystem events before syncing."`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	w := watcher.New(ctx.Journal, c.Debounce)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s for changes (Ctrl-C to stop)...\n", ctx.Journal.BasePath())

	if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}

	fmt.Println("\nWatcher stopped.")
	return nil
}
