package maintenance

import (
	"context"
	"fmt"

	"github.com/julianstephens/weeklog/internal/cli"
)

type RescanCmd struct {
	Prune bool `help:"Delete index records whose entry file no longer exists."`
}

func (c *RescanCmd) Run(ctx *cli.Context) error {
	fmt.Printf("Scanning journal tree at %s...\n", ctx.Journal.BasePath())

	report, err := ctx.Journal.Rescan(context.Background(), c.Prune)
	if err != nil {
		return fmt.Errorf("rescan failed: %w", err)
	}

	fmt.Printf("✓ Rescan complete\n")
	fmt.Printf("  Files scanned:   %d\n", report.FilesScanned)
	fmt.Printf("  Records created: %d\n", report.RecordsCreated)
	fmt.Printf("  Records updated: %d\n", report.RecordsUpdated)
	if c.Prune {
		fmt.Printf("  Records pruned:  %d\n", report.RecordsPruned)
	}
	for _, skipped := range report.SkippedFiles {
		fmt.Printf("  ⚠ Skipped: %s\n", skipped)
	}
	return nil
}
