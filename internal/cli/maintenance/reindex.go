package maintenance

import (
	"context"
	"fmt"

	"github.com/julianstephens/weeklog/internal/cli"
	"github.com/julianstephens/weeklog/internal/constants"
)

type ReindexCmd struct {
	BatchSize int `default:"100" help:"Records per batch; each batch commits in its own transaction."`
}

func (c *ReindexCmd) Run(ctx *cli.Context) error {
	batchSize := c.BatchSize
	if batchSize <= 0 {
		batchSize = constants.DefaultReindexBatchSize
	}

	fmt.Printf("Recomputing week ending dates (batch size %d)...\n", batchSize)

	report, err := ctx.Journal.Reindex(context.Background(), batchSize)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	fmt.Printf("✓ Reindex complete (run %s)\n", report.RunID)
	fmt.Printf("  Processed: %d\n", report.EntriesProcessed)
	fmt.Printf("  Updated:   %d\n", report.EntriesUpdated)
	fmt.Printf("  Errors:    %d\n", report.EntriesWithErrors)
	for _, e := range report.Errors {
		fmt.Printf("    %s: %s\n", e.Date, e.Error)
	}
	return nil
}
