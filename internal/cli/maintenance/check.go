package maintenance

import (
	"context"
	"fmt"

	"github.com/julianstephens/weeklog/internal/cli"
)

type CheckCmd struct{}

func (c *CheckCmd) Run(ctx *cli.Context) error {
	report, err := ctx.Journal.CheckIntegrity(context.Background())
	if err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}

	fmt.Println("Week ending integrity check (read-only):")
	fmt.Printf("  Total entries:        %d\n", report.TotalEntries)
	fmt.Printf("  Valid:                %d\n", report.ValidEntries)
	fmt.Printf("  Missing week endings: %d\n", report.MissingWeekEndings)
	fmt.Printf("  Invalid date ranges:  %d\n", report.InvalidDateRanges)

	if len(report.Errors) > 0 {
		fmt.Println("\nProblem records:")
		for _, e := range report.Errors {
			if e.WeekEnding != "" {
				fmt.Printf("  %s (week ending %s): %s\n", e.Date, e.WeekEnding, e.Reason)
			} else {
				fmt.Printf("  %s: %s\n", e.Date, e.Reason)
			}
		}
		fmt.Println("\nRun 'weeklog reindex' to repair these records.")
	}
	return nil
}
