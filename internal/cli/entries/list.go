package entries

import (
	"context"
	"fmt"

	"github.com/julianstephens/weeklog/internal/cli"
	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/models"
)

type ListCmd struct {
	Week  string `help:"Show only the week ending on this date (YYYY-MM-DD or natural language)."`
	Limit int    `default:"20" help:"Maximum entries to show; 0 for all."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	var entries []models.EntryRecord
	var err error

	if c.Week != "" {
		week, parseErr := cli.ParseDate(c.Week)
		if parseErr != nil {
			return parseErr
		}
		entries, err = ctx.Store.ListEntriesByWeek(context.Background(), week.Format(constants.DateFormat))
	} else {
		entries, err = ctx.Store.ListEntries(context.Background(), c.Limit)
	}
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return nil
	}

	fmt.Printf("%-12s  %-12s  %6s  %6s  %s\n", "DATE", "WEEK ENDING", "WORDS", "LINES", "MODIFIED")
	for _, e := range entries {
		weekEnding := e.WeekEnding
		if weekEnding == "" {
			weekEnding = "-"
		}
		modified := "-"
		if !e.ModifiedAt.IsZero() {
			modified = e.ModifiedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("%-12s  %-12s  %6d  %6d  %s\n", e.Date, weekEnding, e.WordCount, e.LineCount, modified)
	}
	fmt.Printf("\n%d entries\n", len(entries))

	return nil
}
