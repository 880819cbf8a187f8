package entries

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/weeklog/internal/cli"
	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/journal"
)

type ShowCmd struct {
	Date string `help:"Entry date (YYYY-MM-DD or natural language). Defaults to today."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDate(c.Date)
	if err != nil {
		return err
	}

	content, err := ctx.Journal.EntryContent(context.Background(), date)
	if err != nil {
		if errors.Is(err, journal.ErrEntryNotFound) {
			return fmt.Errorf("no entry found for %s", date.Format(constants.DateFormat))
		}
		return fmt.Errorf("failed to read entry: %w", err)
	}

	fmt.Print(content)
	return nil
}
