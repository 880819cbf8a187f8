package entries

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/weeklog/internal/cli"
	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/journal"
)

type DeleteCmd struct {
	Date string `required:"" help:"Entry date to delete (YYYY-MM-DD or natural language)."`
	Yes  bool   `help:"Skip the confirmation prompt."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDate(c.Date)
	if err != nil {
		return err
	}
	dateStr := date.Format(constants.DateFormat)

	if !c.Yes {
		fmt.Printf("Delete entry for %s? This removes the file and its index record. [y/N]: ", dateStr)
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	if err := ctx.Journal.DeleteEntry(context.Background(), date); err != nil {
		if errors.Is(err, journal.ErrEntryNotFound) {
			return fmt.Errorf("no entry found for %s", dateStr)
		}
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	fmt.Printf("✓ Deleted entry for %s\n", dateStr)
	return nil
}
