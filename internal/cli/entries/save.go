package entries

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/weeklog/internal/cli"
	"github.com/julianstephens/weeklog/internal/constants"
)

type SaveCmd struct {
	Content string `arg:"" optional:"" help:"Entry content. Reads stdin when omitted and --file is not set."`
	Date    string `help:"Entry date (YYYY-MM-DD or natural language like \"yesterday\"). Defaults to today."`
	File    string `help:"Read entry content from a file." type:"existingfile"`
}

func (c *SaveCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDate(c.Date)
	if err != nil {
		return err
	}

	content := c.Content
	switch {
	case c.File != "":
		data, err := os.ReadFile(c.File)
		if err != nil {
			return fmt.Errorf("failed to read content file: %w", err)
		}
		content = string(data)
	case content == "":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read content from stdin: %w", err)
		}
		content = string(data)
	}

	if !ctx.Journal.SaveEntry(context.Background(), date, content) {
		return fmt.Errorf("failed to save entry for %s (see log for details)", date.Format(constants.DateFormat))
	}

	fmt.Printf("✓ Saved entry for %s\n", date.Format(constants.DateFormat))
	return nil
}
