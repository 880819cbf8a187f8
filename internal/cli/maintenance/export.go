package maintenance

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/weeklog/internal/cli"
)

type ExportCmd struct {
	Out string `help:"Output file for the JSONL dump. Defaults to stdout."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	out := os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()
		out = f
	}

	count, err := ctx.Journal.Export(context.Background(), out)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if c.Out != "" {
		fmt.Printf("✓ Exported %d records to %s\n", count, c.Out)
	}
	return nil
}

type ImportCmd struct {
	In string `help:"JSONL file to import. Defaults to stdin." type:"existingfile"`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	in := os.Stdin
	if c.In != "" {
		f, err := os.Open(c.In)
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()
		in = f
	}

	report, err := ctx.Journal.Import(context.Background(), in)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("✓ Imported %d records", report.RecordsImported)
	if report.RecordsFailed > 0 {
		fmt.Printf(", %d failed", report.RecordsFailed)
	}
	fmt.Println()
	for _, e := range report.Errors {
		fmt.Printf("  line %d: %s\n", e.Line, e.Error)
	}
	return nil
}
