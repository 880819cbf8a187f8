package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/models"
	"github.com/julianstephens/weeklog/internal/utils"
)

// ImportError records one rejected line of an import stream.
type ImportError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ImportReport aggregates an import run.
type ImportReport struct {
	RecordsImported int           `json:"records_imported"`
	RecordsFailed   int           `json:"records_failed"`
	Errors          []ImportError `json:"errors,omitempty"`
}

// Export writes the entry index as JSONL, one record per line in date order,
// and returns the number of records written.
func (s *Synchronizer) Export(ctx context.Context, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	count := 0
	offset := 0
	batchSize := constants.DefaultReindexBatchSize
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		batch, err := s.store.EntriesPage(ctx, offset, batchSize)
		if err != nil {
			return count, err
		}
		if len(batch) == 0 {
			break
		}

		for _, rec := range batch {
			if err := enc.Encode(rec); err != nil {
				return count, fmt.Errorf("failed to encode record for %s: %w", rec.Date, err)
			}
			count++
		}

		offset += len(batch)
		if len(batch) < batchSize {
			break
		}
	}

	return count, bw.Flush()
}

// Import reads JSONL records and upserts them into the index. Malformed lines
// are collected into the report with their line numbers and never abort the
// run. Import touches only the index; entry files are not created.
func (s *Synchronizer) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	report := &ImportReport{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := ctx.Err(); err != nil {
			return report, err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec models.EntryRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			report.RecordsFailed++
			report.Errors = append(report.Errors, ImportError{Line: lineNum, Error: err.Error()})
			continue
		}
		if !utils.ValidateDateFormat(rec.Date) {
			report.RecordsFailed++
			report.Errors = append(report.Errors, ImportError{
				Line:  lineNum,
				Error: fmt.Sprintf("invalid date %q", rec.Date),
			})
			continue
		}

		if err := s.store.UpsertEntry(ctx, rec); err != nil {
			report.RecordsFailed++
			report.Errors = append(report.Errors, ImportError{Line: lineNum, Error: err.Error()})
			continue
		}
		report.RecordsImported++
	}

	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("failed to read import stream: %w", err)
	}
	return report, nil
}
