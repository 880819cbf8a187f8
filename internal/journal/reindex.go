package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/logger"
	"github.com/julianstephens/weeklog/internal/workweek"
)

// ReindexError records a single entry that could not be recomputed.
type ReindexError struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

// ReindexReport aggregates the counters of one reindex run.
type ReindexReport struct {
	RunID             string         `json:"run_id"`
	EntriesProcessed  int            `json:"entries_processed"`
	EntriesUpdated    int            `json:"entries_updated"`
	EntriesWithErrors int            `json:"entries_with_errors"`
	Errors            []ReindexError `json:"errors,omitempty"`
}

// Reindex recomputes week_ending_date for every index record under the
// current config, paging in fixed-size batches and committing each batch in
// its own transaction, so memory stays bounded and an interrupted run resumes
// by simply running again. A single record's failure is collected into the
// report and never aborts the batch. Running twice in a row yields zero
// updates on the second run.
func (s *Synchronizer) Reindex(ctx context.Context, batchSize int) (*ReindexReport, error) {
	if batchSize <= 0 {
		batchSize = constants.DefaultReindexBatchSize
	}

	report := &ReindexReport{RunID: uuid.NewString()}
	logger.Info("Starting week ending reindex", "run_id", report.RunID, "batch_size", batchSize)

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		batch, err := s.store.EntriesPage(ctx, offset, batchSize)
		if err != nil {
			return report, fmt.Errorf("failed to read entries page at offset %d: %w", offset, err)
		}
		if len(batch) == 0 {
			break
		}

		cfg := s.workweek.Config(ctx, s.scope)
		updates := make(map[string]string)

		for _, rec := range batch {
			report.EntriesProcessed++

			date, err := time.Parse(constants.DateFormat, rec.Date)
			if err != nil {
				report.EntriesWithErrors++
				report.Errors = append(report.Errors, ReindexError{Date: rec.Date, Error: err.Error()})
				continue
			}

			weekEnding, err := workweek.Calculate(date, cfg)
			if err != nil {
				weekEnding = workweek.SimpleFridayWeekEnding(date)
			}

			computed := weekEnding.Format(constants.DateFormat)
			if computed != rec.WeekEnding {
				updates[rec.Date] = computed
			}
		}

		if err := s.store.UpdateWeekEndings(ctx, updates); err != nil {
			return report, fmt.Errorf("failed to commit reindex batch at offset %d: %w", offset, err)
		}
		report.EntriesUpdated += len(updates)

		offset += len(batch)
		if len(batch) < batchSize {
			break
		}
	}

	logger.Info("Reindex finished", "run_id", report.RunID,
		"processed", report.EntriesProcessed, "updated", report.EntriesUpdated,
		"errors", report.EntriesWithErrors)
	return report, nil
}

// IntegrityError describes one index record that failed the integrity check.
type IntegrityError struct {
	Date       string `json:"date"`
	WeekEnding string `json:"week_ending_date,omitempty"`
	Reason     string `json:"reason"`
}

// IntegrityReport totals the outcome of a read-only integrity check.
type IntegrityReport struct {
	TotalEntries       int              `json:"total_entries"`
	ValidEntries       int              `json:"valid_entries"`
	MissingWeekEndings int              `json:"missing_week_endings"`
	InvalidDateRanges  int              `json:"invalid_date_ranges"`
	Errors             []IntegrityError `json:"errors,omitempty"`
}

// CheckIntegrity flags records whose week_ending_date is missing or more than
// seven days from the entry date. It is read-only and repairs nothing; run
// Reindex to fix what it finds.
func (s *Synchronizer) CheckIntegrity(ctx context.Context) (*IntegrityReport, error) {
	report := &IntegrityReport{}

	offset := 0
	batchSize := constants.DefaultReindexBatchSize
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		batch, err := s.store.EntriesPage(ctx, offset, batchSize)
		if err != nil {
			return report, fmt.Errorf("failed to read entries page at offset %d: %w", offset, err)
		}
		if len(batch) == 0 {
			break
		}

		for _, rec := range batch {
			report.TotalEntries++

			if rec.WeekEnding == "" {
				report.MissingWeekEndings++
				report.Errors = append(report.Errors, IntegrityError{
					Date:   rec.Date,
					Reason: "missing week ending date",
				})
				continue
			}

			date, dateErr := time.Parse(constants.DateFormat, rec.Date)
			weekEnding, weErr := time.Parse(constants.DateFormat, rec.WeekEnding)
			if dateErr != nil || weErr != nil {
				report.InvalidDateRanges++
				report.Errors = append(report.Errors, IntegrityError{
					Date:       rec.Date,
					WeekEnding: rec.WeekEnding,
					Reason:     "unparseable date",
				})
				continue
			}

			if diff := weekEnding.Sub(date); diff > 7*24*time.Hour || diff < -7*24*time.Hour {
				report.InvalidDateRanges++
				report.Errors = append(report.Errors, IntegrityError{
					Date:       rec.Date,
					WeekEnding: rec.WeekEnding,
					Reason:     fmt.Sprintf("week ending is %.0f days from entry date", diff.Hours()/24),
				})
				continue
			}

			report.ValidEntries++
		}

		offset += len(batch)
		if len(batch) < batchSize {
			break
		}
	}

	return report, nil
}
