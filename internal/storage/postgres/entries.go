package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/weeklog/internal/models"
	"github.com/julianstephens/weeklog/internal/storage"
)

const entryColumns = `date, file_path, week_ending_date, word_count, char_count, line_count,
       has_content, file_size, file_modified_at, created_at, modified_at, synced_at,
       last_accessed_at, access_count`

func (s *Store) GetEntry(ctx context.Context, date string) (models.EntryRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE date = $1", date)

	rec, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.EntryRecord{}, storage.ErrEntryNotFound
		}
		return models.EntryRecord{}, err
	}
	return rec, nil
}

func (s *Store) UpsertEntry(ctx context.Context, rec models.EntryRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (date) DO UPDATE SET
			file_path = EXCLUDED.file_path,
			week_ending_date = EXCLUDED.week_ending_date,
			word_count = EXCLUDED.word_count,
			char_count = EXCLUDED.char_count,
			line_count = EXCLUDED.line_count,
			has_content = EXCLUDED.has_content,
			file_size = EXCLUDED.file_size,
			file_modified_at = EXCLUDED.file_modified_at,
			modified_at = EXCLUDED.modified_at,
			synced_at = EXCLUDED.synced_at`,
		rec.Date, rec.FilePath, nullString(rec.WeekEnding),
		rec.WordCount, rec.CharCount, rec.LineCount, rec.HasContent, rec.FileSize,
		nullTime(rec.FileModifiedAt), rec.CreatedAt.UTC(), rec.ModifiedAt.UTC(),
		nullTime(rec.SyncedAt), nullTimePtr(rec.LastAccessedAt), rec.AccessCount)
	return err
}

func (s *Store) DeleteEntry(ctx context.Context, date string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE date = $1", date)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrEntryNotFound
	}
	return nil
}

func (s *Store) ListEntries(ctx context.Context, limit int) ([]models.EntryRecord, error) {
	if limit > 0 {
		return s.queryEntries(ctx,
			"SELECT "+entryColumns+" FROM entries ORDER BY date DESC LIMIT $1", limit)
	}
	return s.queryEntries(ctx,
		"SELECT "+entryColumns+" FROM entries ORDER BY date DESC")
}

func (s *Store) ListEntriesByWeek(ctx context.Context, weekEnding string) ([]models.EntryRecord, error) {
	return s.queryEntries(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE week_ending_date = $1 ORDER BY date ASC", weekEnding)
}

func (s *Store) EntriesPage(ctx context.Context, offset, limit int) ([]models.EntryRecord, error) {
	return s.queryEntries(ctx,
		"SELECT "+entryColumns+" FROM entries ORDER BY date ASC LIMIT $1 OFFSET $2", limit, offset)
}

func (s *Store) CountEntries(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&count)
	return count, err
}

func (s *Store) UpdateWeekEndings(ctx context.Context, updates map[string]string) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"UPDATE entries SET week_ending_date = $1, modified_at = $2 WHERE date = $3")
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for date, weekEnding := range updates {
		if _, err := stmt.ExecContext(ctx, weekEnding, now, date); err != nil {
			return fmt.Errorf("failed to update week ending for %s: %w", date, err)
		}
	}

	return tx.Commit()
}

func (s *Store) TouchEntryAccess(ctx context.Context, date string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE entries SET last_accessed_at = $1, access_count = access_count + 1 WHERE date = $2",
		at.UTC(), date)
	return err
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]models.EntryRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.EntryRecord
	for rows.Next() {
		rec, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, rec)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.EntryRecord, error) {
	var rec models.EntryRecord
	var weekEnding sql.NullString
	var fileModifiedAt, syncedAt, lastAccessedAt sql.NullTime

	err := row.Scan(
		&rec.Date, &rec.FilePath, &weekEnding,
		&rec.WordCount, &rec.CharCount, &rec.LineCount, &rec.HasContent, &rec.FileSize,
		&fileModifiedAt, &rec.CreatedAt, &rec.ModifiedAt, &syncedAt, &lastAccessedAt, &rec.AccessCount,
	)
	if err != nil {
		return models.EntryRecord{}, err
	}

	if weekEnding.Valid {
		rec.WeekEnding = weekEnding.String
	}
	if fileModifiedAt.Valid {
		rec.FileModifiedAt = fileModifiedAt.Time.UTC()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.ModifiedAt = rec.ModifiedAt.UTC()
	if syncedAt.Valid {
		rec.SyncedAt = syncedAt.Time.UTC()
	}
	if lastAccessedAt.Valid {
		t := lastAccessedAt.Time.UTC()
		rec.LastAccessedAt = &t
	}

	return rec, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nullTimePtr(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}
