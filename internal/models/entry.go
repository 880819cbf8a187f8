package models

import "time"

// EntryRecord is the index row mirroring a file-backed journal entry. The
// file on disk is authoritative for content; the record exists so listing,
// sorting, and searching never have to re-read the journal tree.
type EntryRecord struct {
	Date           string     `json:"date"` // YYYY-MM-DD, unique key
	FilePath       string     `json:"file_path"`
	WeekEnding     string     `json:"week_ending_date,omitempty"` // derived from the active work-week config
	WordCount      int        `json:"word_count"`
	CharCount      int        `json:"char_count"`
	LineCount      int        `json:"line_count"`
	HasContent     bool       `json:"has_content"`
	FileSize       int64      `json:"file_size"`
	FileModifiedAt time.Time  `json:"file_modified_at"`
	CreatedAt      time.Time  `json:"created_at"`
	ModifiedAt     time.Time  `json:"modified_at"`
	SyncedAt       time.Time  `json:"synced_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	AccessCount    int        `json:"access_count"`
}
