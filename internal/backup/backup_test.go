package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

// setupTestDB creates a small SQLite database to back up.
func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "weeklog.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE entries (date TEXT PRIMARY KEY)"); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO entries (date) VALUES ('2025-01-08')"); err != nil {
		t.Fatalf("failed to insert test row: %v", err)
	}
	return dbPath
}

func TestCreateBackup(t *testing.T) {
	t.Run("creates a valid snapshot", func(t *testing.T) {
		dbPath := setupTestDB(t)
		mgr := NewManager(dbPath)

		backupPath, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup() returned unexpected error: %v", err)
		}

		if _, err := os.Stat(backupPath); err != nil {
			t.Fatalf("backup file missing: %v", err)
		}
		if err := mgr.verifyBackup(backupPath); err != nil {
			t.Errorf("backup is not a valid database: %v", err)
		}

		// The snapshot carries the data
		db, err := sql.Open("sqlite", backupPath)
		if err != nil {
			t.Fatalf("failed to open backup: %v", err)
		}
		defer db.Close()
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
			t.Fatalf("failed to query backup: %v", err)
		}
		if count != 1 {
			t.Errorf("backup row count = %d, want 1", count)
		}
	})

	t.Run("missing database errors", func(t *testing.T) {
		mgr := NewManager(filepath.Join(t.TempDir(), "nope.db"))
		if _, err := mgr.CreateBackup(); err == nil {
			t.Error("CreateBackup() succeeded without a database, want error")
		}
	})

	t.Run("colliding names get unique suffixes", func(t *testing.T) {
		dbPath := setupTestDB(t)
		mgr := NewManager(dbPath)

		first, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup() returned unexpected error: %v", err)
		}
		second, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("second CreateBackup() returned unexpected error: %v", err)
		}
		if first == second {
			t.Errorf("both backups wrote to %s", first)
		}
	})
}

func TestListBackups(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		mgr := NewManager(filepath.Join(t.TempDir(), "weeklog.db"))
		backups, err := mgr.ListBackups()
		if err != nil {
			t.Fatalf("ListBackups() returned unexpected error: %v", err)
		}
		if len(backups) != 0 {
			t.Errorf("ListBackups() = %d backups, want 0", len(backups))
		}
	})

	t.Run("ignores foreign files", func(t *testing.T) {
		dbPath := setupTestDB(t)
		mgr := NewManager(dbPath)

		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup() returned unexpected error: %v", err)
		}
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), "notes.txt"), []byte("x"), 0600); err != nil {
			t.Fatalf("failed to write foreign file: %v", err)
		}

		backups, err := mgr.ListBackups()
		if err != nil {
			t.Fatalf("ListBackups() returned unexpected error: %v", err)
		}
		if len(backups) != 1 {
			t.Errorf("ListBackups() = %d backups, want 1", len(backups))
		}
	})
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() returned unexpected error: %v", err)
	}

	// Mutate the live database after the snapshot
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec("INSERT INTO entries (date) VALUES ('2025-01-09')"); err != nil {
		t.Fatalf("failed to insert row: %v", err)
	}
	db.Close()

	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup() returned unexpected error: %v", err)
	}

	restored, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open restored database: %v", err)
	}
	defer restored.Close()
	var count int
	if err := restored.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		t.Fatalf("failed to query restored database: %v", err)
	}
	if count != 1 {
		t.Errorf("restored row count = %d, want the snapshot's 1", count)
	}
}

func TestRestoreBackupRejectsGarbage(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	garbage := filepath.Join(t.TempDir(), "garbage.db")
	if err := os.WriteFile(garbage, []byte("this is not sqlite"), 0600); err != nil {
		t.Fatalf("failed to write garbage file: %v", err)
	}

	if err := mgr.RestoreBackup(garbage); err == nil {
		t.Error("RestoreBackup() accepted a corrupt file, want error")
	}
}
