package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestOpen_FreshInstallMarksAllMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "progress.db")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer database.Close()

	v, err := CurrentVersion(database)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if v != len(migrations) {
		t.Errorf("CurrentVersion() = %d, want %d", v, len(migrations))
	}

	if _, err := database.Exec("INSERT INTO user_progress (user_id, book_id, current_entry_id) VALUES ('u', 1, 'START')"); err != nil {
		t.Errorf("schema missing user_progress: %v", err)
	}
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	second.Close()
}

func TestRunMigrations_UpgradesV1Data(t *testing.T) {
	database, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "old.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer database.Close()

	// Simulate a database created by version 1.
	if err := createVersionTable(database); err != nil {
		t.Fatalf("createVersionTable failed: %v", err)
	}
	tx, err := database.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := migrationV1(tx); err != nil {
		t.Fatalf("migrationV1 failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
		t.Fatalf("failed to record v1: %v", err)
	}
	_, err = database.Exec(`INSERT INTO user_progress (user_id, book_id, current_entry_id, choices) VALUES
		('u', 1, 'A', '[{"entry_id":"START","target_id":"A","timestamp":"2026-01-01T00:00:00Z"}]')`)
	if err != nil {
		t.Fatalf("failed to seed v1 row: %v", err)
	}

	if err := RunMigrations(database); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	var entryID, targetID string
	err = database.QueryRow("SELECT entry_id, target_id FROM progress_choices WHERE user_id = 'u' AND book_id = 1 AND seq = 0").Scan(&entryID, &targetID)
	if err != nil {
		t.Fatalf("migrated choice missing: %v", err)
	}
	if entryID != "START" || targetID != "A" {
		t.Errorf("migrated choice = (%s, %s), want (START, A)", entryID, targetID)
	}

	v, _ := CurrentVersion(database)
	if v != 2 {
		t.Errorf("CurrentVersion() = %d, want 2", v)
	}
}
