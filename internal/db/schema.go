package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the single source of truth for the database schema. Repository
// tests load it through GetSchemaSQL() so that a column referenced by the
// code but missing here fails immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- One row per (reader, book)
CREATE TABLE IF NOT EXISTS user_progress (
	user_id TEXT NOT NULL,
	book_id INTEGER NOT NULL,
	current_entry_id TEXT NOT NULL,
	visited_entries TEXT NOT NULL DEFAULT '[]',
	completed_at DATETIME,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, book_id)
);

-- Ordered choice log
CREATE TABLE IF NOT EXISTS progress_choices (
	user_id TEXT NOT NULL,
	book_id INTEGER NOT NULL,
	seq INTEGER NOT NULL,
	entry_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	chosen_at DATETIME NOT NULL,
	PRIMARY KEY (user_id, book_id, seq),
	FOREIGN KEY (user_id, book_id) REFERENCES user_progress(user_id, book_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_progress_choices_edge ON progress_choices(user_id, book_id, entry_id, target_id);
`

// InitSchema creates the schema on a fresh database and migrates an existing one.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	if tableCount > 0 {
		return RunMigrations(db)
	}

	// Fresh install - create the current schema and mark every migration applied
	if _, err := db.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := createVersionTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
