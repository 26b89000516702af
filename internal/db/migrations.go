package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_user_progress",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_progress_choices_table",
		Up:      migrationV2,
	},
}

func createVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// CurrentVersion returns the highest applied migration version.
func CurrentVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return v, nil
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(db *sql.DB) error {
	if err := createVersionTable(db); err != nil {
		return err
	}

	currentVersion, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the progress table with the choice log stored inline as JSON.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS user_progress (
			user_id TEXT NOT NULL,
			book_id INTEGER NOT NULL,
			current_entry_id TEXT NOT NULL,
			visited_entries TEXT NOT NULL DEFAULT '[]',
			choices TEXT NOT NULL DEFAULT '[]',
			completed_at DATETIME,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, book_id)
		)
	`)
	return err
}

// migrationV2 moves the choice log into its own table so edges can be indexed.
func migrationV2(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS progress_choices (
			user_id TEXT NOT NULL,
			book_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			entry_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			chosen_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, book_id, seq),
			FOREIGN KEY (user_id, book_id) REFERENCES user_progress(user_id, book_id) ON DELETE CASCADE
		)`,
		`INSERT INTO progress_choices (user_id, book_id, seq, entry_id, target_id, chosen_at)
			SELECT p.user_id, p.book_id, CAST(j.key AS INTEGER),
				json_extract(j.value, '$.entry_id'),
				json_extract(j.value, '$.target_id'),
				json_extract(j.value, '$.timestamp')
			FROM user_progress p, json_each(p.choices) j`,
		`ALTER TABLE user_progress DROP COLUMN choices`,
		`CREATE INDEX IF NOT EXISTS idx_progress_choices_edge ON progress_choices(user_id, book_id, entry_id, target_id)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
