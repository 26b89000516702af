// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/secondary"
)

// ProgressRepository implements secondary.ProgressRepository with SQLite.
type ProgressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new SQLite progress repository.
func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Get retrieves the progress record for a reader and book.
func (r *ProgressRepository) Get(ctx context.Context, userID string, bookID int) (*models.Progress, error) {
	var (
		visitedJSON string
		completedAt sql.NullTime
		updatedAt   sql.NullTime
	)

	progress := &models.Progress{UserID: userID, BookID: bookID}
	err := r.db.QueryRowContext(ctx,
		"SELECT current_entry_id, visited_entries, completed_at, updated_at FROM user_progress WHERE user_id = ? AND book_id = ?",
		userID, bookID,
	).Scan(&progress.CurrentEntryID, &visitedJSON, &completedAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("progress for book %d: %w", bookID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	if err := json.Unmarshal([]byte(visitedJSON), &progress.VisitedEntries); err != nil {
		return nil, fmt.Errorf("failed to decode visited entries: %w", err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		progress.CompletedAt = &t
	}
	if updatedAt.Valid {
		progress.UpdatedAt = updatedAt.Time
	}

	choices, err := r.listChoices(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	progress.Choices = choices

	return progress, nil
}

func (r *ProgressRepository) listChoices(ctx context.Context, userID string, bookID int) ([]models.ChoiceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT entry_id, target_id, chosen_at FROM progress_choices WHERE user_id = ? AND book_id = ? ORDER BY seq",
		userID, bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list choices: %w", err)
	}
	defer rows.Close()

	choices := []models.ChoiceRecord{}
	for rows.Next() {
		var c models.ChoiceRecord
		if err := rows.Scan(&c.EntryID, &c.TargetID, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate choices: %w", err)
	}
	return choices, nil
}

// Save upserts the progress row and rewrites its choice log in one transaction.
func (r *ProgressRepository) Save(ctx context.Context, progress *models.Progress) error {
	if progress.UserID == "" {
		return fmt.Errorf("progress UserID must be set")
	}
	if progress.CurrentEntryID == "" {
		return fmt.Errorf("progress CurrentEntryID must be set")
	}

	visited := progress.VisitedEntries
	if visited == nil {
		visited = []string{}
	}
	visitedJSON, err := json.Marshal(visited)
	if err != nil {
		return fmt.Errorf("failed to encode visited entries: %w", err)
	}

	var completedAt sql.NullTime
	if progress.CompletedAt != nil {
		completedAt = sql.NullTime{Time: progress.CompletedAt.UTC(), Valid: true}
	}
	updatedAt := progress.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, book_id, current_entry_id, visited_entries, completed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, book_id) DO UPDATE SET
			current_entry_id = excluded.current_entry_id,
			visited_entries = excluded.visited_entries,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at`,
		progress.UserID, progress.BookID, progress.CurrentEntryID, string(visitedJSON), completedAt, updatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM progress_choices WHERE user_id = ? AND book_id = ?",
		progress.UserID, progress.BookID,
	); err != nil {
		return fmt.Errorf("failed to reset choices: %w", err)
	}

	for i, c := range progress.Choices {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO progress_choices (user_id, book_id, seq, entry_id, target_id, chosen_at) VALUES (?, ?, ?, ?, ?, ?)",
			progress.UserID, progress.BookID, i, c.EntryID, c.TargetID, c.Timestamp.UTC(),
		); err != nil {
			return fmt.Errorf("failed to save choice %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit progress: %w", err)
	}
	return nil
}

// Delete removes the progress record and its choice log.
func (r *ProgressRepository) Delete(ctx context.Context, userID string, bookID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Explicit delete so the log is cleared even when foreign keys are off.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM progress_choices WHERE user_id = ? AND book_id = ?", userID, bookID,
	); err != nil {
		return fmt.Errorf("failed to delete choices: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM user_progress WHERE user_id = ? AND book_id = ?", userID, bookID,
	); err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// Ensure ProgressRepository implements the interface
var _ secondary.ProgressRepository = (*ProgressRepository)(nil)
