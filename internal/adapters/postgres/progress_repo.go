// Package postgres contains the PostgreSQL progress repository and its migrations.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/secondary"
)

// Connect opens a pool against dsn, capping it at maxConns when positive.
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

// ProgressRepository implements secondary.ProgressRepository with PostgreSQL.
type ProgressRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ secondary.ProgressRepository = (*ProgressRepository)(nil)

// NewProgressRepository creates a new PostgreSQL progress repository.
func NewProgressRepository(pool *pgxpool.Pool, logger *zap.Logger) *ProgressRepository {
	return &ProgressRepository{
		pool:   pool,
		logger: logger.Named("PgProgressRepo"),
	}
}

// Get retrieves the progress record for a reader and book.
func (r *ProgressRepository) Get(ctx context.Context, userID string, bookID int) (*models.Progress, error) {
	query := `
        SELECT current_entry_id, visited_entries, choices, completed_at, updated_at
        FROM user_progress
        WHERE user_id = $1 AND book_id = $2
    `
	logFields := []zap.Field{zap.String("userID", userID), zap.Int("bookID", bookID)}
	r.logger.Debug("Getting progress", logFields...)

	progress := &models.Progress{UserID: userID, BookID: bookID}
	var choicesJSON []byte
	err := r.pool.QueryRow(ctx, query, userID, bookID).Scan(
		&progress.CurrentEntryID,
		&progress.VisitedEntries,
		&choicesJSON,
		&progress.CompletedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("progress for book %d: %w", bookID, models.ErrNotFound)
		}
		r.logger.Error("Failed to get progress", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	if err := json.Unmarshal(choicesJSON, &progress.Choices); err != nil {
		r.logger.Error("Failed to decode choice log", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to decode choices: %w", err)
	}
	if progress.VisitedEntries == nil {
		progress.VisitedEntries = []string{}
	}

	return progress, nil
}

// Save upserts the progress record.
func (r *ProgressRepository) Save(ctx context.Context, progress *models.Progress) error {
	query := `
        INSERT INTO user_progress
            (user_id, book_id, current_entry_id, visited_entries, choices, completed_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id, book_id) DO UPDATE SET
            current_entry_id = EXCLUDED.current_entry_id,
            visited_entries = EXCLUDED.visited_entries,
            choices = EXCLUDED.choices,
            completed_at = EXCLUDED.completed_at,
            updated_at = EXCLUDED.updated_at
    `
	logFields := []zap.Field{
		zap.String("userID", progress.UserID),
		zap.Int("bookID", progress.BookID),
		zap.String("entryID", progress.CurrentEntryID),
	}
	r.logger.Debug("Saving progress", logFields...)

	visited := progress.VisitedEntries
	if visited == nil {
		visited = []string{}
	}
	choices := progress.Choices
	if choices == nil {
		choices = []models.ChoiceRecord{}
	}
	choicesJSON, err := json.Marshal(choices)
	if err != nil {
		return fmt.Errorf("failed to encode choices: %w", err)
	}
	updatedAt := progress.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = r.pool.Exec(ctx, query,
		progress.UserID,
		progress.BookID,
		progress.CurrentEntryID,
		visited,
		choicesJSON,
		progress.CompletedAt,
		updatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save progress", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// Delete removes the progress record.
func (r *ProgressRepository) Delete(ctx context.Context, userID string, bookID int) error {
	logFields := []zap.Field{zap.String("userID", userID), zap.Int("bookID", bookID)}

	tag, err := r.pool.Exec(ctx, `DELETE FROM user_progress WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		r.logger.Error("Failed to delete progress", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	r.logger.Debug("Progress deleted", append(logFields, zap.Int64("rows", tag.RowsAffected()))...)
	return nil
}
