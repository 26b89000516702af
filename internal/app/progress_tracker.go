// Package app contains the application layer - reading sessions and the
// services that drive them.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/gamebook/internal/core/adventure"
	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/secondary"
)

// ProgressTracker applies progress merge rules on top of a ProgressRepository.
type ProgressTracker struct {
	repo   secondary.ProgressRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewProgressTracker creates a ProgressTracker with injected dependencies.
func NewProgressTracker(repo secondary.ProgressRepository, logger *zap.Logger) *ProgressTracker {
	return &ProgressTracker{
		repo:   repo,
		logger: logger.Named("ProgressTracker"),
		now:    time.Now,
	}
}

// GetProgress returns the reader's progress, or nil when there is none.
// Read failures are logged and treated as no progress.
func (t *ProgressTracker) GetProgress(ctx context.Context, userID string, bookID int) *models.Progress {
	progress, err := t.repo.Get(ctx, userID, bookID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			t.logger.Warn("Failed to read progress, starting fresh",
				zap.String("userID", userID), zap.Int("bookID", bookID), zap.Error(err))
		}
		return nil
	}
	return progress
}

// UpdateProgress merges upd into the stored record and saves it.
// Unlike GetProgress, a failed read here is returned so that the merge never
// overwrites history it could not see.
func (t *ProgressTracker) UpdateProgress(ctx context.Context, userID string, bookID int, upd adventure.ProgressUpdate) (*models.Progress, error) {
	logFields := []zap.Field{zap.String("userID", userID), zap.Int("bookID", bookID), zap.String("entryID", upd.CurrentEntryID)}

	existing, err := t.repo.Get(ctx, userID, bookID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		t.logger.Error("Failed to read progress before update", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("%w: %w", models.ErrPersistence, err)
	}

	next := adventure.ApplyProgressUpdate(existing, userID, bookID, upd, t.now())
	if err := t.repo.Save(ctx, next); err != nil {
		t.logger.Error("Failed to save progress", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("%w: %w", models.ErrPersistence, err)
	}

	t.logger.Debug("Progress saved", logFields...)
	return next, nil
}

// ClearProgress deletes the reader's progress for a book.
func (t *ProgressTracker) ClearProgress(ctx context.Context, userID string, bookID int) error {
	if err := t.repo.Delete(ctx, userID, bookID); err != nil {
		t.logger.Error("Failed to clear progress",
			zap.String("userID", userID), zap.Int("bookID", bookID), zap.Error(err))
		return fmt.Errorf("%w: %w", models.ErrPersistence, err)
	}
	return nil
}
