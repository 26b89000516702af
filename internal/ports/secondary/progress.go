// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"

	"github.com/example/gamebook/internal/models"
)

// ProgressRepository defines the secondary port for reader progress persistence.
// Records are keyed by (userID, bookID); writes are last-write-wins upserts.
type ProgressRepository interface {
	// Get retrieves the progress record, or models.ErrNotFound if none exists.
	Get(ctx context.Context, userID string, bookID int) (*models.Progress, error)

	// Save creates or replaces the progress record.
	Save(ctx context.Context, progress *models.Progress) error

	// Delete removes the progress record. Deleting a missing record is not an error.
	Delete(ctx context.Context, userID string, bookID int) error
}
