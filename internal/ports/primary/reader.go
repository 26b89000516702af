// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import (
	"context"

	"github.com/example/gamebook/internal/models"
)

// ReaderService defines the primary port for reading sessions.
// One session exists per (userID, bookID).
type ReaderService interface {
	// Load (re)loads the session from the content and progress stores.
	Load(ctx context.Context, userID string, bookID int) (*ReaderState, error)

	// GetState returns the session state, loading it on first access.
	GetState(ctx context.Context, userID string, bookID int) (*ReaderState, error)

	// Choose transitions to the target entry. Unknown targets are ignored.
	Choose(ctx context.Context, req ChooseRequest) (*ReaderState, error)

	// Restart clears progress and returns to the start entry.
	Restart(ctx context.Context, userID string, bookID int) (*ReaderState, error)

	// Close ends the session, clearing progress if the adventure is finished.
	Close(ctx context.Context, userID string, bookID int) error

	// ReportImageLoadFailure stops the session from offering an image again.
	ReportImageLoadFailure(ctx context.Context, userID string, bookID int, imageID string) error

	// GetProgress returns the persisted progress, or nil when there is none.
	GetProgress(ctx context.Context, userID string, bookID int) (*models.Progress, error)
}

// LoadErrorMessage is shown to the reader when a book cannot be opened.
const LoadErrorMessage = "Failed to load the adventure book"

// ChooseRequest contains parameters for making a choice.
type ChooseRequest struct {
	UserID   string
	BookID   int
	TargetID string
	Text     string
}

// ReaderState is what the presentation layer renders.
type ReaderState struct {
	BookID           int             `json:"bookId"`
	Title            string          `json:"title,omitempty"`
	Loading          bool            `json:"loading"`
	Transitioning    bool            `json:"transitioning"`
	Error            string          `json:"error,omitempty"`
	CurrentEntry     *models.Entry   `json:"currentEntry,omitempty"`
	AvailableChoices []models.Choice `json:"availableChoices"`
	ImageURL         string          `json:"imageUrl,omitempty"`
	ImageAltText     string          `json:"imageAltText,omitempty"`
	IsTerminal       bool            `json:"isTerminal"`
}
