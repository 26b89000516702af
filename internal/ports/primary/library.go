package primary

import (
	"context"

	"github.com/example/gamebook/internal/models"
)

// LibraryService defines the primary port for browsing books.
type LibraryService interface {
	// ListBooks lists the books available to read.
	ListBooks(ctx context.Context) ([]*Book, error)

	// GetBook returns the full content of a book.
	GetBook(ctx context.Context, bookID int) (*models.BookContent, error)

	// ValidateBook checks a book's content and reports problems.
	ValidateBook(ctx context.Context, bookID int) (*ValidationReport, error)
}

// Book is a library listing entry.
type Book struct {
	ID           int               `json:"id"`
	Title        string            `json:"title"`
	Authors      []string          `json:"authors"`
	Version      string            `json:"version"`
	Status       models.BookStatus `json:"status"`
	CoverURL     string            `json:"coverUrl,omitempty"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
}

// ValidationReport is the result of checking a book's content.
type ValidationReport struct {
	BookID   int      `json:"bookId"`
	Valid    bool     `json:"valid"`
	Fatal    string   `json:"fatal,omitempty"`
	Warnings []string `json:"warnings"`
}
