package secondary

import (
	"context"

	"github.com/example/gamebook/internal/models"
)

// ContentStore defines the secondary port for reading book content.
type ContentStore interface {
	// LoadBook returns the metadata, entries and image catalog of a book.
	// Returns models.ErrNotFound when the book does not exist.
	LoadBook(ctx context.Context, bookID int) (*models.BookContent, error)

	// ListBooks returns the metadata of every available book, ordered by id.
	ListBooks(ctx context.Context) ([]models.BookMetadata, error)
}
