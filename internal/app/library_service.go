package app

import (
	"context"
	"fmt"

	"github.com/example/gamebook/internal/core/adventure"
	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/primary"
	"github.com/example/gamebook/internal/ports/secondary"
)

var _ primary.LibraryService = (*LibraryServiceImpl)(nil)

// LibraryServiceImpl implements the LibraryService interface.
type LibraryServiceImpl struct {
	content secondary.ContentStore
}

// NewLibraryService creates a new LibraryService with injected dependencies.
func NewLibraryService(content secondary.ContentStore) *LibraryServiceImpl {
	return &LibraryServiceImpl{content: content}
}

// ListBooks lists available books with their cover URLs.
func (s *LibraryServiceImpl) ListBooks(ctx context.Context) ([]*primary.Book, error) {
	metas, err := s.content.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	books := make([]*primary.Book, len(metas))
	for i, m := range metas {
		books[i] = metadataToBook(m)
	}
	return books, nil
}

// GetBook returns the full content of a book.
func (s *LibraryServiceImpl) GetBook(ctx context.Context, bookID int) (*models.BookContent, error) {
	book, err := s.content.LoadBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", bookID, err)
	}
	return book, nil
}

// ValidateBook reports whether a book can be read and lists non-fatal issues.
func (s *LibraryServiceImpl) ValidateBook(ctx context.Context, bookID int) (*primary.ValidationReport, error) {
	book, err := s.content.LoadBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", bookID, err)
	}

	report := &primary.ValidationReport{BookID: bookID, Valid: true, Warnings: []string{}}
	if guard := adventure.ValidateBook(book); !guard.Allowed {
		report.Valid = false
		report.Fatal = guard.Reason
	}
	for _, issue := range adventure.Lint(book) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", issue.EntryID, issue.Message))
	}
	return report, nil
}

func metadataToBook(m models.BookMetadata) *primary.Book {
	book := &primary.Book{
		ID:      m.ID,
		Title:   m.Title,
		Authors: m.Authors,
		Version: m.Version,
		Status:  m.Status,
	}
	if full := m.CoverImage.Full.Filename; full != "" {
		book.CoverURL = models.ImagePath(m.ID, full)
		thumb := m.CoverImage.Thumb.Filename
		if thumb == "" {
			thumb = models.ThumbnailFilename(full)
		}
		book.ThumbnailURL = models.ImagePath(m.ID, thumb)
	}
	return book
}
