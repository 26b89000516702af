package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/gamebook/internal/models"
)

func TestLibraryService_ListBooks(t *testing.T) {
	book := linearBook()
	book.Metadata.CoverImage = models.CoverImage{Full: models.ImageMetadata{Filename: "cover.jpg"}}
	svc := NewLibraryService(newMockContentStore(book, gatedBook()))

	books, err := svc.ListBooks(context.Background())
	if err != nil {
		t.Fatalf("ListBooks() error = %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("len(books) = %d, want 2", len(books))
	}
	if books[0].ID != 1 || books[0].Title != "Linear" {
		t.Errorf("books[0] = %+v", books[0])
	}
	if books[0].CoverURL != "/books/book-00000001/images/cover.jpg" {
		t.Errorf("CoverURL = %q", books[0].CoverURL)
	}
	if books[0].ThumbnailURL != "/books/book-00000001/images/cover-thumb.jpg" {
		t.Errorf("ThumbnailURL = %q", books[0].ThumbnailURL)
	}
	if books[1].CoverURL != "" {
		t.Errorf("book without cover should have no CoverURL, got %q", books[1].CoverURL)
	}
}

func TestLibraryService_ListBooks_Error(t *testing.T) {
	content := newMockContentStore()
	content.listErr = errors.New("bucket gone")
	svc := NewLibraryService(content)

	if _, err := svc.ListBooks(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestLibraryService_GetBook_NotFound(t *testing.T) {
	svc := NewLibraryService(newMockContentStore())

	_, err := svc.GetBook(context.Background(), 99)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetBook() error = %v, want ErrNotFound", err)
	}
}

func TestLibraryService_ValidateBook(t *testing.T) {
	broken := &models.BookContent{
		Metadata: models.BookMetadata{ID: 7},
		Entries: map[string]models.Entry{
			"INTRO": {ID: "INTRO", Choices: []models.Choice{{Text: "x", Target: "NOWHERE"}}},
		},
	}
	svc := NewLibraryService(newMockContentStore(linearBook(), broken))

	ok, err := svc.ValidateBook(context.Background(), 1)
	if err != nil {
		t.Fatalf("ValidateBook() error = %v", err)
	}
	if !ok.Valid || len(ok.Warnings) != 0 {
		t.Errorf("report = %+v, want valid without warnings", ok)
	}

	bad, err := svc.ValidateBook(context.Background(), 7)
	if err != nil {
		t.Fatalf("ValidateBook() error = %v", err)
	}
	if bad.Valid || bad.Fatal != "book 7 has no START entry" {
		t.Errorf("report = %+v", bad)
	}
	if len(bad.Warnings) != 1 {
		t.Errorf("Warnings = %v, want 1", bad.Warnings)
	}
}
