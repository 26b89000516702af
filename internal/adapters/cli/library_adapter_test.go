package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/gamebook/internal/ports/primary"
)

func TestLibraryAdapter_ListEmpty(t *testing.T) {
	var out bytes.Buffer
	adapter := NewLibraryAdapter(&mockLibraryService{}, &out)

	books, err := adapter.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(books) != 0 {
		t.Errorf("List() = %d books, want 0", len(books))
	}
	if !strings.Contains(out.String(), "No books found.") {
		t.Errorf("List() output = %q", out.String())
	}
}

func TestLibraryAdapter_List(t *testing.T) {
	var out bytes.Buffer
	mock := &mockLibraryService{
		listBooksFn: func(ctx context.Context) ([]*primary.Book, error) {
			return []*primary.Book{
				{ID: 1, Title: "The Cave", Authors: []string{"A. Writer", "B. Helper"}, Version: "1.0.0", Status: "published"},
			}, nil
		},
	}
	adapter := NewLibraryAdapter(mock, &out)

	if _, err := adapter.List(context.Background()); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	output := out.String()
	for _, want := range []string{"TITLE", "The Cave", "A. Writer, B. Helper", "published"} {
		if !strings.Contains(output, want) {
			t.Errorf("List() output missing %q:\n%s", want, output)
		}
	}
}

func TestLibraryAdapter_ListError(t *testing.T) {
	mock := &mockLibraryService{
		listBooksFn: func(ctx context.Context) ([]*primary.Book, error) {
			return nil, errors.New("disk gone")
		},
	}
	adapter := NewLibraryAdapter(mock, &bytes.Buffer{})

	if _, err := adapter.List(context.Background()); err == nil {
		t.Error("List() expected error")
	}
}

func TestLibraryAdapter_Validate(t *testing.T) {
	var out bytes.Buffer
	mock := &mockLibraryService{
		validateBookFn: func(ctx context.Context, bookID int) (*primary.ValidationReport, error) {
			return &primary.ValidationReport{
				BookID:   bookID,
				Valid:    false,
				Fatal:    "book 4 has no START entry",
				Warnings: []string{"A: choice target B does not exist"},
			}, nil
		},
	}
	adapter := NewLibraryAdapter(mock, &out)

	report, err := adapter.Validate(context.Background(), 4)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if report.Valid {
		t.Error("Validate() Valid = true, want false")
	}
	output := out.String()
	for _, want := range []string{"INVALID", "no START entry", "warning:", "target B"} {
		if !strings.Contains(output, want) {
			t.Errorf("Validate() output missing %q:\n%s", want, output)
		}
	}
}
