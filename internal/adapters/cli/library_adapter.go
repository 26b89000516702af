// Package cli adapts the primary ports to terminal output.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/gamebook/internal/ports/primary"
)

// LibraryAdapter is a thin adapter that translates CLI operations to LibraryService calls.
type LibraryAdapter struct {
	service primary.LibraryService
	out     io.Writer
}

// NewLibraryAdapter creates a new LibraryAdapter with the given service.
func NewLibraryAdapter(service primary.LibraryService, out io.Writer) *LibraryAdapter {
	return &LibraryAdapter{
		service: service,
		out:     out,
	}
}

// List prints the books in the library.
func (a *LibraryAdapter) List(ctx context.Context) ([]*primary.Book, error) {
	books, err := a.service.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	if len(books) == 0 {
		fmt.Fprintln(a.out, "No books found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Point GAMEBOOK_BOOKS_DIR at a directory of book-XXXXXXXX folders.")
		return books, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHORS\tVERSION\tSTATUS")
	fmt.Fprintln(w, "--\t-----\t-------\t-------\t------")
	for _, b := range books {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			b.ID,
			b.Title,
			strings.Join(b.Authors, ", "),
			b.Version,
			b.Status,
		)
	}
	w.Flush()
	return books, nil
}

// Validate prints a validation report for a book.
func (a *LibraryAdapter) Validate(ctx context.Context, bookID int) (*primary.ValidationReport, error) {
	report, err := a.service.ValidateBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate book %d: %w", bookID, err)
	}

	if report.Valid {
		fmt.Fprintf(a.out, "%s book %d\n", color.New(color.FgGreen).Sprint("VALID"), bookID)
	} else {
		fmt.Fprintf(a.out, "%s book %d: %s\n", color.New(color.FgRed).Sprint("INVALID"), bookID, report.Fatal)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(a.out, "  %s %s\n", color.New(color.FgYellow).Sprint("warning:"), w)
	}
	return report, nil
}
