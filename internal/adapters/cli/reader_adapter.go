package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/primary"
)

// ErrUnknownSelection is returned when a selection matches no offered choice.
var ErrUnknownSelection = errors.New("no such choice")

// ReaderAdapter is a thin adapter that translates CLI operations to ReaderService calls.
type ReaderAdapter struct {
	service primary.ReaderService
	out     io.Writer
}

// NewReaderAdapter creates a new ReaderAdapter with the given service.
func NewReaderAdapter(service primary.ReaderService, out io.Writer) *ReaderAdapter {
	return &ReaderAdapter{
		service: service,
		out:     out,
	}
}

// Show prints the current entry of a reading session.
func (a *ReaderAdapter) Show(ctx context.Context, userID string, bookID int) (*primary.ReaderState, error) {
	state, err := a.service.GetState(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to open book %d: %w", bookID, err)
	}
	a.render(state)
	return state, nil
}

// Choose follows the choice named by selection, either its 1-based number or its target id.
func (a *ReaderAdapter) Choose(ctx context.Context, userID string, bookID int, selection string) (*primary.ReaderState, error) {
	state, err := a.service.GetState(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to open book %d: %w", bookID, err)
	}
	if state.Error != "" {
		a.render(state)
		return state, nil
	}

	choice, err := ResolveSelection(state.AvailableChoices, selection)
	if err != nil {
		return nil, err
	}

	state, err = a.service.Choose(ctx, primary.ChooseRequest{
		UserID:   userID,
		BookID:   bookID,
		TargetID: choice.Target,
		Text:     choice.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to choose %q: %w", choice.Text, err)
	}
	a.render(state)
	return state, nil
}

// ResolveSelection finds the offered choice matching a number or target id.
func ResolveSelection(choices []models.Choice, selection string) (models.Choice, error) {
	if n, err := strconv.Atoi(selection); err == nil {
		if n >= 1 && n <= len(choices) {
			return choices[n-1], nil
		}
		return models.Choice{}, fmt.Errorf("%w: %d (have %d)", ErrUnknownSelection, n, len(choices))
	}
	for _, c := range choices {
		if c.Target == selection {
			return c, nil
		}
	}
	return models.Choice{}, fmt.Errorf("%w: %q", ErrUnknownSelection, selection)
}

// Restart clears progress and prints the start entry.
func (a *ReaderAdapter) Restart(ctx context.Context, userID string, bookID int) (*primary.ReaderState, error) {
	state, err := a.service.Restart(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to restart book %d: %w", bookID, err)
	}
	fmt.Fprintln(a.out, "✓ Adventure restarted")
	fmt.Fprintln(a.out)
	a.render(state)
	return state, nil
}

// Close ends the session.
func (a *ReaderAdapter) Close(ctx context.Context, userID string, bookID int) error {
	if err := a.service.Close(ctx, userID, bookID); err != nil {
		return fmt.Errorf("failed to close book %d: %w", bookID, err)
	}
	fmt.Fprintf(a.out, "✓ Closed book %d\n", bookID)
	return nil
}

// Progress prints the persisted progress of a reader in a book.
func (a *ReaderAdapter) Progress(ctx context.Context, userID string, bookID int) (*models.Progress, error) {
	p, err := a.service.GetProgress(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	if p == nil {
		fmt.Fprintf(a.out, "No progress for book %d.\n", bookID)
		return nil, nil
	}

	fmt.Fprintf(a.out, "\nBook:     %d\n", p.BookID)
	fmt.Fprintf(a.out, "Entry:    %s\n", p.CurrentEntryID)
	fmt.Fprintf(a.out, "Visited:  %d entries\n", len(p.VisitedEntries))
	fmt.Fprintf(a.out, "Choices:  %d\n", len(p.Choices))
	if p.IsCompleted() {
		fmt.Fprintf(a.out, "Finished: %s\n", p.CompletedAt.Format("2006-01-02 15:04"))
	}
	if !p.UpdatedAt.IsZero() {
		fmt.Fprintf(a.out, "Updated:  %s\n", p.UpdatedAt.Format("2006-01-02 15:04"))
	}
	for i, c := range p.Choices {
		fmt.Fprintf(a.out, "  %2d. %s -> %s\n", i+1, c.EntryID, c.TargetID)
	}
	fmt.Fprintln(a.out)
	return p, nil
}

func (a *ReaderAdapter) render(state *primary.ReaderState) {
	if state.Error != "" {
		fmt.Fprintln(a.out, color.New(color.FgRed).Sprint(state.Error))
		return
	}
	if state.Title != "" {
		fmt.Fprintln(a.out, color.New(color.Bold).Sprint(state.Title))
		fmt.Fprintln(a.out)
	}
	if state.CurrentEntry == nil {
		return
	}

	for _, para := range state.CurrentEntry.Text {
		fmt.Fprintln(a.out, para)
		fmt.Fprintln(a.out)
	}
	if state.ImageURL != "" {
		fmt.Fprintf(a.out, "[image: %s] %s\n\n", state.ImageAltText, color.New(color.Faint).Sprint(state.ImageURL))
	}

	if state.IsTerminal {
		fmt.Fprintln(a.out, color.New(color.FgMagenta, color.Bold).Sprint("THE END"))
		return
	}
	if len(state.AvailableChoices) == 0 {
		fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint("No choices are available from here."))
		return
	}
	for i, c := range state.AvailableChoices {
		fmt.Fprintf(a.out, "  %s %s\n", color.New(color.FgCyan).Sprintf("%d)", i+1), c.Text)
	}
}
