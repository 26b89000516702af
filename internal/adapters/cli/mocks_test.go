package cli

import (
	"context"

	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/primary"
)

// mockReaderService implements primary.ReaderService for testing
type mockReaderService struct {
	getStateFn    func(ctx context.Context, userID string, bookID int) (*primary.ReaderState, error)
	chooseFn      func(ctx context.Context, req primary.ChooseRequest) (*primary.ReaderState, error)
	restartFn     func(ctx context.Context, userID string, bookID int) (*primary.ReaderState, error)
	closeFn       func(ctx context.Context, userID string, bookID int) error
	getProgressFn func(ctx context.Context, userID string, bookID int) (*models.Progress, error)

	// Track calls for verification
	lastChooseReq primary.ChooseRequest
}

func (m *mockReaderService) Load(ctx context.Context, userID string, bookID int) (*primary.ReaderState, error) {
	return m.GetState(ctx, userID, bookID)
}

func (m *mockReaderService) GetState(ctx context.Context, userID string, bookID int) (*primary.ReaderState, error) {
	if m.getStateFn != nil {
		return m.getStateFn(ctx, userID, bookID)
	}
	return &primary.ReaderState{
		BookID: bookID,
		Title:  "The Cave",
		CurrentEntry: &models.Entry{
			ID:   "START",
			Text: []string{"You stand at the mouth of a cave."},
		},
		AvailableChoices: []models.Choice{
			{Text: "Enter", Target: "INSIDE"},
			{Text: "Leave", Target: "END"},
		},
	}, nil
}

func (m *mockReaderService) Choose(ctx context.Context, req primary.ChooseRequest) (*primary.ReaderState, error) {
	m.lastChooseReq = req
	if m.chooseFn != nil {
		return m.chooseFn(ctx, req)
	}
	return &primary.ReaderState{
		BookID:       req.BookID,
		CurrentEntry: &models.Entry{ID: req.TargetID, Text: []string{"It is dark."}},
		IsTerminal:   true,
	}, nil
}

func (m *mockReaderService) Restart(ctx context.Context, userID string, bookID int) (*primary.ReaderState, error) {
	if m.restartFn != nil {
		return m.restartFn(ctx, userID, bookID)
	}
	return m.GetState(ctx, userID, bookID)
}

func (m *mockReaderService) Close(ctx context.Context, userID string, bookID int) error {
	if m.closeFn != nil {
		return m.closeFn(ctx, userID, bookID)
	}
	return nil
}

func (m *mockReaderService) ReportImageLoadFailure(ctx context.Context, userID string, bookID int, imageID string) error {
	return nil
}

func (m *mockReaderService) GetProgress(ctx context.Context, userID string, bookID int) (*models.Progress, error) {
	if m.getProgressFn != nil {
		return m.getProgressFn(ctx, userID, bookID)
	}
	return nil, nil
}

// mockLibraryService implements primary.LibraryService for testing
type mockLibraryService struct {
	listBooksFn    func(ctx context.Context) ([]*primary.Book, error)
	validateBookFn func(ctx context.Context, bookID int) (*primary.ValidationReport, error)
}

func (m *mockLibraryService) ListBooks(ctx context.Context) ([]*primary.Book, error) {
	if m.listBooksFn != nil {
		return m.listBooksFn(ctx)
	}
	return []*primary.Book{}, nil
}

func (m *mockLibraryService) GetBook(ctx context.Context, bookID int) (*models.BookContent, error) {
	return nil, models.ErrNotFound
}

func (m *mockLibraryService) ValidateBook(ctx context.Context, bookID int) (*primary.ValidationReport, error) {
	if m.validateBookFn != nil {
		return m.validateBookFn(ctx, bookID)
	}
	return &primary.ValidationReport{BookID: bookID, Valid: true, Warnings: []string{}}, nil
}
