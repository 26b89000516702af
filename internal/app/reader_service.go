package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/primary"
	"github.com/example/gamebook/internal/ports/secondary"
)

var _ primary.ReaderService = (*ReaderServiceImpl)(nil)

type sessionKey struct {
	userID string
	bookID int
}

// ReaderServiceImpl implements the ReaderService interface.
// It keeps one Controller, and therefore one visibility manager, per session.
type ReaderServiceImpl struct {
	content  secondary.ContentStore
	progress *ProgressTracker
	events   secondary.EventPublisher
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[sessionKey]*Controller
}

// NewReaderService creates a new ReaderService with injected dependencies.
func NewReaderService(
	content secondary.ContentStore,
	progress *ProgressTracker,
	events secondary.EventPublisher,
	logger *zap.Logger,
) *ReaderServiceImpl {
	return &ReaderServiceImpl{
		content:  content,
		progress: progress,
		events:   events,
		logger:   logger,
		sessions: make(map[sessionKey]*Controller),
	}
}

// session returns the controller for a key and whether it was just created.
func (s *ReaderServiceImpl) session(userID string, bookID int) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey{userID: userID, bookID: bookID}
	if c, ok := s.sessions[key]; ok {
		return c, false
	}
	c := NewController(userID, bookID, s.content, s.progress, s.events, s.logger)
	s.sessions[key] = c
	return c, true
}

func (s *ReaderServiceImpl) existing(userID string, bookID int) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[sessionKey{userID: userID, bookID: bookID}]
	if !ok {
		return nil, models.ErrSessionNotLoaded
	}
	return c, nil
}

// loaded returns a ready session, loading it on first access and
// retrying the load when the previous attempt failed.
func (s *ReaderServiceImpl) loaded(ctx context.Context, userID string, bookID int) (*Controller, error) {
	c, created := s.session(userID, bookID)
	if created || c.Failed() {
		if err := c.Load(ctx); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Load (re)loads a session from the stores.
func (s *ReaderServiceImpl) Load(ctx context.Context, userID string, bookID int) (*primary.ReaderState, error) {
	c, _ := s.session(userID, bookID)
	if err := c.Load(ctx); err != nil {
		return c.State(), err
	}
	return c.State(), nil
}

// GetState returns the session state. A load failure is reported in the
// state's Error field rather than as an error.
func (s *ReaderServiceImpl) GetState(ctx context.Context, userID string, bookID int) (*primary.ReaderState, error) {
	c, _ := s.loaded(ctx, userID, bookID)
	return c.State(), nil
}

// Choose transitions the session to req.TargetID.
func (s *ReaderServiceImpl) Choose(ctx context.Context, req primary.ChooseRequest) (*primary.ReaderState, error) {
	c, err := s.loaded(ctx, req.UserID, req.BookID)
	if err != nil {
		return c.State(), err
	}
	if err := c.Choose(ctx, req.TargetID, req.Text); err != nil {
		return c.State(), fmt.Errorf("failed to choose %s: %w", req.TargetID, err)
	}
	return c.State(), nil
}

// Restart returns the session to the start entry with fresh progress.
func (s *ReaderServiceImpl) Restart(ctx context.Context, userID string, bookID int) (*primary.ReaderState, error) {
	c, err := s.loaded(ctx, userID, bookID)
	if err != nil {
		return c.State(), err
	}
	if err := c.Restart(ctx); err != nil {
		return c.State(), fmt.Errorf("failed to restart: %w", err)
	}
	return c.State(), nil
}

// Close ends the session and forgets it.
func (s *ReaderServiceImpl) Close(ctx context.Context, userID string, bookID int) error {
	c, err := s.loaded(ctx, userID, bookID)
	if err != nil {
		s.forget(userID, bookID)
		return err
	}
	if err := c.Close(ctx); err != nil {
		if c.Failed() {
			s.forget(userID, bookID)
		}
		return fmt.Errorf("failed to close: %w", err)
	}
	s.forget(userID, bookID)
	return nil
}

func (s *ReaderServiceImpl) forget(userID string, bookID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey{userID: userID, bookID: bookID})
}

// ReportImageLoadFailure suppresses an image for an existing session.
func (s *ReaderServiceImpl) ReportImageLoadFailure(ctx context.Context, userID string, bookID int, imageID string) error {
	c, err := s.existing(userID, bookID)
	if err != nil {
		return err
	}
	c.ReportImageLoadFailure(imageID)
	return nil
}

// GetProgress returns the persisted progress for a reader and book.
func (s *ReaderServiceImpl) GetProgress(ctx context.Context, userID string, bookID int) (*models.Progress, error) {
	return s.progress.GetProgress(ctx, userID, bookID), nil
}
