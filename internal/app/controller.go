package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/gamebook/internal/core/adventure"
	"github.com/example/gamebook/internal/core/visibility"
	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/primary"
	"github.com/example/gamebook/internal/ports/secondary"
)

// Controller orchestrates one reading session for a (user, book) pair.
//
// Transitions (Load, Choose, Restart, Close) are serialised by an optimistic
// lock: a transition that arrives while another is in flight fails with
// models.ErrTransitionInProgress. In-memory state only changes after the
// corresponding progress write has succeeded.
type Controller struct {
	userID string
	bookID int

	content  secondary.ContentStore
	progress *ProgressTracker
	events   secondary.EventPublisher
	logger   *zap.Logger
	now      func() time.Time

	transitioning atomic.Bool

	mu           sync.RWMutex
	phase        adventure.Phase
	loadErr      error
	book         *models.BookContent
	currentID    string
	current      models.Entry
	lastChosen   string
	available    []models.Choice
	vm           *visibility.Manager
	snapshot     *models.Progress
	failedImages map[string]struct{}
}

// NewController creates a Controller. Call Load before anything else.
func NewController(
	userID string,
	bookID int,
	content secondary.ContentStore,
	progress *ProgressTracker,
	events secondary.EventPublisher,
	logger *zap.Logger,
) *Controller {
	if events == nil {
		events = NoopPublisher{}
	}
	return &Controller{
		userID:       userID,
		bookID:       bookID,
		content:      content,
		progress:     progress,
		events:       events,
		logger:       logger.Named("Controller").With(zap.String("userID", userID), zap.Int("bookID", bookID)),
		now:          time.Now,
		phase:        adventure.PhaseLoading,
		vm:           visibility.NewManager(),
		failedImages: make(map[string]struct{}),
	}
}

func (c *Controller) begin() error {
	if !c.transitioning.CompareAndSwap(false, true) {
		return models.ErrTransitionInProgress
	}
	return nil
}

func (c *Controller) end() {
	c.transitioning.Store(false)
}

// Load fetches the book and the reader's progress and resolves the current entry.
// Content failures leave the session in the failed phase and return an error
// wrapping models.ErrContentLoad.
func (c *Controller) Load(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.Lock()
	c.phase = adventure.PhaseLoading
	c.loadErr = nil
	c.mu.Unlock()

	book, err := c.content.LoadBook(ctx, c.bookID)
	if err != nil {
		return c.fail(err)
	}
	if guard := adventure.ValidateBook(book); !guard.Allowed {
		return c.fail(fmt.Errorf("%w: %s", models.ErrInvalidBook, guard.Reason))
	}

	progress := c.progress.GetProgress(ctx, c.userID, c.bookID)
	if err := adventure.CanResume(adventure.ResumeContext{Book: book, Progress: progress}).Error(); err != nil {
		return c.fail(err)
	}

	vm := visibility.NewManager()
	currentID := models.StartEntryID
	lastChosen := ""
	if progress != nil {
		currentID = progress.CurrentEntryID
		vm.InitializeVisitedEntries(progress.VisitedEntries)
		if last, ok := progress.LastChoice(); ok {
			lastChosen = last.TargetID
			for _, choice := range book.Entries[currentID].Choices {
				vm.EvaluateVisibility(choice, lastChosen)
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.book = book
	c.vm = vm
	c.snapshot = progress
	c.lastChosen = lastChosen
	c.enterLocked(currentID)
	c.phase = adventure.PhaseReady

	c.logger.Info("Session loaded", zap.String("entryID", currentID), zap.Bool("resumed", progress != nil))
	return nil
}

func (c *Controller) fail(cause error) error {
	err := fmt.Errorf("%w: %w", models.ErrContentLoad, cause)
	c.logger.Error("Failed to load book", zap.Error(cause))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = adventure.PhaseFailed
	c.loadErr = err
	c.book = nil
	c.available = nil
	return err
}

// enterLocked makes the entry stored under key current and recomputes its
// available choices. The entry's ID is normalised to its key, which is what
// progress records and the choice log refer to. Callers must hold c.mu.
func (c *Controller) enterLocked(key string) {
	entry := c.book.Entries[key]
	entry.ID = key
	c.currentID = key
	c.current = entry
	c.available = adventure.ComputeAvailableChoices(entry, c.snapshot, c.vm, c.lastChosen)
}

// readyLocked returns an error unless the session has a loaded book.
func (c *Controller) readyLocked() error {
	if c.phase == adventure.PhaseFailed {
		return c.loadErr
	}
	if c.book == nil {
		return models.ErrSessionNotLoaded
	}
	return nil
}

// Choose moves the session to targetID. Unknown targets are ignored and
// return nil. Persistence errors are returned and leave the session unchanged.
func (c *Controller) Choose(ctx context.Context, targetID, text string) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.RLock()
	if err := c.readyLocked(); err != nil {
		c.mu.RUnlock()
		return err
	}
	book := c.book
	source := c.current
	sourceID := c.currentID
	c.mu.RUnlock()

	if guard := adventure.CanChoose(adventure.ChooseContext{Book: book, TargetID: targetID}); !guard.Allowed {
		c.logger.Debug("Ignoring invalid choice",
			zap.String("targetID", targetID),
			zap.Error(fmt.Errorf("%w: %s", models.ErrInvalidChoice, guard.Reason)))
		return nil
	}
	target := book.Entries[targetID]

	chosen := models.Choice{Text: text, Target: targetID}
	for _, choice := range source.Choices {
		if choice.Target == targetID {
			chosen = choice
			break
		}
	}

	now := c.now()
	saved, err := c.progress.UpdateProgress(ctx, c.userID, c.bookID, adventure.ProgressUpdate{
		CurrentEntryID: targetID,
		Choice:         &models.ChoiceRecord{EntryID: sourceID, TargetID: targetID, Timestamp: now},
		IsEnd:          target.IsTerminal(),
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.vm.AddVisitedEntry(sourceID)
	c.vm.EvaluateVisibility(chosen, targetID)
	c.lastChosen = targetID
	c.snapshot = saved
	c.enterLocked(targetID)
	c.mu.Unlock()

	c.logger.Debug("Choice made", zap.String("from", sourceID), zap.String("to", targetID))
	c.publish(ctx, secondary.EventChoiceMade, sourceID, targetID, now)
	if target.IsTerminal() {
		c.publish(ctx, secondary.EventAdventureCompleted, targetID, "", now)
	}
	return nil
}

// Restart clears the reader's progress and returns to the start entry,
// writing a fresh record with an empty choice log.
func (c *Controller) Restart(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.RLock()
	if err := c.readyLocked(); err != nil {
		c.mu.RUnlock()
		return err
	}
	c.mu.RUnlock()

	if err := c.progress.ClearProgress(ctx, c.userID, c.bookID); err != nil {
		return err
	}

	// The stored record is gone, so memory must not keep the old run.
	c.mu.Lock()
	c.vm.ResetState()
	c.lastChosen = ""
	c.snapshot = nil
	c.enterLocked(models.StartEntryID)
	c.mu.Unlock()

	saved, err := c.progress.UpdateProgress(ctx, c.userID, c.bookID, adventure.ProgressUpdate{
		CurrentEntryID: models.StartEntryID,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.snapshot = saved
	c.enterLocked(models.StartEntryID)
	c.mu.Unlock()

	c.logger.Info("Adventure restarted")
	c.publish(ctx, secondary.EventAdventureRestarted, models.StartEntryID, "", c.now())
	return nil
}

// Close ends the session. At a terminal entry the progress is cleared;
// otherwise the current position is saved if the reader has any progress.
func (c *Controller) Close(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.RLock()
	if err := c.readyLocked(); err != nil {
		c.mu.RUnlock()
		return err
	}
	current := c.current
	currentID := c.currentID
	hasProgress := c.snapshot != nil
	c.mu.RUnlock()

	switch {
	case current.IsTerminal():
		if err := c.progress.ClearProgress(ctx, c.userID, c.bookID); err != nil {
			return err
		}
	case hasProgress:
		if _, err := c.progress.UpdateProgress(ctx, c.userID, c.bookID, adventure.ProgressUpdate{
			CurrentEntryID: currentID,
		}); err != nil {
			return err
		}
	}

	c.logger.Info("Session closed", zap.String("entryID", currentID), zap.Bool("finished", current.IsTerminal()))
	c.publish(ctx, secondary.EventAdventureClosed, currentID, "", c.now())
	return nil
}

// Failed reports whether the last Load failed.
func (c *Controller) Failed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase == adventure.PhaseFailed
}

// ReportImageLoadFailure hides imageID for the rest of the session.
func (c *Controller) ReportImageLoadFailure(imageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failedImages[imageID] = struct{}{}
}

// State returns a snapshot of the session for rendering.
func (c *Controller) State() *primary.ReaderState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	state := &primary.ReaderState{
		BookID:           c.bookID,
		Loading:          c.phase == adventure.PhaseLoading,
		Transitioning:    c.transitioning.Load() && c.phase == adventure.PhaseReady,
		AvailableChoices: []models.Choice{},
	}
	if c.phase == adventure.PhaseFailed {
		state.Error = primary.LoadErrorMessage
		return state
	}
	if c.book == nil {
		return state
	}

	current := c.current
	state.Title = c.book.Metadata.Title
	state.CurrentEntry = &current
	state.AvailableChoices = append(state.AvailableChoices, c.available...)
	state.IsTerminal = current.IsTerminal()
	if img, ok := c.imageLocked(current.ImageID); ok {
		state.ImageURL = models.ImagePath(c.bookID, img.Filename)
		state.ImageAltText = img.AltText
	}
	return state
}

func (c *Controller) imageLocked(imageID string) (models.ImageMetadata, bool) {
	if imageID == "" {
		return models.ImageMetadata{}, false
	}
	if _, failed := c.failedImages[imageID]; failed {
		return models.ImageMetadata{}, false
	}
	img, ok := c.book.Images[imageID]
	return img, ok
}

// HasVisited reports whether the session has visited entryID.
func (c *Controller) HasVisited(entryID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vm.HasVisitedEntry(entryID)
}

func (c *Controller) publish(ctx context.Context, typ secondary.ProgressEventType, entryID, targetID string, at time.Time) {
	event := secondary.ProgressEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     c.userID,
		BookID:     c.bookID,
		EntryID:    entryID,
		TargetID:   targetID,
		OccurredAt: at,
	}
	if err := c.events.PublishProgressEvent(ctx, event); err != nil {
		c.logger.Warn("Failed to publish progress event", zap.String("type", string(typ)), zap.Error(err))
	}
}
