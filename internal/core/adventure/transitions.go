package adventure

import (
	"slices"
	"time"

	"github.com/example/gamebook/internal/models"
)

// Phase is the lifecycle state of a reading session.
type Phase string

const (
	PhaseLoading       Phase = "loading"
	PhaseReady         Phase = "ready"
	PhaseTransitioning Phase = "transitioning"
	PhaseFailed        Phase = "failed"
)

// ProgressUpdate describes one write to a reader's progress.
type ProgressUpdate struct {
	CurrentEntryID string
	Choice         *models.ChoiceRecord // nil when no choice was made (restart, close)
	IsEnd          bool
}

// ApplyProgressUpdate merges upd into existing and returns the new record.
// This is a pure function that captures the business rules:
// - The current entry and the choice's source entry join the visited set.
// - A choice is appended to the log, never replacing earlier ones.
// - CompletedAt is stamped the first time a terminal entry is reached and never moved.
// existing is not modified. The caller passes now to enable testing.
func ApplyProgressUpdate(existing *models.Progress, userID string, bookID int, upd ProgressUpdate, now time.Time) *models.Progress {
	next := &models.Progress{
		UserID:         userID,
		BookID:         bookID,
		VisitedEntries: []string{},
		Choices:        []models.ChoiceRecord{},
	}
	if existing != nil {
		next.VisitedEntries = append(next.VisitedEntries, existing.VisitedEntries...)
		next.Choices = append(next.Choices, existing.Choices...)
		if existing.CompletedAt != nil {
			completed := *existing.CompletedAt
			next.CompletedAt = &completed
		}
	}

	next.CurrentEntryID = upd.CurrentEntryID
	if upd.Choice != nil {
		next.VisitedEntries = addVisited(next.VisitedEntries, upd.Choice.EntryID)
		next.Choices = append(next.Choices, *upd.Choice)
	}
	next.VisitedEntries = addVisited(next.VisitedEntries, upd.CurrentEntryID)

	if upd.IsEnd && next.CompletedAt == nil {
		completed := now
		next.CompletedAt = &completed
	}
	next.UpdatedAt = now

	return next
}

// InitialProgress returns the record written when an adventure (re)starts.
func InitialProgress(userID string, bookID int, now time.Time) *models.Progress {
	return ApplyProgressUpdate(nil, userID, bookID, ProgressUpdate{CurrentEntryID: models.StartEntryID}, now)
}

func addVisited(visited []string, id string) []string {
	if id == "" || slices.Contains(visited, id) {
		return visited
	}
	return append(visited, id)
}
