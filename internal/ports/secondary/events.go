package secondary

import (
	"context"
	"time"
)

// ProgressEventType names a reading session transition.
type ProgressEventType string

const (
	EventChoiceMade         ProgressEventType = "choice_made"
	EventAdventureCompleted ProgressEventType = "adventure_completed"
	EventAdventureRestarted ProgressEventType = "adventure_restarted"
	EventAdventureClosed    ProgressEventType = "adventure_closed"
)

// ProgressEvent is emitted after a transition has been persisted.
type ProgressEvent struct {
	ID         string            `json:"id"`
	Type       ProgressEventType `json:"type"`
	UserID     string            `json:"user_id"`
	BookID     int               `json:"book_id"`
	EntryID    string            `json:"entry_id"`
	TargetID   string            `json:"target_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// EventPublisher defines the secondary port for broadcasting progress events.
type EventPublisher interface {
	// PublishProgressEvent delivers one event. Failures are reported, not retried.
	PublishProgressEvent(ctx context.Context, event ProgressEvent) error
}
