package app

import (
	"context"

	"github.com/example/gamebook/internal/ports/secondary"
)

var _ secondary.EventPublisher = NoopPublisher{}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

// PublishProgressEvent does nothing.
func (NoopPublisher) PublishProgressEvent(ctx context.Context, event secondary.ProgressEvent) error {
	return nil
}
