// Package amqp publishes progress events to a RabbitMQ queue.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/gamebook/internal/ports/secondary"
)

// Channel is the subset of *amqp091.Channel the publisher needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

var _ secondary.EventPublisher = (*Publisher)(nil)

// Publisher implements secondary.EventPublisher over a durable queue.
type Publisher struct {
	mu     sync.Mutex
	ch     Channel
	conn   *amqp091.Connection
	queue  string
	logger *zap.Logger
}

// Dial connects to url and returns a publisher bound to queue.
func Dial(url, queue string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	p, err := NewPublisher(ch, queue, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares queue on ch and returns a publisher for it.
func NewPublisher(ch Channel, queue string, logger *zap.Logger) (*Publisher, error) {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		logger.Error("Failed to declare progress event queue", zap.String("queue", queue), zap.Error(err))
		return nil, fmt.Errorf("failed to declare queue '%s': %w", queue, err)
	}

	return &Publisher{
		ch:     ch,
		queue:  queue,
		logger: logger.Named("ProgressEventPublisher"),
	}, nil
}

// PublishProgressEvent sends event as a persistent JSON message.
// A missing event id or timestamp is filled in.
func (p *Publisher) PublishProgressEvent(ctx context.Context, event secondary.ProgressEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	logFields := []zap.Field{
		zap.String("eventID", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("userID", event.UserID),
		zap.Int("bookID", event.BookID),
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal progress event", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to marshal progress event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.ID,
			Type:         string(event.Type),
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish progress event", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to publish progress event: %w", err)
	}

	p.logger.Debug("Progress event published", logFields...)
	return nil
}

// Close closes the channel and, when owned, the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
