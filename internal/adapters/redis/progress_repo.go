// Package redis stores reader progress as JSON documents in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/secondary"
)

const keyPrefix = "gamebook:progress"

var _ secondary.ProgressRepository = (*ProgressRepository)(nil)

// ProgressRepository implements secondary.ProgressRepository with Redis.
// A zero ttl keeps records until they are deleted.
type ProgressRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewProgressRepository creates a Redis-backed progress repository.
func NewProgressRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ProgressRepository {
	return &ProgressRepository{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisProgressRepo"),
	}
}

// Key returns the Redis key holding one reader's progress in one book.
func Key(userID string, bookID int) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefix, userID, bookID)
}

// Get retrieves the progress record for a reader and book.
func (r *ProgressRepository) Get(ctx context.Context, userID string, bookID int) (*models.Progress, error) {
	key := Key(userID, bookID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("progress for book %d: %w", bookID, models.ErrNotFound)
		}
		r.logger.Error("Failed to get progress from redis", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get progress from redis: %w", err)
	}

	var progress models.Progress
	if err := json.Unmarshal(data, &progress); err != nil {
		r.logger.Error("Failed to decode progress", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to decode progress: %w", err)
	}
	return &progress, nil
}

// Save writes the progress record, refreshing its TTL.
func (r *ProgressRepository) Save(ctx context.Context, progress *models.Progress) error {
	key := Key(progress.UserID, progress.BookID)
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	r.logger.Debug("Saving progress to redis",
		zap.String("key", key),
		zap.String("entryID", progress.CurrentEntryID),
		zap.Duration("ttl", r.ttl),
	)
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save progress to redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to save progress to redis: %w", err)
	}
	return nil
}

// Delete removes the progress record.
func (r *ProgressRepository) Delete(ctx context.Context, userID string, bookID int) error {
	key := Key(userID, bookID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete progress from redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete progress from redis: %w", err)
	}
	return nil
}
