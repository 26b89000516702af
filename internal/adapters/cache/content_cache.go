// Package cache keeps recently loaded books in memory in front of a slower content store.
package cache

import (
	"context"
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/secondary"
)

// DefaultSize is used when a non-positive size is configured.
const DefaultSize = 16

var _ secondary.ContentStore = (*ContentCache)(nil)

// ContentCache is a secondary.ContentStore that memoises LoadBook results in an LRU.
// Cached books are shared between callers and must be treated as read-only.
// Failed loads are never cached.
type ContentCache struct {
	next   secondary.ContentStore
	books  *lru.Cache
	group  singleflight.Group
	logger *zap.Logger
}

// NewContentCache wraps next with an LRU of the given size.
func NewContentCache(next secondary.ContentStore, size int, logger *zap.Logger) (*ContentCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	books, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create content cache: %w", err)
	}
	return &ContentCache{
		next:   next,
		books:  books,
		logger: logger.Named("ContentCache"),
	}, nil
}

// LoadBook returns the cached book or loads it once, even under concurrent requests.
func (c *ContentCache) LoadBook(ctx context.Context, bookID int) (*models.BookContent, error) {
	if v, ok := c.books.Get(bookID); ok {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		return v.(*models.BookContent), nil
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()

	// The load is shared by every waiting caller, so one caller's
	// cancellation must not fail the others.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := c.group.Do(strconv.Itoa(bookID), func() (any, error) {
		book, err := c.next.LoadBook(flightCtx, bookID)
		if err != nil {
			return nil, err
		}
		c.books.Add(bookID, book)
		return book, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("Shared in-flight book load", zap.Int("bookID", bookID))
	}
	return v.(*models.BookContent), nil
}

// ListBooks is not cached so newly published books appear immediately.
func (c *ContentCache) ListBooks(ctx context.Context) ([]models.BookMetadata, error) {
	return c.next.ListBooks(ctx)
}

// Invalidate drops a book from the cache.
func (c *ContentCache) Invalidate(bookID int) {
	c.books.Remove(bookID)
}

// Len returns the number of cached books.
func (c *ContentCache) Len() int {
	return c.books.Len()
}
