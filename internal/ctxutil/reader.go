// Package ctxutil carries request-scoped values through context.
// It has no internal dependencies so it can be imported anywhere.
package ctxutil

import "context"

// ReaderKey is the context key for the reader id.
type ReaderKey struct{}

// WithReaderID returns a context carrying the reader id.
func WithReaderID(ctx context.Context, readerID string) context.Context {
	return context.WithValue(ctx, ReaderKey{}, readerID)
}

// ReaderFromContext returns the reader id from context, or "" if not set.
func ReaderFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ReaderKey{}).(string); ok {
		return v
	}
	return ""
}
