package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores in-flight submission keys to prevent the same
// user action from being processed twice concurrently
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL
	// Returns true if the key was newly marked, false if it was already present
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been marked
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release removes a key before its TTL expires, allowing the action
	// to be attempted again (used when a guarded submission finishes)
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
