package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys so a retried mutation is applied once
type IdempotencyStore interface {
	// MarkProcessed records key for ttl.
	// Returns true if the key was newly recorded, false if it was already present
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether key has been recorded
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases resources
	Close() error
}
