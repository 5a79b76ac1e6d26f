package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed submission IDs to prevent duplicate processing.
// Audit and handoff requests carry a client-generated submission ID; a replay
// within the TTL is rejected instead of double-applying the register mutation.
type IdempotencyStore interface {
	// MarkProcessed marks a submission as processed with a TTL
	// Returns true if the submission was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, submissionID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a submission has already been processed
	IsProcessed(ctx context.Context, submissionID string) (bool, error)

	// Release removes a submission ID so the client may retry it. Called when
	// a submission was marked but its mutation never committed.
	Release(ctx context.Context, submissionID string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for processed submission IDs
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
