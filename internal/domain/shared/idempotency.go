package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied request keys and the result each
// one produced, so a replayed request can be answered without repeating it.
type IdempotencyStore interface {
	// Reserve claims key for ttl. It returns false when the key is already
	// reserved or completed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete records the result for a reserved key
	Complete(ctx context.Context, key, result string, ttl time.Duration) error

	// Lookup returns the recorded result. found is false while the key is
	// absent or only reserved.
	Lookup(ctx context.Context, key string) (result string, found bool, err error)

	// Release drops a reservation so the request can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// ErrIdempotencyInProgress is returned when a request key is replayed while
// the first request carrying it is still running.
var (
	ErrIdempotencyInProgress = NewDomainError("IDEMPOTENCY_IN_PROGRESS", "A request with this idempotency key is still being processed")
	ErrIdempotencyKeyReused  = NewDomainError("IDEMPOTENCY_KEY_REUSED", "This idempotency key was already used for a different request")
)
