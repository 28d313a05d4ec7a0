// Package ratelimit enforces per-operation quotas over a rolling reset window.
package ratelimit

import (
	"context"
	"log"
	"time"
)

// DefaultWindow is the reset window applied when none is configured.
const DefaultWindow = 24 * time.Hour

// Store records one permit take for an operation type and returns the count
// within the current window along with the window's reset time. Takes must be
// atomic per operation type: concurrent callers may never observe the same
// count.
type Store interface {
	Take(ctx context.Context, operation string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Limiter checks operation counts against a maximum per window.
type Limiter struct {
	store  Store
	max    int
	window time.Duration
}

// New creates a limiter backed by the given store.
func New(store Store, maxOperations int, window time.Duration) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{store: store, max: maxOperations, window: window}
}

// Check consumes one permit for the operation type. Returns *ExceededError
// when the window's quota is spent.
func (l *Limiter) Check(ctx context.Context, operationType string) error {
	count, resetAt, err := l.store.Take(ctx, operationType, l.window)
	if err != nil {
		return err
	}

	if count > l.max {
		retryAfter := time.Until(resetAt)
		if retryAfter < 0 {
			retryAfter = 0
		}
		log.Printf("[ratelimit] limit exceeded for %s: %d/%d, resets at %s",
			operationType, count, l.max, resetAt.Format(time.RFC3339))
		return &ExceededError{
			OperationType: operationType,
			Limit:         l.max,
			RetryAfter:    retryAfter,
			ResetAt:       resetAt,
		}
	}

	return nil
}
