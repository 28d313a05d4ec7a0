package ratelimit

import (
	"fmt"
	"time"
)

// ExceededError indicates the quota for an operation type is spent for the
// current window. Callers must back off until RetryAfter has elapsed.
type ExceededError struct {
	OperationType string
	Limit         int
	RetryAfter    time.Duration
	ResetAt       time.Time
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit %d), retry after %s",
		e.OperationType, e.Limit, e.ResetAt.Format(time.RFC3339))
}
