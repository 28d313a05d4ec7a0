package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is a durable counter store backed by the rate_limits table. The
// read-check-increment sequence is a single INSERT .. ON CONFLICT statement,
// so concurrent callers cannot both observe the same count.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a store over an existing connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Take implements Store.
func (s *PGStore) Take(ctx context.Context, operation string, window time.Duration) (int, time.Time, error) {
	var count int
	var resetAt time.Time

	err := s.pool.QueryRow(ctx,
		`INSERT INTO rate_limits (operation, count, reset_at)
		 VALUES ($1, 1, now() + make_interval(secs => $2))
		 ON CONFLICT (operation) DO UPDATE SET
		     count = CASE WHEN now() >= rate_limits.reset_at THEN 1
		                  ELSE rate_limits.count + 1 END,
		     reset_at = CASE WHEN now() >= rate_limits.reset_at THEN now() + make_interval(secs => $2)
		                     ELSE rate_limits.reset_at END
		 RETURNING count, reset_at`,
		operation, window.Seconds(),
	).Scan(&count, &resetAt)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to take rate limit permit for %s: %w", operation, err)
	}

	return count, resetAt, nil
}
