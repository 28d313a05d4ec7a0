// Package tasks tracks the status of background discovery runs in Redis.
// Redis is optional infrastructure here: every write is best-effort and a
// missing or unreachable Redis degrades status reads to "unknown" instead of
// failing the run.
package tasks

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/talent-scout/internal/types"
)

// taskTTL is how long task records stay readable after creation.
const taskTTL = 24 * time.Hour

// Task statuses as stored in the Redis hash.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusUnknown   = "unknown"
)

// hashClient is the slice of the Redis API the store needs.
type hashClient interface {
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
}

// Store records task status hashes in Redis.
type Store struct {
	client hashClient
}

// NewStore connects to Redis. An empty URL yields a store with no backing
// client, which is valid: all operations degrade gracefully.
func NewStore(ctx context.Context, redisURL string) (*Store, error) {
	if redisURL == "" {
		log.Printf("[tasks] no Redis URL configured, task status disabled")
		return &Store{}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		// Reachability problems are not fatal; the service runs without
		// task status rather than refusing to start.
		log.Printf("[tasks] Redis unreachable, task status disabled: %v", err)
		return &Store{}, nil
	}
	return &Store{client: client}, nil
}

// NewStoreFromClient wraps an existing client. Used by tests.
func NewStoreFromClient(client hashClient) *Store {
	return &Store{client: client}
}

// Available reports whether a Redis client is wired in.
func (s *Store) Available() bool {
	return s.client != nil
}

func taskKey(taskID string) string {
	return "task:" + taskID
}

// Create records a new queued task with its search parameters and starts the
// TTL clock.
func (s *Store) Create(ctx context.Context, taskID string, params *types.SearchParameters) {
	if s.client == nil {
		return
	}
	key := taskKey(taskID)
	err := s.client.HSet(ctx, key,
		"status", StatusQueued,
		"title", params.JobTitle,
		"location", params.Location,
		"total_found", "0",
		"total_saved", "0",
		"created_at", time.Now().UTC().Format(time.RFC3339),
	).Err()
	if err != nil {
		log.Printf("[tasks] failed to store task %s: %v", taskID, err)
		return
	}
	if err := s.client.Expire(ctx, key, taskTTL).Err(); err != nil {
		log.Printf("[tasks] failed to set TTL on task %s: %v", taskID, err)
	}
}

// SetRunning marks a task as in progress.
func (s *Store) SetRunning(ctx context.Context, taskID string) {
	s.set(ctx, taskID, "status", StatusRunning)
}

// SetTotalFound records how many raw profiles the run has collected.
func (s *Store) SetTotalFound(ctx context.Context, taskID string, n int) {
	s.set(ctx, taskID, "total_found", strconv.Itoa(n))
}

// SetTotalSaved records how many candidates were persisted so far.
func (s *Store) SetTotalSaved(ctx context.Context, taskID string, n int) {
	s.set(ctx, taskID, "total_saved", strconv.Itoa(n))
}

// Complete marks a task as finished.
func (s *Store) Complete(ctx context.Context, taskID string) {
	s.set(ctx, taskID,
		"status", StatusCompleted,
		"completed_at", time.Now().UTC().Format(time.RFC3339),
	)
}

// Fail marks a task as failed with its error message.
func (s *Store) Fail(ctx context.Context, taskID string, errMsg string) {
	s.set(ctx, taskID,
		"status", StatusFailed,
		"error", errMsg,
		"completed_at", time.Now().UTC().Format(time.RFC3339),
	)
}

func (s *Store) set(ctx context.Context, taskID string, fields ...any) {
	if s.client == nil {
		return
	}
	if err := s.client.HSet(ctx, taskKey(taskID), fields...).Err(); err != nil {
		log.Printf("[tasks] failed to update task %s: %v", taskID, err)
	}
}

// Get returns the task status fields. The second return is false when the
// task does not exist. When Redis is unavailable the status is "unknown"
// rather than an error, so callers can still respond.
func (s *Store) Get(ctx context.Context, taskID string) (map[string]string, bool) {
	if s.client == nil {
		return map[string]string{
			"status": StatusUnknown,
			"note":   "task status storage unavailable",
		}, true
	}

	fields, err := s.client.HGetAll(ctx, taskKey(taskID)).Result()
	if err != nil {
		log.Printf("[tasks] failed to read task %s: %v", taskID, err)
		return map[string]string{
			"status": StatusUnknown,
			"note":   "task status storage unavailable",
		}, true
	}
	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}
