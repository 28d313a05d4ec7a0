package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-scout/internal/types"
)

// fakeHashClient keeps hashes in memory and can simulate a broken connection.
type fakeHashClient struct {
	hashes map[string]map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeHashClient() *fakeHashClient {
	return &fakeHashClient{
		hashes: make(map[string]map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeHashClient) HSet(ctx context.Context, key string, values ...any) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	h := f.hashes[key]
	if h == nil {
		h = make(map[string]string)
		f.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		h[values[i].(string)] = values[i+1].(string)
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (f *fakeHashClient) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	if f.err != nil {
		return redis.NewMapStringStringResult(nil, f.err)
	}
	return redis.NewMapStringStringResult(f.hashes[key], nil)
}

func (f *fakeHashClient) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func searchParams() *types.SearchParameters {
	return &types.SearchParameters{JobTitle: "Engineer", Location: "Berlin", MaxResults: 20}
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	client := newFakeHashClient()
	store := NewStoreFromClient(client)
	require.True(t, store.Available())

	store.Create(ctx, "t1", searchParams())

	fields, ok := store.Get(ctx, "t1")
	require.True(t, ok)
	assert.Equal(t, StatusQueued, fields["status"])
	assert.Equal(t, "Engineer", fields["title"])
	assert.Equal(t, "0", fields["total_found"])
	assert.Equal(t, taskTTL, client.ttls["task:t1"])

	store.SetRunning(ctx, "t1")
	store.SetTotalFound(ctx, "t1", 12)
	store.SetTotalSaved(ctx, "t1", 9)
	store.Complete(ctx, "t1")

	fields, ok = store.Get(ctx, "t1")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, fields["status"])
	assert.Equal(t, "12", fields["total_found"])
	assert.Equal(t, "9", fields["total_saved"])
	assert.NotEmpty(t, fields["completed_at"])
}

func TestTaskFailure(t *testing.T) {
	ctx := context.Background()
	store := NewStoreFromClient(newFakeHashClient())

	store.Create(ctx, "t2", searchParams())
	store.Fail(ctx, "t2", "login failed")

	fields, ok := store.Get(ctx, "t2")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, fields["status"])
	assert.Equal(t, "login failed", fields["error"])
}

func TestGetMissingTask(t *testing.T) {
	store := NewStoreFromClient(newFakeHashClient())

	_, ok := store.Get(context.Background(), "nope")
	assert.False(t, ok)
}

func TestDegradesWithoutClient(t *testing.T) {
	ctx := context.Background()
	store := &Store{}
	assert.False(t, store.Available())

	// writes are no-ops, reads report unknown instead of failing
	store.Create(ctx, "t3", searchParams())
	store.SetRunning(ctx, "t3")

	fields, ok := store.Get(ctx, "t3")
	require.True(t, ok)
	assert.Equal(t, StatusUnknown, fields["status"])
	assert.NotEmpty(t, fields["note"])
}

func TestDegradesOnRedisErrors(t *testing.T) {
	ctx := context.Background()
	client := newFakeHashClient()
	client.err = errors.New("connection refused")
	store := NewStoreFromClient(client)

	store.Create(ctx, "t4", searchParams())

	fields, ok := store.Get(ctx, "t4")
	require.True(t, ok)
	assert.Equal(t, StatusUnknown, fields["status"])
}
