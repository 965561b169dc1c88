package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-storefront-builder/internal/config"
)

type fakeRedis struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Duration
	failInc bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeRedis) Ping(context.Context) error { return nil }

func (f *fakeRedis) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInc {
		return 0, errors.New("connection refused")
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRedis) Expire(_ context.Context, key string, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires[key] = d
	return nil
}

func (f *fakeRedis) TTL(_ context.Context, key string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.expires[key]
	if !ok {
		return -2 * time.Second, nil
	}
	return d, nil
}

func (f *fakeRedis) Close() error { return nil }

func TestRateLimiter_FixedWindow(t *testing.T) {
	fr := newFakeRedis()
	rl := NewRateLimiter(fr)
	key := SubmissionKey("10.0.0.1")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}
	ok, err := rl.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, time.Minute, fr.expires[key])
	assert.Equal(t, time.Minute, rl.RetryAfter(ctx, key))
	assert.Zero(t, rl.RetryAfter(ctx, "unknown"))
}

func TestRateLimiter_Error(t *testing.T) {
	fr := newFakeRedis()
	fr.failInc = true
	_, err := NewRateLimiter(fr).Allow(context.Background(), "k", 1, time.Second)
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	opts, err := options(&config.RedisConfig{URL: "redis://:secret@cache:6380/2"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = options(&config.RedisConfig{URL: "localhost:6379", DB: 1})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 1, opts.DB)
}
