//go:build integration

package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"ai-storefront-builder/internal/config"
)

func TestRateLimiter_Integration(t *testing.T) {
	ctx := context.Background()
	container, err := tcredis.Run(ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client, err := NewClient(ctx, &config.RedisConfig{URL: fmt.Sprintf("redis://%s:%s/0", host, port.Port())})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client)
	key := SubmissionKey("192.0.2.10")
	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, key, 2, 2*time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := rl.Allow(ctx, key, 2, 2*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, rl.RetryAfter(ctx, key), time.Duration(0))

	require.Eventually(t, func() bool {
		ok, err := rl.Allow(ctx, key, 2, 2*time.Second)
		return err == nil && ok
	}, 5*time.Second, 250*time.Millisecond)
}
