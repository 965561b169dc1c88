package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter: INCR, and EXPIRE on the first hit.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// RetryAfter reports how long until key's window resets.
func (r *RateLimiter) RetryAfter(ctx context.Context, key string) time.Duration {
	ttl, err := r.client.TTL(ctx, key)
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}

func SubmissionKey(client string) string {
	return fmt.Sprintf("rate_limit:sites:%s", client)
}
