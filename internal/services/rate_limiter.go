package services

import (
	"context"
	"fmt"
	"time"

	"collab-service/internal/database"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements a sliding-window counter on top of Redis sorted
// sets. Each key holds one member per request scored by its unix timestamp;
// entries older than the window are trimmed on every check.
type RateLimiter struct {
	client *database.RedisClient
}

func NewRateLimiter(client *database.RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow reports whether another request under key fits within limit requests
// per window. The current request is always recorded, even when rejected.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).Unix()

	pipe := r.client.GetClient().Pipeline()

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.Unix()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, window)

	results, err := pipe.Exec(ctx)
	if err != nil {
		return false, err
	}

	count := results[1].(*redis.IntCmd).Val()
	return count < int64(limit), nil
}
