package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"homedisclose/internal/ratelimit/models"
)

// RedisBucketStore is a fixed window counter shared by every instance. Each
// window gets its own key that expires shortly after the window ends.
type RedisBucketStore struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedisBucketStore(client redis.Cmdable) *RedisBucketStore {
	return &RedisBucketStore{client: client, now: time.Now}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := s.now()
	start := now.Truncate(window)
	resetAt := start.Add(window)
	windowKey := key + ":" + strconv.FormatInt(start.Unix(), 10)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, windowKey)
		p.Expire(ctx, windowKey, window+time.Second)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("increment rate limit window: %w", err)
	}

	count := int(incr.Val())
	if count > limit {
		return models.Denied(limit, resetAt, now), nil
	}
	return &models.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - count,
		ResetAt:   resetAt,
	}, nil
}
