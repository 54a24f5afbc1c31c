//go:build integration

package bucket_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"homedisclose/internal/ratelimit/models"
	"homedisclose/internal/ratelimit/store/bucket"
	"homedisclose/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
}

func TestRedisBucketStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = bucket.NewRedisBucketStore(s.redis.Client)
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisBucketStoreSuite) TestLimitAndExpiry() {
	ctx := context.Background()
	key := models.NewIPKey(models.ScopePublicToken, "203.0.113.9")

	for i := 1; i <= 3; i++ {
		result, err := s.store.Allow(ctx, key, 3, time.Hour)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(3-i, result.Remaining)
	}

	result, err := s.store.Allow(ctx, key, 3, time.Hour)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Positive(result.RetryAfter)

	keys, err := s.redis.Client.Keys(ctx, key+":*").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)
	ttl, err := s.redis.Client.TTL(ctx, keys[0]).Result()
	s.Require().NoError(err)
	s.Positive(ttl)
}

func (s *RedisBucketStoreSuite) TestConcurrentIncrementsAreCounted() {
	ctx := context.Background()
	key := models.NewIPKey(models.ScopePublicToken, "2001:db8::1")

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(ctx, key, 10, time.Hour)
			if err == nil && result.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(10), allowed.Load())
}
