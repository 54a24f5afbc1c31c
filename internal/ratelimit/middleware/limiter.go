package middleware

import (
	"context"
	"log/slog"
	"time"

	"homedisclose/internal/ratelimit/metrics"
	"homedisclose/internal/ratelimit/models"
	"homedisclose/pkg/platform/circuit"
)

// BucketStore counts requests per key within a window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Limiter answers from the primary store and falls back to the in-memory
// store while the primary is failing. Degraded reports fallback answers.
type Limiter struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type LimiterOption func(*Limiter)

func WithBreaker(b *circuit.Breaker) LimiterOption {
	return func(l *Limiter) {
		l.breaker = b
	}
}

func WithLimiterMetrics(m *metrics.Metrics) LimiterOption {
	return func(l *Limiter) {
		l.metrics = m
	}
}

func WithLimiterLogger(logger *slog.Logger) LimiterOption {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// NewLimiter builds a limiter. A nil primary means the fallback is the only
// store, which is the local-run configuration.
func NewLimiter(primary, fallback BucketStore, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		primary:  primary,
		fallback: fallback,
		breaker:  circuit.New("ratelimit"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check counts one request against key.
func (l *Limiter) Check(ctx context.Context, key string, limit int, window time.Duration) (result *models.RateLimitResult, degraded bool, err error) {
	if l.primary == nil {
		result, err = l.fallback.Allow(ctx, key, limit, window)
		return result, false, err
	}

	if l.breaker.Allow() {
		result, err = l.primary.Allow(ctx, key, limit, window)
		if err == nil {
			if _, change := l.breaker.RecordSuccess(); change.Closed {
				l.logger.InfoContext(ctx, "rate limit store recovered")
			}
			return result, false, nil
		}
		if l.metrics != nil {
			l.metrics.StoreErrors.Inc()
		}
		if _, change := l.breaker.RecordFailure(); change.Opened {
			l.logger.WarnContext(ctx, "rate limit store failing, using in-memory fallback", "error", err)
		}
	}

	if l.metrics != nil {
		l.metrics.Degraded.Inc()
	}
	result, err = l.fallback.Allow(ctx, key, limit, window)
	return result, true, err
}
