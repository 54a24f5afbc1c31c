package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"homedisclose/internal/ratelimit/metrics"
	"homedisclose/internal/ratelimit/models"
	dErrors "homedisclose/pkg/domain-errors"
	"homedisclose/pkg/platform/httputil"
	"homedisclose/pkg/requestcontext"
)

type RateLimiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, bool, error)
}

type Middleware struct {
	limiter  RateLimiter
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for tests and demos).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// PerIP limits requests per client IP within scope. The client IP comes from
// the client metadata middleware, which must run first.
func (m *Middleware) PerIP(scope models.Scope, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := models.NewIPKey(scope, requestcontext.ClientIP(ctx))

			result, degraded, err := m.limiter.Check(ctx, key, limit, window)
			if err != nil {
				// fail open; token routes stay reachable
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"request_id", requestcontext.RequestID(ctx),
					"scope", string(scope),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result, degraded)
			if m.metrics != nil {
				m.metrics.IncDecision(string(scope), result.Allowed)
			}

			if !result.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, please try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult, degraded bool) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if degraded {
		w.Header().Set("X-RateLimit-Status", "degraded")
	}
}
