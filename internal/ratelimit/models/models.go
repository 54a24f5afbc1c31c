package models

import (
	"time"
)

// Scope names a family of limited endpoints; each scope has its own buckets.
type Scope string

const (
	// ScopePublicToken covers anonymous share-token access.
	ScopePublicToken Scope = "public_token"
)

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// Denied builds the result for a rejected request.
func Denied(limit int, resetAt, now time.Time) *RateLimitResult {
	retry := int(resetAt.Sub(now).Seconds())
	if retry < 1 {
		retry = 1
	}
	return &RateLimitResult{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: retry,
	}
}
