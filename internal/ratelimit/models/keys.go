package models

import "strings"

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so a crafted identifier cannot address another bucket. IPv6 addresses are
// the common case.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// NewIPKey returns the bucket key for one client IP within a scope.
func NewIPKey(scope Scope, ip string) string {
	if ip == "" {
		ip = "unknown"
	}
	return "rl:" + string(scope) + ":ip:" + SanitizeKeySegment(ip)
}
