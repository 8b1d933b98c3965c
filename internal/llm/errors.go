package llm

import (
	"fmt"
	"time"
)

// LimitScope distinguishes quotas that replenish within the minute from
// quotas that will not replenish until the day resets.
type LimitScope int

const (
	ScopeUnknown LimitScope = iota
	ScopePerMinute
	ScopePerDay
)

func (s LimitScope) String() string {
	switch s {
	case ScopePerMinute:
		return "per-minute"
	case ScopePerDay:
		return "per-day"
	default:
		return "unknown"
	}
}

// RateLimitError reports a provider rate-limit condition. RetryAfter is the
// server-suggested wait; zero when the provider gave none.
type RateLimitError struct {
	Scope      LimitScope
	RetryAfter time.Duration
	Detail     string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (%s): retry after %s: %s", e.Scope, e.RetryAfter, e.Detail)
	}
	return fmt.Sprintf("rate limited (%s): %s", e.Scope, e.Detail)
}

// UpstreamError reports a non-success response from the source host or the
// model provider, with the host's detail passed through.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Detail)
}
