package llm

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Providers report limits in prose rather than structured fields once the
// error has crossed the SDK boundary, e.g. Groq's
// "Rate limit reached for model ... on tokens per minute (TPM) ...
// Please try again in 7.66s". Classification sniffs the message the same
// way the upstream dashboards document it.
var (
	tryAgainPattern   = regexp.MustCompile(`try again in ([0-9]+(?:\.[0-9]+)?)\s*(ms|s|m)`)
	retryAfterPattern = regexp.MustCompile(`retry[- ]after[:\s]+([0-9]+)`)
)

// ClassifyError maps a raw provider error to the pipeline's taxonomy.
// Rate-limit conditions become *RateLimitError carrying scope and suggested
// wait; anything else is returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return err
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	if !strings.Contains(lower, "429") &&
		!strings.Contains(lower, "rate limit") &&
		!strings.Contains(lower, "rate_limit") &&
		!strings.Contains(lower, "quota") {
		return err
	}

	out := &RateLimitError{Scope: limitScope(lower), Detail: msg, RetryAfter: retryAfter(lower)}
	return out
}

func limitScope(lower string) LimitScope {
	switch {
	case strings.Contains(lower, "per day"), strings.Contains(lower, "per-day"),
		strings.Contains(lower, "tpd"), strings.Contains(lower, "rpd"),
		strings.Contains(lower, "daily"), strings.Contains(lower, "quota"):
		return ScopePerDay
	case strings.Contains(lower, "per minute"), strings.Contains(lower, "per-minute"),
		strings.Contains(lower, "tpm"), strings.Contains(lower, "rpm"):
		return ScopePerMinute
	default:
		// Minute-scoped limits are by far the most common 429; treating the
		// unknown case as retryable matches provider guidance.
		return ScopePerMinute
	}
}

func retryAfter(lower string) time.Duration {
	if m := tryAgainPattern.FindStringSubmatch(lower); m != nil {
		value, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			switch m[2] {
			case "ms":
				return time.Duration(value * float64(time.Millisecond))
			case "m":
				return time.Duration(value * float64(time.Minute))
			default:
				return time.Duration(value * float64(time.Second))
			}
		}
	}
	if m := retryAfterPattern.FindStringSubmatch(lower); m != nil {
		if seconds, err := strconv.Atoi(m[1]); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}
