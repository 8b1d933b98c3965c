// Package llm abstracts the text-generation backend behind a contract the
// pipeline can mock: a single blocking completion call.
package llm

import "context"

// Backend is the text-generation boundary. Generate surfaces rate limiting
// as *RateLimitError.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
