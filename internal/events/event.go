// Package events defines the progress events emitted while generating
// documentation. Consumers receive them in strict per-file order and relay
// them to clients, e.g. as server-sent events.
package events

// Status enumerates the lifecycle of one streamed generation.
type Status string

const (
	// StatusStarting opens every generation attempt.
	StatusStarting Status = "starting"
	// StatusProgress carries incremental document text.
	StatusProgress Status = "progress"
	// StatusRateLimit announces a minute-scoped limit and the wait before
	// the transparent retry.
	StatusRateLimit Status = "rate_limit"
	// StatusCompleted terminates a successful run.
	StatusCompleted Status = "completed"
	// StatusError terminates a failed run; no further events follow.
	StatusError Status = "error"
)

// Event is one emission of the streaming orchestrator.
type Event struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Content string `json:"content,omitempty"`
	// RetryAfter is the wait in seconds before the automatic retry;
	// only set on rate_limit events.
	RetryAfter int `json:"retry_after,omitempty"`
	// ArtifactID rides on terminal events: the stored artifact on
	// completion, or the partial artifact salvaged from a failure.
	ArtifactID string `json:"documentation_id,omitempty"`
}

// Terminal reports whether no further events follow this one.
func (e Event) Terminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusError
}
