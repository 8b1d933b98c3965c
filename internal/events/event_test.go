package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal(t *testing.T) {
	assert.True(t, Event{Status: StatusCompleted}.Terminal())
	assert.True(t, Event{Status: StatusError}.Terminal())
	assert.False(t, Event{Status: StatusStarting}.Terminal())
	assert.False(t, Event{Status: StatusProgress}.Terminal())
	assert.False(t, Event{Status: StatusRateLimit}.Terminal())
}

func TestEventJSONOmitsEmptyFields(t *testing.T) {
	raw, err := json.Marshal(Event{Status: StatusProgress, Content: "text"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"progress","content":"text"}`, string(raw))

	raw, err = json.Marshal(Event{Status: StatusRateLimit, Message: "waiting", RetryAfter: 30})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"rate_limit","message":"waiting","retry_after":30}`, string(raw))

	raw, err = json.Marshal(Event{Status: StatusCompleted, ArtifactID: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed","documentation_id":"abc"}`, string(raw))
}
