package refine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructuredResultPlainJSON(t *testing.T) {
	result, err := parseStructuredResult(`{"response": "done", "updated_docs": "# Docs"}`)
	require.NoError(t, err)
	assert.Equal(t, "done", result.Response)
	assert.Equal(t, "# Docs", result.UpdatedDocs)
}

func TestParseStructuredResultFencedJSON(t *testing.T) {
	raw := "```json\n{\"response\": \"done\", \"updated_docs\": \"# Docs\"}\n```"
	result, err := parseStructuredResult(raw)
	require.NoError(t, err)
	assert.Equal(t, "done", result.Response)
}

func TestParseStructuredResultLeadInProse(t *testing.T) {
	raw := "Here is the update you asked for:\n{\"response\": \"ok\", \"updated_docs\": \"# D\"}\nLet me know!"
	result, err := parseStructuredResult(raw)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Response)
	assert.Equal(t, "# D", result.UpdatedDocs)
}

func TestParseStructuredResultRejectsGarbage(t *testing.T) {
	_, err := parseStructuredResult("I refuse to answer in JSON today.")
	assert.ErrorIs(t, err, errMalformedResult)
}

func TestParseStructuredResultRejectsMissingFields(t *testing.T) {
	_, err := parseStructuredResult(`{"response": "only half"}`)
	assert.ErrorIs(t, err, errMalformedResult)

	_, err = parseStructuredResult(`{"updated_docs": "only other half"}`)
	assert.ErrorIs(t, err, errMalformedResult)

	_, err = parseStructuredResult(`{"response": "  ", "updated_docs": "x"}`)
	assert.ErrorIs(t, err, errMalformedResult)
}
