package refine

import (
	"encoding/json"
	"errors"
	"strings"
)

var errMalformedResult = errors.New("malformed structured result")

// structuredResult is the refinement protocol's response envelope: a short
// explanation plus the full updated document.
type structuredResult struct {
	Response    string `json:"response"`
	UpdatedDocs string `json:"updated_docs"`
}

// parseStructuredResult extracts the two required fields from the backend's
// raw output. Models routinely wrap JSON in markdown fences or lead-in
// prose, so parsing tolerates both before giving up. The unparsed string
// never flows past this boundary.
func parseStructuredResult(raw string) (*structuredResult, error) {
	candidate := strings.TrimSpace(raw)
	candidate = stripFences(candidate)

	var result structuredResult
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		start := strings.Index(candidate, "{")
		end := strings.LastIndex(candidate, "}")
		if start < 0 || end <= start {
			return nil, errMalformedResult
		}
		if err := json.Unmarshal([]byte(candidate[start:end+1]), &result); err != nil {
			return nil, errMalformedResult
		}
	}
	if strings.TrimSpace(result.Response) == "" || strings.TrimSpace(result.UpdatedDocs) == "" {
		return nil, errMalformedResult
	}
	return &result, nil
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
