// Package chunker splits oversized code files into bounded token windows so
// each window fits a single model invocation.
package chunker

import (
	"path/filepath"
	"strings"

	"docfoundry/internal/models"
	"docfoundry/internal/tokenizer"
)

const (
	// DefaultTokenBudget is the maximum encoded length of one generation unit.
	DefaultTokenBudget = 4000
	// DefaultOverlap is how many tokens consecutive segments share to
	// preserve context across the boundary.
	DefaultOverlap = 200
)

var codeExtensions = map[string]struct{}{
	".py": {}, ".js": {}, ".jsx": {}, ".java": {}, ".cpp": {}, ".c": {},
	".cs": {}, ".ts": {}, ".rb": {}, ".php": {}, ".go": {}, ".rs": {},
	".swift": {}, ".kt": {}, ".tsx": {},
}

// IsCodeFile reports whether the path carries a recognized code extension.
// Everything else is excluded from documentation entirely.
func IsCodeFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := codeExtensions[ext]
	return ok
}

// Chunker slices file content into token windows using the same codec as the
// size check, so the threshold decision and the boundaries always agree.
type Chunker struct {
	codec   tokenizer.Codec
	budget  int
	overlap int
}

func New(codec tokenizer.Codec, budget, overlap int) *Chunker {
	if budget <= 0 {
		budget = DefaultTokenBudget
	}
	if overlap < 0 || overlap >= budget {
		overlap = DefaultOverlap
		if overlap >= budget {
			overlap = budget / 20
		}
	}
	return &Chunker{codec: codec, budget: budget, overlap: overlap}
}

// Budget returns the per-unit token budget.
func (c *Chunker) Budget() int { return c.budget }

// NeedsSplit reports whether content exceeds the per-unit token budget.
func (c *Chunker) NeedsSplit(content string) bool {
	return c.codec.Count(content) > c.budget
}

// Split returns the ordered segments for one file. Non-code files yield nil.
// Files at or under the budget come back as a single segment; oversized
// files become windows of at most budget tokens with the configured overlap
// between consecutive windows.
func (c *Chunker) Split(path, content string) []models.Segment {
	if !IsCodeFile(path) {
		return nil
	}
	tokens := c.codec.Encode(content)
	if len(tokens) <= c.budget {
		return []models.Segment{{Path: path, Content: content, Index: 0}}
	}

	stride := c.budget - c.overlap
	var segments []models.Segment
	for start := 0; start < len(tokens); start += stride {
		end := start + c.budget
		if end > len(tokens) {
			end = len(tokens)
		}
		segments = append(segments, models.Segment{
			Path:    path,
			Content: c.codec.Decode(tokens[start:end]),
			Index:   len(segments),
		})
		if end == len(tokens) {
			break
		}
	}
	return segments
}
