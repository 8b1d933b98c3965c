package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// runeCodec treats every rune as one token, which keeps window math easy to
// reason about in tests.
type runeCodec struct{}

func (runeCodec) Name() string { return "rune" }

func (runeCodec) Count(text string) int { return len([]rune(text)) }

func (runeCodec) Encode(text string) []int {
	runes := []rune(text)
	tokens := make([]int, len(runes))
	for i, r := range runes {
		tokens[i] = int(r)
	}
	return tokens
}

func (runeCodec) Decode(tokens []int) string {
	runes := make([]rune, len(tokens))
	for i, tok := range tokens {
		runes[i] = rune(tok)
	}
	return string(runes)
}

func TestIsCodeFile(t *testing.T) {
	assert.True(t, IsCodeFile("main.go"))
	assert.True(t, IsCodeFile("src/App.TSX"))
	assert.True(t, IsCodeFile("deep/nested/service.py"))
	assert.False(t, IsCodeFile("README.md"))
	assert.False(t, IsCodeFile("config.yaml"))
	assert.False(t, IsCodeFile("Makefile"))
}

func TestSplitNonCodeFileYieldsNothing(t *testing.T) {
	c := New(runeCodec{}, 10, 2)
	assert.Nil(t, c.Split("notes.txt", strings.Repeat("x", 100)))
}

func TestSplitSmallFileSingleSegment(t *testing.T) {
	c := New(runeCodec{}, 10, 2)
	segments := c.Split("main.go", "package x")

	assert.Len(t, segments, 1)
	assert.Equal(t, "package x", segments[0].Content)
	assert.Equal(t, 0, segments[0].Index)
	assert.False(t, c.NeedsSplit("package x"))
}

func TestSplitOversizedFileWindows(t *testing.T) {
	c := New(runeCodec{}, 10, 2)
	content := "abcdefghijklmnopqrstuvwx" // 24 tokens

	segments := c.Split("big.go", content)

	assert.True(t, c.NeedsSplit(content))
	assert.Len(t, segments, 3)
	assert.Equal(t, "abcdefghij", segments[0].Content)
	assert.Equal(t, "ijklmnopqr", segments[1].Content)
	assert.Equal(t, "qrstuvwx", segments[2].Content)
	for i, segment := range segments {
		assert.Equal(t, i, segment.Index)
		assert.Equal(t, "big.go", segment.Path)
		assert.LessOrEqual(t, len(segment.Content), 10)
	}
}

func TestSplitWindowsCoverWholeFile(t *testing.T) {
	c := New(runeCodec{}, 7, 3)
	content := strings.Repeat("abcdefghij", 5)

	segments := c.Split("cover.go", content)

	// Strip the overlap from every window after the first; the remainder
	// must reconstruct the original content exactly.
	var rebuilt strings.Builder
	for i, segment := range segments {
		runes := []rune(segment.Content)
		if i == 0 {
			rebuilt.WriteString(segment.Content)
			continue
		}
		rebuilt.WriteString(string(runes[3:]))
	}
	assert.Equal(t, content, rebuilt.String())
}

func TestNewClampsBadParameters(t *testing.T) {
	c := New(runeCodec{}, 0, 0)
	assert.Equal(t, DefaultTokenBudget, c.Budget())

	// Overlap >= budget would make the stride non-positive.
	c = New(runeCodec{}, 10, 10)
	segments := c.Split("x.go", strings.Repeat("a", 500))
	assert.NotEmpty(t, segments)
}
