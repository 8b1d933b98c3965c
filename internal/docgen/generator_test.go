package docgen

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docfoundry/internal/chunker"
	"docfoundry/internal/llm"
	"docfoundry/internal/models"
	"docfoundry/internal/tests/mocks"
)

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

func newTestGenerator(backend llm.Backend, budget int, opts ...GeneratorOption) *Generator {
	chunks := chunker.New(runeCodec{}, budget, 2)
	return NewGenerator(backend, chunks, zap.NewNop(), opts...)
}

func TestGenerateFileDocsMarkerSplit(t *testing.T) {
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "Short summary of the file.\n#### Details\nLong explanation.", nil
		},
	}
	g := newTestGenerator(backend, 1000)

	docs, err := g.GenerateFileDocs(context.Background(), []models.FileRecord{
		{Path: "main.go", Content: "package main"},
	})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "main.go", docs[0].Filename)
	assert.Contains(t, docs[0].Documentation, "### main.go\n#### Overview\nShort summary of the file.")
	assert.Contains(t, docs[0].Documentation, "#### Details\nLong explanation.")
}

func TestGenerateFileDocsMissingMarker(t *testing.T) {
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "Only an overview came back.", nil
		},
	}
	g := newTestGenerator(backend, 1000)

	docs, err := g.GenerateFileDocs(context.Background(), []models.FileRecord{
		{Path: "util.py", Content: "x = 1"},
	})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Documentation, "#### Overview\nOnly an overview came back.")
	assert.NotContains(t, docs[0].Documentation, DetailsMarker)
}

func TestGenerateFileDocsSkipsNonCodeFiles(t *testing.T) {
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "doc\n#### Details\nd", nil
		},
	}
	g := newTestGenerator(backend, 1000)

	docs, err := g.GenerateFileDocs(context.Background(), []models.FileRecord{
		{Path: "README.md", Content: "# hello"},
		{Path: "a.go", Content: "package a"},
	})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a.go", docs[0].Filename)
}

func TestGenerateFileDocsOversizedFileParts(t *testing.T) {
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "part doc", nil
		},
	}
	g := newTestGenerator(backend, 10)

	docs, err := g.GenerateFileDocs(context.Background(), []models.FileRecord{
		{Path: "big.go", Content: strings.Repeat("a", 30)},
	})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	doc := docs[0].Documentation
	assert.Contains(t, doc, "split into parts")
	assert.Contains(t, doc, "#### Part 0")
	assert.Contains(t, doc, "#### Part 1")
	assert.Less(t, strings.Index(doc, "#### Part 0"), strings.Index(doc, "#### Part 1"))
}

func TestGenerateFileDocsPreservesInputOrder(t *testing.T) {
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "doc\n#### Details\nd", nil
		},
	}
	g := newTestGenerator(backend, 1000, WithConcurrency(8))

	var files []models.FileRecord
	for i := 0; i < 20; i++ {
		files = append(files, models.FileRecord{
			Path:    fmt.Sprintf("file_%02d.go", i),
			Content: fmt.Sprintf("package f%d", i),
		})
	}

	docs, err := g.GenerateFileDocs(context.Background(), files)

	require.NoError(t, err)
	require.Len(t, docs, 20)
	for i, doc := range docs {
		assert.Equal(t, files[i].Path, doc.Filename)
	}
}

func TestGenerateFileDocsUnitErrorPlaceholder(t *testing.T) {
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "broken.go") {
				return "", fmt.Errorf("upstream hiccup")
			}
			return "doc\n#### Details\nd", nil
		},
	}
	g := newTestGenerator(backend, 1000)

	docs, err := g.GenerateFileDocs(context.Background(), []models.FileRecord{
		{Path: "fine.go", Content: "package fine"},
		{Path: "broken.go", Content: "package broken"},
	})

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Contains(t, docs[1].Documentation, "Error: failed to generate documentation for part 0 of broken.go")
	assert.Contains(t, docs[0].Documentation, "#### Details")
}

func TestGenerateFileDocsRateLimitAborts(t *testing.T) {
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", &llm.RateLimitError{Scope: llm.ScopePerMinute, Detail: "tpm exceeded"}
		},
	}
	g := newTestGenerator(backend, 1000)

	docs, err := g.GenerateFileDocs(context.Background(), []models.FileRecord{
		{Path: "a.go", Content: "package a"},
	})

	assert.Nil(t, docs)
	var rl *llm.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, llm.ScopePerMinute, rl.Scope)
}

func TestGenerateFileDocsCacheSkipsRepeatCalls(t *testing.T) {
	var calls atomic.Int32
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			calls.Add(1)
			return "doc\n#### Details\nd", nil
		},
	}
	g := newTestGenerator(backend, 1000, WithCache(16))
	files := []models.FileRecord{{Path: "a.go", Content: "package a"}}

	_, err := g.GenerateFileDocs(context.Background(), files)
	require.NoError(t, err)
	_, err = g.GenerateFileDocs(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
}
