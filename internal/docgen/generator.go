// Package docgen produces per-file documentation through the model backend
// and assembles it into one unified document.
package docgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docfoundry/internal/chunker"
	"docfoundry/internal/llm"
	"docfoundry/internal/models"
)

// DetailsMarker separates the overview from the details in the model's raw
// response. Absence of the marker degrades to an overview-only doc.
const DetailsMarker = "#### Details"

const defaultConcurrency = 4

const splitNotice = "This file is large and has been split into parts. Below is the documentation for each part."

// Generator turns FileRecords into FileDocs. Units (whole files or segments)
// are documented concurrently and rejoined in input order.
type Generator struct {
	backend     llm.Backend
	chunks      *chunker.Chunker
	logger      *zap.Logger
	cache       *lru.Cache[string, string]
	concurrency int
}

type GeneratorOption func(*Generator)

// WithConcurrency bounds the number of in-flight backend calls.
func WithConcurrency(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithCache keeps recent unit documentation keyed by content hash, so a
// retried run does not re-bill units that already completed.
func WithCache(size int) GeneratorOption {
	return func(g *Generator) {
		if size > 0 {
			cache, err := lru.New[string, string](size)
			if err == nil {
				g.cache = cache
			}
		}
	}
}

func NewGenerator(backend llm.Backend, chunks *chunker.Chunker, logger *zap.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		backend:     backend,
		chunks:      chunks,
		logger:      logger,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// unit is one generation task: a whole file or one segment of it.
type unit struct {
	file    int
	segment models.Segment
	parts   int
}

// GenerateFileDocs documents every recognized code file and returns the docs
// in input order. Non-code files are silently excluded. A failed unit yields
// an error placeholder in its slot; rate limiting aborts the whole batch.
func (g *Generator) GenerateFileDocs(ctx context.Context, files []models.FileRecord) ([]models.FileDoc, error) {
	var units []unit
	fileParts := make(map[int][]int) // file index -> unit indices, segment order
	for i, file := range files {
		if !chunker.IsCodeFile(file.Path) {
			g.logger.Info("skipping non-code file", zap.String("path", file.Path))
			continue
		}
		segments := g.chunks.Split(file.Path, file.Content)
		for _, segment := range segments {
			fileParts[i] = append(fileParts[i], len(units))
			units = append(units, unit{file: i, segment: segment, parts: len(segments)})
		}
	}

	results := make([]string, len(units))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.concurrency)
	for i := range units {
		group.Go(func() error {
			text, err := g.documentUnit(groupCtx, units[i].segment)
			if err != nil {
				var rl *llm.RateLimitError
				if errors.As(err, &rl) || errors.Is(err, context.Canceled) {
					return err
				}
				g.logger.Error("unit generation failed",
					zap.String("path", units[i].segment.Path),
					zap.Int("part", units[i].segment.Index),
					zap.Error(err))
				text = fmt.Sprintf("Error: failed to generate documentation for part %d of %s",
					units[i].segment.Index, units[i].segment.Path)
			}
			results[i] = text
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var docs []models.FileDoc
	for i, file := range files {
		indices, ok := fileParts[i]
		if !ok {
			continue
		}
		if len(indices) == 1 {
			docs = append(docs, g.formatFileDoc(file.Path, results[indices[0]]))
			continue
		}
		partDocs := make([]string, 0, len(indices))
		for part, idx := range indices {
			partDocs = append(partDocs, fmt.Sprintf("#### Part %d\n%s", part, results[idx]))
		}
		docs = append(docs, models.FileDoc{
			Filename: file.Path,
			Documentation: fmt.Sprintf("### %s\n#### Overview\n%s\n\n%s\n",
				file.Path, splitNotice, strings.Join(partDocs, "\n")),
		})
	}
	return docs, nil
}

// documentUnit runs one backend call for a file or segment.
func (g *Generator) documentUnit(ctx context.Context, segment models.Segment) (string, error) {
	key := unitCacheKey(segment)
	if g.cache != nil {
		if cached, ok := g.cache.Get(key); ok {
			return cached, nil
		}
	}
	prompt, err := renderDocPrompt(segment.Path, segment.Content)
	if err != nil {
		return "", fmt.Errorf("render doc prompt: %w", err)
	}
	raw, err := g.backend.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if g.cache != nil {
		g.cache.Add(key, raw)
	}
	return raw, nil
}

// formatFileDoc splits the raw response on the first Details marker. A
// missing marker is logged and the whole response becomes the overview.
func (g *Generator) formatFileDoc(path, raw string) models.FileDoc {
	overview := strings.TrimSpace(raw)
	details := ""
	if idx := strings.Index(raw, DetailsMarker); idx >= 0 {
		overview = strings.TrimSpace(raw[:idx])
		details = DetailsMarker + strings.TrimRight(raw[idx+len(DetailsMarker):], "\n")
	} else {
		g.logger.Warn("no details marker in documentation", zap.String("path", path))
	}
	return models.FileDoc{
		Filename:      path,
		Documentation: fmt.Sprintf("### %s\n#### Overview\n%s\n\n%s\n", path, overview, details),
	}
}

func unitCacheKey(segment models.Segment) string {
	sum := sha256.Sum256([]byte(segment.Path + "\x00" + segment.Content))
	return hex.EncodeToString(sum[:])
}
