// Package stream drives incremental documentation generation: ordered
// progress events, transparent retry on minute-scoped rate limits, and
// preservation of partial output when a run dies.
package stream

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"docfoundry/internal/chunker"
	"docfoundry/internal/docgen"
	"docfoundry/internal/events"
	"docfoundry/internal/llm"
	"docfoundry/internal/models"
	"docfoundry/internal/repositories"
)

const (
	// maxAttempts bounds the retry loop; the original behavior retried on
	// every minute-scoped limit with no cap, which could recurse forever.
	maxAttempts = 3
	// defaultRetryWait applies when the provider suggests no interval.
	defaultRetryWait = 60 * time.Second
)

// Orchestrator streams one generation run over a set of files. Suspension
// points are solely the backend call boundaries; everything else is channel
// sends.
type Orchestrator struct {
	generator *docgen.Generator
	assembler *docgen.Assembler
	repo      repositories.ArtifactRepository
	logger    *zap.Logger
	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewOrchestrator(generator *docgen.Generator, assembler *docgen.Assembler, repo repositories.ArtifactRepository, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		generator: generator,
		assembler: assembler,
		repo:      repo,
		logger:    logger,
		sleep:     sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run returns the ordered event stream for one generation. The channel is
// closed after the terminal event.
func (o *Orchestrator) Run(ctx context.Context, files []models.FileRecord) <-chan events.Event {
	ch := make(chan events.Event)
	go func() {
		defer close(ch)
		o.run(ctx, files, ch)
	}()
	return ch
}

func (o *Orchestrator) run(ctx context.Context, files []models.FileRecord, ch chan<- events.Event) {
	var accumulated strings.Builder

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		accumulated.Reset()
		err := o.attempt(ctx, files, ch, &accumulated)
		if err == nil {
			artifactID, createErr := o.repo.Create(accumulated.String())
			if createErr != nil {
				o.emit(ctx, ch, events.Event{Status: events.StatusError, Message: "failed to store documentation: " + createErr.Error()})
				return
			}
			o.emit(ctx, ch, events.Event{
				Status:     events.StatusCompleted,
				Message:    "Documentation generation completed",
				ArtifactID: artifactID,
			})
			return
		}

		var rl *llm.RateLimitError
		if errors.As(err, &rl) && rl.Scope == llm.ScopePerMinute && attempt < maxAttempts {
			wait := rl.RetryAfter
			if wait <= 0 {
				wait = defaultRetryWait
			}
			o.logger.Warn("minute-scoped rate limit, retrying",
				zap.Duration("wait", wait), zap.Int("attempt", attempt))
			if !o.emit(ctx, ch, events.Event{
				Status:     events.StatusRateLimit,
				Message:    "Rate limit hit. Retrying after " + wait.String() + ".",
				RetryAfter: int(wait / time.Second),
			}) {
				o.preservePartial(ch, ctx, &accumulated, "stream cancelled")
				return
			}
			if sleepErr := o.sleep(ctx, wait); sleepErr != nil {
				o.preservePartial(ch, ctx, &accumulated, "stream cancelled while waiting for rate limit")
				return
			}
			continue
		}

		message := err.Error()
		if errors.As(err, &rl) && rl.Scope == llm.ScopePerDay {
			message = "Daily limit exceeded: " + rl.Detail + ". Cannot retry until reset."
		}
		o.preservePartial(ch, ctx, &accumulated, message)
		return
	}
}

// attempt emits one full pass: starting, static sections, then one progress
// event per file in input order. Returns the first failure; text emitted so
// far stays in accumulated.
func (o *Orchestrator) attempt(ctx context.Context, files []models.FileRecord, ch chan<- events.Event, accumulated *strings.Builder) error {
	if !o.emit(ctx, ch, events.Event{Status: events.StatusStarting, Message: "Starting documentation generation"}) {
		return ctx.Err()
	}

	var codeFiles []models.FileRecord
	for _, file := range files {
		if chunker.IsCodeFile(file.Path) {
			codeFiles = append(codeFiles, file)
		}
	}

	// The table of contents depends only on filenames, so the static
	// sections stream before any backend call.
	tocDocs := make([]models.FileDoc, 0, len(codeFiles))
	for _, file := range codeFiles {
		tocDocs = append(tocDocs, models.FileDoc{Filename: file.Path})
	}
	for _, section := range o.assembler.StaticSections(tocDocs) {
		accumulated.WriteString(section)
		if !o.emit(ctx, ch, events.Event{Status: events.StatusProgress, Content: section}) {
			return ctx.Err()
		}
	}

	for _, file := range codeFiles {
		docs, err := o.generator.GenerateFileDocs(ctx, []models.FileRecord{file})
		if err != nil {
			return err
		}
		for _, doc := range docs {
			section := doc.Documentation + "\n\n"
			accumulated.WriteString(section)
			if !o.emit(ctx, ch, events.Event{Status: events.StatusProgress, Content: section}) {
				return ctx.Err()
			}
		}
	}
	return nil
}

// preservePartial stores whatever text accumulated before a failure as a
// single partial-tagged version, then emits the terminal error carrying the
// salvaged artifact id.
func (o *Orchestrator) preservePartial(ch chan<- events.Event, ctx context.Context, accumulated *strings.Builder, message string) {
	evt := events.Event{Status: events.StatusError, Message: message}
	if accumulated.Len() > 0 {
		artifactID, err := o.repo.CreatePartial(accumulated.String())
		if err != nil {
			o.logger.Error("failed to store partial documentation", zap.Error(err))
		} else {
			evt.ArtifactID = artifactID
			o.logger.Info("stored partial documentation", zap.String("artifact", artifactID))
		}
	}
	o.emit(ctx, ch, evt)
}

// emit sends one event unless the consumer is gone.
func (o *Orchestrator) emit(ctx context.Context, ch chan<- events.Event, evt events.Event) bool {
	select {
	case ch <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}
