// Package refine applies natural-language feedback to an existing
// documentation artifact through the model backend.
package refine

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"docfoundry/internal/llm"
	"docfoundry/internal/models"
	"docfoundry/internal/repositories"
)

//go:embed prompts/*.tmpl
var embeddedPrompts embed.FS

var refinePrompt = template.Must(template.ParseFS(embeddedPrompts, "prompts/refine.tmpl"))

// FallbackApology replaces the explanation whenever the backend's output
// cannot be parsed; the document is returned unchanged rather than failing
// the request.
const FallbackApology = "I couldn't process your feedback due to an issue with the response format. Please try again."

type refinePromptData struct {
	CurrentDocs string
	History     string
	Feedback    string
}

// Engine drives one refinement round: current document + recent
// conversation in, structured result out, version appended only on change.
// Refinements against the same artifact serialize on a per-artifact lock so
// concurrent feedback cannot lose updates to the current-version pointer.
type Engine struct {
	repo    repositories.ArtifactRepository
	backend llm.Backend
	logger  *zap.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewEngine(repo repositories.ArtifactRepository, backend llm.Backend, logger *zap.Logger) *Engine {
	return &Engine{
		repo:    repo,
		backend: backend,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (e *Engine) artifactLock(artifactID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	mu, ok := e.locks[artifactID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[artifactID] = mu
	}
	return mu
}

// Refine retrieves the artifact's current content and up to five recent
// turns, asks the backend for a structured revision, and commits a new
// version only when the content actually changed. Malformed backend output
// degrades to the fixed apology with the document unchanged; an unknown
// artifact id is the only hard failure.
func (e *Engine) Refine(ctx context.Context, artifactID, feedback string) (*models.RefinementResult, error) {
	lock := e.artifactLock(artifactID)
	lock.Lock()
	defer lock.Unlock()

	current, err := e.repo.GetCurrent(artifactID)
	if err != nil {
		return nil, err
	}
	turns, err := e.repo.RecentTurns(artifactID, repositories.ChatHistoryLimit)
	if err != nil {
		return nil, err
	}

	prompt, err := e.renderPrompt(current.Content, turns, feedback)
	if err != nil {
		return nil, fmt.Errorf("render refine prompt: %w", err)
	}

	explanation := FallbackApology
	updatedDocs := current.Content

	raw, err := e.backend.Generate(ctx, prompt)
	if err != nil {
		// Degrade to a no-op revision; the turn is still recorded below.
		e.logger.Error("refinement backend call failed",
			zap.String("artifact", artifactID), zap.Error(err))
	} else if result, parseErr := parseStructuredResult(raw); parseErr != nil {
		e.logger.Warn("malformed structured result from backend",
			zap.String("artifact", artifactID), zap.Int("rawLen", len(raw)))
	} else {
		explanation = result.Response
		updatedDocs = result.UpdatedDocs
	}

	if err := e.repo.RecordTurn(artifactID, feedback, explanation); err != nil {
		return nil, err
	}

	out := &models.RefinementResult{Explanation: explanation, UpdatedDocs: updatedDocs}
	if updatedDocs != current.Content {
		version, created, err := e.repo.AppendVersion(artifactID, updatedDocs, feedback)
		if err != nil {
			return nil, err
		}
		if created {
			e.logger.Info("created documentation version",
				zap.String("artifact", artifactID), zap.Int("version", version.VersionNumber))
			out.Diff = unifiedDiff(current.Content, updatedDocs, current.VersionNumber, version.VersionNumber)
		}
	}
	return out, nil
}

func (e *Engine) renderPrompt(currentDocs string, turns []models.ChatTurn, feedback string) (string, error) {
	history := make([]string, 0, len(turns))
	for _, turn := range turns {
		history = append(history, fmt.Sprintf("User: %s\nAssistant: %s", turn.UserMessage, turn.AssistantMessage))
	}
	var sb strings.Builder
	err := refinePrompt.Execute(&sb, refinePromptData{
		CurrentDocs: currentDocs,
		History:     strings.Join(history, "\n"),
		Feedback:    feedback,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// unifiedDiff renders a line-based unified diff between two versions.
func unifiedDiff(before, after string, fromVersion, toVersion int) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: fmt.Sprintf("version %d", fromVersion),
		ToFile:   fmt.Sprintf("version %d", toVersion),
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}
