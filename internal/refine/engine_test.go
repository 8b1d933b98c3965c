package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docfoundry/internal/models"
	"docfoundry/internal/repositories"
	"docfoundry/internal/tests/mocks"
)

func structuredResponse(t *testing.T, explanation, docs string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]string{
		"response":     explanation,
		"updated_docs": docs,
	})
	require.NoError(t, err)
	return string(raw)
}

func TestRefineAppendsVersionOnChange(t *testing.T) {
	var appendedContent, appendedFeedback string
	var recordedUser, recordedAssistant string
	repo := &mocks.ArtifactRepositoryMock{
		GetCurrentFunc: func(artifactID string) (*models.Version, error) {
			return &models.Version{ArtifactID: artifactID, VersionNumber: 1, Content: "old docs\n"}, nil
		},
		AppendVersionFunc: func(artifactID, content, feedback string) (*models.Version, bool, error) {
			appendedContent, appendedFeedback = content, feedback
			return &models.Version{ArtifactID: artifactID, VersionNumber: 2, Content: content}, true, nil
		},
		RecordTurnFunc: func(artifactID, userText, assistantText string) error {
			recordedUser, recordedAssistant = userText, assistantText
			return nil
		},
	}
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return structuredResponse(t, "Tightened the intro.", "new docs\n"), nil
		},
	}
	engine := NewEngine(repo, backend, zap.NewNop())

	result, err := engine.Refine(context.Background(), "artifact-1", "tighten the intro")

	require.NoError(t, err)
	assert.Equal(t, "Tightened the intro.", result.Explanation)
	assert.Equal(t, "new docs\n", result.UpdatedDocs)
	assert.Contains(t, result.Diff, "-old docs")
	assert.Contains(t, result.Diff, "+new docs")
	assert.Contains(t, result.Diff, "version 1")
	assert.Contains(t, result.Diff, "version 2")
	assert.Equal(t, "new docs\n", appendedContent)
	assert.Equal(t, "tighten the intro", appendedFeedback)
	assert.Equal(t, "tighten the intro", recordedUser)
	assert.Equal(t, "Tightened the intro.", recordedAssistant)
}

func TestRefineUnchangedContentSkipsVersion(t *testing.T) {
	appendCalled := false
	repo := &mocks.ArtifactRepositoryMock{
		GetCurrentFunc: func(artifactID string) (*models.Version, error) {
			return &models.Version{VersionNumber: 3, Content: "same docs"}, nil
		},
		AppendVersionFunc: func(artifactID, content, feedback string) (*models.Version, bool, error) {
			appendCalled = true
			return nil, false, nil
		},
	}
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return structuredResponse(t, "Nothing to change.", "same docs"), nil
		},
	}
	engine := NewEngine(repo, backend, zap.NewNop())

	result, err := engine.Refine(context.Background(), "artifact-1", "looks good?")

	require.NoError(t, err)
	assert.False(t, appendCalled)
	assert.Empty(t, result.Diff)
	assert.Equal(t, "same docs", result.UpdatedDocs)
}

func TestRefineMalformedOutputDegradesToApology(t *testing.T) {
	appendCalled := false
	turnRecorded := false
	repo := &mocks.ArtifactRepositoryMock{
		GetCurrentFunc: func(artifactID string) (*models.Version, error) {
			return &models.Version{VersionNumber: 1, Content: "current docs"}, nil
		},
		AppendVersionFunc: func(artifactID, content, feedback string) (*models.Version, bool, error) {
			appendCalled = true
			return nil, false, nil
		},
		RecordTurnFunc: func(artifactID, userText, assistantText string) error {
			turnRecorded = true
			assert.Equal(t, FallbackApology, assistantText)
			return nil
		},
	}
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "no json here, sorry", nil
		},
	}
	engine := NewEngine(repo, backend, zap.NewNop())

	result, err := engine.Refine(context.Background(), "artifact-1", "add examples")

	require.NoError(t, err)
	assert.Equal(t, FallbackApology, result.Explanation)
	assert.Equal(t, "current docs", result.UpdatedDocs)
	assert.Empty(t, result.Diff)
	assert.False(t, appendCalled)
	assert.True(t, turnRecorded)
}

func TestRefineBackendErrorDegradesToApology(t *testing.T) {
	repo := &mocks.ArtifactRepositoryMock{
		GetCurrentFunc: func(artifactID string) (*models.Version, error) {
			return &models.Version{VersionNumber: 1, Content: "current docs"}, nil
		},
	}
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", fmt.Errorf("backend exploded")
		},
	}
	engine := NewEngine(repo, backend, zap.NewNop())

	result, err := engine.Refine(context.Background(), "artifact-1", "help")

	require.NoError(t, err)
	assert.Equal(t, FallbackApology, result.Explanation)
	assert.Equal(t, "current docs", result.UpdatedDocs)
}

func TestRefineUnknownArtifactFails(t *testing.T) {
	repo := &mocks.ArtifactRepositoryMock{
		GetCurrentFunc: func(artifactID string) (*models.Version, error) {
			return nil, repositories.ErrArtifactNotFound
		},
	}
	engine := NewEngine(repo, &mocks.BackendMock{}, zap.NewNop())

	_, err := engine.Refine(context.Background(), "missing", "feedback")
	assert.ErrorIs(t, err, repositories.ErrArtifactNotFound)
}

func TestRefinePromptCarriesHistoryAndFeedback(t *testing.T) {
	var captured string
	repo := &mocks.ArtifactRepositoryMock{
		GetCurrentFunc: func(artifactID string) (*models.Version, error) {
			return &models.Version{VersionNumber: 1, Content: "the docs"}, nil
		},
		RecentTurnsFunc: func(artifactID string, n int) ([]models.ChatTurn, error) {
			return []models.ChatTurn{
				{UserMessage: "earlier question", AssistantMessage: "earlier answer"},
			}, nil
		},
	}
	backend := &mocks.BackendMock{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			captured = prompt
			return structuredResponse(t, "ok", "the docs v2"), nil
		},
	}
	engine := NewEngine(repo, backend, zap.NewNop())

	_, err := engine.Refine(context.Background(), "artifact-1", "new feedback")

	require.NoError(t, err)
	assert.Contains(t, captured, "the docs")
	assert.Contains(t, captured, "User: earlier question")
	assert.Contains(t, captured, "Assistant: earlier answer")
	assert.Contains(t, captured, "new feedback")
}
