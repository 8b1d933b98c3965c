package mocks

import (
	"docfoundry/internal/models"
)

type ArtifactRepositoryMock struct {
	CreateFunc        func(content string) (string, error)
	CreatePartialFunc func(content string) (string, error)
	GetCurrentFunc    func(artifactID string) (*models.Version, error)
	AppendVersionFunc func(artifactID, content, feedback string) (*models.Version, bool, error)
	RecordTurnFunc    func(artifactID, userText, assistantText string) error
	RecentTurnsFunc   func(artifactID string, n int) ([]models.ChatTurn, error)
	ResetToSingleFunc func(artifactID, content string) error
}

func (m *ArtifactRepositoryMock) Create(content string) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(content)
	}
	return "mock-artifact-id", nil
}

func (m *ArtifactRepositoryMock) CreatePartial(content string) (string, error) {
	if m.CreatePartialFunc != nil {
		return m.CreatePartialFunc(content)
	}
	return "mock-partial-id", nil
}

func (m *ArtifactRepositoryMock) GetCurrent(artifactID string) (*models.Version, error) {
	if m.GetCurrentFunc != nil {
		return m.GetCurrentFunc(artifactID)
	}
	return &models.Version{ArtifactID: artifactID, VersionNumber: 1}, nil
}

func (m *ArtifactRepositoryMock) AppendVersion(artifactID, content, feedback string) (*models.Version, bool, error) {
	if m.AppendVersionFunc != nil {
		return m.AppendVersionFunc(artifactID, content, feedback)
	}
	return &models.Version{ArtifactID: artifactID, VersionNumber: 2, Content: content}, true, nil
}

func (m *ArtifactRepositoryMock) RecordTurn(artifactID, userText, assistantText string) error {
	if m.RecordTurnFunc != nil {
		return m.RecordTurnFunc(artifactID, userText, assistantText)
	}
	return nil
}

func (m *ArtifactRepositoryMock) RecentTurns(artifactID string, n int) ([]models.ChatTurn, error) {
	if m.RecentTurnsFunc != nil {
		return m.RecentTurnsFunc(artifactID, n)
	}
	return nil, nil
}

func (m *ArtifactRepositoryMock) ResetToSingle(artifactID, content string) error {
	if m.ResetToSingleFunc != nil {
		return m.ResetToSingleFunc(artifactID, content)
	}
	return nil
}
