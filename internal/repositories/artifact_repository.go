// Package repositories holds the persistence layer for documentation
// artifacts, their version chains and refinement conversations.
package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"docfoundry/internal/models"
)

// ErrArtifactNotFound is the one hard failure of the store: the caller
// referenced an artifact id that was never created (or already expired with
// the process).
var ErrArtifactNotFound = errors.New("artifact not found")

// ChatHistoryLimit caps the refinement conversation kept per artifact;
// oldest turns are dropped first.
const ChatHistoryLimit = 5

type ArtifactRepository interface {
	// Create allocates a new artifact whose single version is number 1.
	Create(content string) (string, error)
	// CreatePartial is Create for content salvaged from an interrupted
	// generation; the version carries the partial marker.
	CreatePartial(content string) (string, error)
	GetCurrent(artifactID string) (*models.Version, error)
	// AppendVersion adds the next version and moves the current pointer.
	// When content is byte-identical to the current version it appends
	// nothing and reports created=false.
	AppendVersion(artifactID, content, feedback string) (version *models.Version, created bool, err error)
	RecordTurn(artifactID, userText, assistantText string) error
	// RecentTurns returns up to n newest turns in chronological order.
	RecentTurns(artifactID string, n int) ([]models.ChatTurn, error)
	// ResetToSingle replaces the whole chain with one fresh version 1 and
	// clears the conversation; used after external publication.
	ResetToSingle(artifactID, content string) error
}

type artifactRepository struct {
	db *gorm.DB
}

func NewArtifactRepository(db *gorm.DB) ArtifactRepository {
	return &artifactRepository{db: db}
}

func (r *artifactRepository) Create(content string) (string, error) {
	return r.create(content, false)
}

func (r *artifactRepository) CreatePartial(content string) (string, error) {
	return r.create(content, true)
}

func (r *artifactRepository) create(content string, partial bool) (string, error) {
	id := uuid.NewString()
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Artifact{ID: id, CurrentVersion: 1}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Version{
			ArtifactID:    id,
			VersionNumber: 1,
			Content:       content,
			Partial:       partial,
		}).Error
	})
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	return id, nil
}

func (r *artifactRepository) getArtifact(tx *gorm.DB, artifactID string) (*models.Artifact, error) {
	var artifact models.Artifact
	res := tx.Where("id = ?", artifactID).Take(&artifact)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrArtifactNotFound
		}
		return nil, res.Error
	}
	return &artifact, nil
}

func (r *artifactRepository) GetCurrent(artifactID string) (*models.Version, error) {
	artifact, err := r.getArtifact(r.db, artifactID)
	if err != nil {
		return nil, err
	}
	var version models.Version
	res := r.db.Where("artifact_id = ? AND version_number = ?", artifactID, artifact.CurrentVersion).Take(&version)
	if res.Error != nil {
		return nil, res.Error
	}
	return &version, nil
}

func (r *artifactRepository) AppendVersion(artifactID, content, feedback string) (*models.Version, bool, error) {
	var out *models.Version
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		artifact, err := r.getArtifact(tx, artifactID)
		if err != nil {
			return err
		}
		var current models.Version
		if err := tx.Where("artifact_id = ? AND version_number = ?", artifactID, artifact.CurrentVersion).
			Take(&current).Error; err != nil {
			return err
		}
		if current.Content == content {
			out = &current
			return nil
		}
		next := models.Version{
			ArtifactID:    artifactID,
			VersionNumber: artifact.CurrentVersion + 1,
			Content:       content,
		}
		if feedback != "" {
			next.Feedback = &feedback
		}
		if err := tx.Create(&next).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Artifact{}).Where("id = ?", artifactID).
			Update("current_version", next.VersionNumber).Error; err != nil {
			return err
		}
		out = &next
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

func (r *artifactRepository) RecordTurn(artifactID, userText, assistantText string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.getArtifact(tx, artifactID); err != nil {
			return err
		}
		turn := models.ChatTurn{
			ArtifactID:       artifactID,
			UserMessage:      userText,
			AssistantMessage: assistantText,
		}
		if err := tx.Create(&turn).Error; err != nil {
			return err
		}
		// Drop everything older than the newest ChatHistoryLimit turns.
		var stale []uint
		if err := tx.Model(&models.ChatTurn{}).
			Where("artifact_id = ?", artifactID).
			Order("id desc").
			Offset(ChatHistoryLimit).
			Pluck("id", &stale).Error; err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		return tx.Delete(&models.ChatTurn{}, stale).Error
	})
}

func (r *artifactRepository) RecentTurns(artifactID string, n int) ([]models.ChatTurn, error) {
	if _, err := r.getArtifact(r.db, artifactID); err != nil {
		return nil, err
	}
	if n <= 0 || n > ChatHistoryLimit {
		n = ChatHistoryLimit
	}
	var turns []models.ChatTurn
	if err := r.db.Where("artifact_id = ?", artifactID).
		Order("id desc").Limit(n).Find(&turns).Error; err != nil {
		return nil, err
	}
	// Newest-first from the query; callers want chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (r *artifactRepository) ResetToSingle(artifactID, content string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.getArtifact(tx, artifactID); err != nil {
			return err
		}
		if err := tx.Where("artifact_id = ?", artifactID).Delete(&models.Version{}).Error; err != nil {
			return err
		}
		if err := tx.Where("artifact_id = ?", artifactID).Delete(&models.ChatTurn{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Version{
			ArtifactID:    artifactID,
			VersionNumber: 1,
			Content:       content,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Artifact{}).Where("id = ?", artifactID).
			Update("current_version", 1).Error
	})
}
