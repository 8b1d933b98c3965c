package models

import "time"

// Artifact is one documentation generation's evolving state: an append-only
// version chain plus a bounded refinement conversation.
type Artifact struct {
	ID             string `gorm:"primaryKey;size:36"`
	CurrentVersion int    `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Versions []Version  `gorm:"foreignKey:ArtifactID;constraint:OnDelete:CASCADE"`
	Turns    []ChatTurn `gorm:"foreignKey:ArtifactID;constraint:OnDelete:CASCADE"`
}

// Version is one entry in an artifact's version chain. VersionNumber starts
// at 1 and is strictly increasing within the artifact. Feedback is nil for
// the initial version. Partial marks content salvaged from an interrupted
// generation.
type Version struct {
	ID            uint   `gorm:"primaryKey"`
	ArtifactID    string `gorm:"size:36;index;not null"`
	VersionNumber int    `gorm:"not null"`
	Content       string `gorm:"type:text"`
	Feedback      *string
	Partial       bool
	CreatedAt     time.Time
}

// ChatTurn is one user/assistant exchange in an artifact's refinement
// conversation. The store keeps only the newest five per artifact.
type ChatTurn struct {
	ID               uint   `gorm:"primaryKey"`
	ArtifactID       string `gorm:"size:36;index;not null"`
	UserMessage      string `gorm:"type:text"`
	AssistantMessage string `gorm:"type:text"`
	CreatedAt        time.Time
}
