package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prompt kinds for validation challenges.
const (
	PromptTypeRecall            = "RECALL"
	PromptTypeExplanation       = "EXPLANATION"
	PromptTypeClinicalReasoning = "CLINICAL_REASONING"
)

type ValidationPrompt struct {
	ID              uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ObjectiveID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"objective_id"`
	Objective       *LearningObjective `gorm:"constraint:OnDelete:CASCADE;foreignKey:ObjectiveID;references:ID" json:"objective,omitempty"`
	PromptType      string             `gorm:"column:prompt_type;not null;default:'RECALL'" json:"prompt_type"`
	DifficultyLevel *int               `gorm:"column:difficulty_level" json:"difficulty_level,omitempty"`
	Stem            string             `gorm:"column:stem;not null" json:"stem"`
	CreatedAt       time.Time          `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"deleted_at,omitempty"`
}

func (ValidationPrompt) TableName() string { return "validation_prompt" }
