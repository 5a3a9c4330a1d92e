package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidationResponse stores one graded answer to a validation prompt.
// Score is stored on the grader's native 0.0..1.0 scale.
type ValidationResponse struct {
	ID                uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID            uuid.UUID         `gorm:"type:uuid;not null;index:idx_validation_response_user_time,priority:1" json:"user_id"`
	User              *User             `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	PromptID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"prompt_id"`
	Prompt            *ValidationPrompt `gorm:"constraint:OnDelete:CASCADE;foreignKey:PromptID;references:ID" json:"prompt,omitempty"`
	Score             float64           `gorm:"column:score;not null" json:"score"`
	ConfidenceLevel   *int              `gorm:"column:confidence_level" json:"confidence_level,omitempty"`
	CalibrationDelta  *float64          `gorm:"column:calibration_delta" json:"calibration_delta,omitempty"`
	InitialDifficulty *int              `gorm:"column:initial_difficulty" json:"initial_difficulty,omitempty"`
	RespondedAt       time.Time         `gorm:"column:responded_at;not null;index:idx_validation_response_user_time,priority:2" json:"responded_at"`
	CreatedAt         time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
}

func (ValidationResponse) TableName() string { return "validation_response" }
