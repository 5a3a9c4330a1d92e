package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Objective complexity bands. The mastery scorer maps these onto
// difficulty ranges when checking difficulty-matched performance.
const (
	ComplexityBasic        = "BASIC"
	ComplexityIntermediate = "INTERMEDIATE"
	ComplexityAdvanced     = "ADVANCED"
)

type LearningObjective struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Topic       string         `gorm:"column:topic;not null;index" json:"topic"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	Complexity  string         `gorm:"column:complexity;not null;default:'BASIC'" json:"complexity"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearningObjective) TableName() string { return "learning_objective" }
