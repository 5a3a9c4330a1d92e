package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClinicalScenario struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ObjectiveID uuid.UUID          `gorm:"type:uuid;not null;index" json:"objective_id"`
	Objective   *LearningObjective `gorm:"constraint:OnDelete:CASCADE;foreignKey:ObjectiveID;references:ID" json:"objective,omitempty"`
	Difficulty  string             `gorm:"column:difficulty;not null;default:'BASIC'" json:"difficulty"`
	Vignette    string             `gorm:"column:vignette;not null" json:"vignette"`
	CreatedAt   time.Time          `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt     `gorm:"index" json:"deleted_at,omitempty"`
}

func (ClinicalScenario) TableName() string { return "clinical_scenario" }
