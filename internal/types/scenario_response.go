package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScenarioResponse stores one graded clinical-reasoning attempt.
// Score is stored on a 0..100 scale, unlike ValidationResponse.
type ScenarioResponse struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index:idx_scenario_response_user_time,priority:1" json:"user_id"`
	User        *User             `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ScenarioID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"scenario_id"`
	Scenario    *ClinicalScenario `gorm:"constraint:OnDelete:CASCADE;foreignKey:ScenarioID;references:ID" json:"scenario,omitempty"`
	Score       float64           `gorm:"column:score;not null" json:"score"`
	RespondedAt time.Time         `gorm:"column:responded_at;not null;index:idx_scenario_response_user_time,priority:2" json:"responded_at"`
	CreatedAt   time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
}

func (ScenarioResponse) TableName() string { return "scenario_response" }
