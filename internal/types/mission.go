package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mission statuses.
const (
	MissionPending   = "pending"
	MissionCompleted = "completed"
	MissionSkipped   = "skipped"
)

type Mission struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID          `gorm:"type:uuid;not null;index:idx_mission_user_due,priority:1" json:"user_id"`
	User        *User              `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ObjectiveID uuid.UUID          `gorm:"type:uuid;not null;index" json:"objective_id"`
	Objective   *LearningObjective `gorm:"constraint:OnDelete:CASCADE;foreignKey:ObjectiveID;references:ID" json:"objective,omitempty"`
	Status      string             `gorm:"column:status;not null;default:'pending'" json:"status"`
	Priority    float64            `gorm:"column:priority;not null;default:0" json:"priority"`
	DueAt       time.Time          `gorm:"column:due_at;not null;index:idx_mission_user_due,priority:2" json:"due_at"`
	CompletedAt *time.Time         `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Score       *float64           `gorm:"column:score" json:"score,omitempty"`
	CreatedAt   time.Time          `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt     `gorm:"index" json:"deleted_at,omitempty"`
}

func (Mission) TableName() string { return "mission" }
