package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ObjectiveReviewState carries the spaced-repetition bookkeeping for one
// (user, objective) pair: the current interval rung and when the
// objective next becomes due.
type ObjectiveReviewState struct {
	ID           uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID          `gorm:"type:uuid;not null;index:idx_user_objective_review,unique,priority:1" json:"user_id"`
	User         *User              `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ObjectiveID  uuid.UUID          `gorm:"type:uuid;not null;index:idx_user_objective_review,unique,priority:2" json:"objective_id"`
	Objective    *LearningObjective `gorm:"constraint:OnDelete:CASCADE;foreignKey:ObjectiveID;references:ID" json:"objective,omitempty"`
	IntervalDays int                `gorm:"column:interval_days;not null;default:1" json:"interval_days"`
	NextReviewAt *time.Time         `gorm:"column:next_review_at;index" json:"next_review_at,omitempty"`
	LastScore    float64            `gorm:"column:last_score;not null;default:0" json:"last_score"`
	Attempts     int                `gorm:"column:attempts;not null;default:0" json:"attempts"`
	Correct      int                `gorm:"column:correct;not null;default:0" json:"correct"`
	CreatedAt    time.Time          `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time          `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt     `gorm:"index" json:"deleted_at,omitempty"`
}

func (ObjectiveReviewState) TableName() string { return "objective_review_state" }
