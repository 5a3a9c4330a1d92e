package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Mastery verification statuses.
const (
	MasteryNotStarted = "NOT_STARTED"
	MasteryInProgress = "IN_PROGRESS"
	MasteryVerified   = "VERIFIED"
)

// MasteryVerification is the durable verdict for one (user, objective)
// pair. Criteria holds a snapshot of the five boolean verdicts from the
// latest evaluation; every evaluation overwrites the row in full.
type MasteryVerification struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID          `gorm:"type:uuid;not null;index:idx_user_objective_mastery,unique,priority:1" json:"user_id"`
	User        *User              `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ObjectiveID uuid.UUID          `gorm:"type:uuid;not null;index:idx_user_objective_mastery,unique,priority:2" json:"objective_id"`
	Objective   *LearningObjective `gorm:"constraint:OnDelete:CASCADE;foreignKey:ObjectiveID;references:ID" json:"objective,omitempty"`
	Status      string             `gorm:"column:status;not null;default:'NOT_STARTED'" json:"status"`
	Criteria    datatypes.JSON     `gorm:"type:jsonb;column:criteria" json:"criteria"`
	VerifiedAt  *time.Time         `gorm:"column:verified_at" json:"verified_at,omitempty"`
	CreatedAt   time.Time          `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt     `gorm:"index" json:"deleted_at,omitempty"`
}

func (MasteryVerification) TableName() string { return "mastery_verification" }
