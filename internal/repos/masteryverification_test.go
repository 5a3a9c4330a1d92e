package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/medloop/medloop-backend/internal/logger"
	"github.com/medloop/medloop-backend/internal/types"
)

// openTestDB gives an in-memory sqlite database with the verification
// table created by hand: the production schema leans on Postgres uuid
// defaults that sqlite cannot express, and the repo under test never
// relies on them.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	ddl := `CREATE TABLE mastery_verification (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  objective_id TEXT NOT NULL,
  status TEXT NOT NULL,
  criteria TEXT,
  verified_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME,
  UNIQUE (user_id, objective_id)
)`
	if err := db.Exec(ddl).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DROP TABLE mastery_verification")
	})
	return db
}

func TestMasteryVerificationUpsertReplacesInPlace(t *testing.T) {
	db := openTestDB(t)
	repo := NewMasteryVerificationRepo(db, logger.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	objectiveID := uuid.New()

	first := &types.MasteryVerification{
		ID:          uuid.New(),
		UserID:      userID,
		ObjectiveID: objectiveID,
		Status:      types.MasteryInProgress,
		Criteria:    []byte(`{"consecutive_high_scores":true,"assessment_type_variety":false,"difficulty_match":true,"calibration_accuracy":false,"time_spacing":true}`),
	}
	if err := repo.Upsert(ctx, nil, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	got, err := repo.GetByUserAndObjective(ctx, nil, userID, objectiveID)
	if err != nil {
		t.Fatalf("get after first upsert: %v", err)
	}
	if got.Status != types.MasteryInProgress {
		t.Fatalf("status = %q, want IN_PROGRESS", got.Status)
	}
	if got.VerifiedAt != nil {
		t.Fatalf("verified_at should be nil before verification")
	}

	verifiedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	second := &types.MasteryVerification{
		ID:          uuid.New(),
		UserID:      userID,
		ObjectiveID: objectiveID,
		Status:      types.MasteryVerified,
		Criteria:    []byte(`{"consecutive_high_scores":true,"assessment_type_variety":true,"difficulty_match":true,"calibration_accuracy":true,"time_spacing":true}`),
		VerifiedAt:  &verifiedAt,
	}
	if err := repo.Upsert(ctx, nil, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err = repo.GetByUserAndObjective(ctx, nil, userID, objectiveID)
	if err != nil {
		t.Fatalf("get after second upsert: %v", err)
	}
	if got.Status != types.MasteryVerified {
		t.Fatalf("status = %q, want VERIFIED after replace", got.Status)
	}
	if got.VerifiedAt == nil {
		t.Fatalf("verified_at lost on replace")
	}
	if got.ID != first.ID {
		t.Fatalf("replace must keep the original row id, got %s want %s", got.ID, first.ID)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert must report the persisted row back to the caller, got %s want %s", second.ID, first.ID)
	}

	var count int64
	if err := db.Model(&types.MasteryVerification{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row per (user, objective), got %d", count)
	}
}

func TestMasteryVerificationCountByUserAndStatus(t *testing.T) {
	db := openTestDB(t)
	repo := NewMasteryVerificationRepo(db, logger.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	statuses := []string{types.MasteryVerified, types.MasteryVerified, types.MasteryInProgress}
	for _, status := range statuses {
		row := &types.MasteryVerification{
			ID:          uuid.New(),
			UserID:      userID,
			ObjectiveID: uuid.New(),
			Status:      status,
			Criteria:    []byte(`{}`),
		}
		if err := repo.Upsert(ctx, nil, row); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	verified, err := repo.CountByUserAndStatus(ctx, nil, userID, types.MasteryVerified)
	if err != nil {
		t.Fatalf("count verified: %v", err)
	}
	if verified != 2 {
		t.Fatalf("verified count = %d, want 2", verified)
	}

	inProgress, err := repo.CountByUserAndStatus(ctx, nil, userID, types.MasteryInProgress)
	if err != nil {
		t.Fatalf("count in progress: %v", err)
	}
	if inProgress != 1 {
		t.Fatalf("in-progress count = %d, want 1", inProgress)
	}
}

func TestMasteryVerificationGetByUserIDNilUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewMasteryVerificationRepo(db, logger.NewNop())

	rows, err := repo.GetByUserID(context.Background(), nil, uuid.Nil)
	if err != nil {
		t.Fatalf("get by nil user: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows for the nil user, got %d", len(rows))
	}
}
