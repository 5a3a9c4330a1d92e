package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/medloop/medloop-backend/internal/logger"
	"github.com/medloop/medloop-backend/internal/types"
)

type fakeMissionRepo struct {
	missions []*types.Mission
}

func (r *fakeMissionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Mission) ([]*types.Mission, error) {
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		r.missions = append(r.missions, row)
	}
	return rows, nil
}

func (r *fakeMissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Mission, error) {
	for _, row := range r.missions {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMissionRepo) GetPendingByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dueBy time.Time) ([]*types.Mission, error) {
	var out []*types.Mission
	for _, row := range r.missions {
		if row.UserID == userID && row.Status == types.MissionPending {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out, nil
}

func (r *fakeMissionRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Mission) error {
	for i, existing := range r.missions {
		if existing.ID == row.ID {
			r.missions[i] = row
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeMissionRepo) ExistsPendingForObjective(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID) (bool, error) {
	for _, row := range r.missions {
		if row.UserID == userID && row.ObjectiveID == objectiveID && row.Status == types.MissionPending {
			return true, nil
		}
	}
	return false, nil
}

type fakeReviewStateRepo struct {
	states []*types.ObjectiveReviewState
}

func (r *fakeReviewStateRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ObjectiveReviewState) error {
	for i, existing := range r.states {
		if existing.UserID == row.UserID && existing.ObjectiveID == row.ObjectiveID {
			r.states[i] = row
			return nil
		}
	}
	r.states = append(r.states, row)
	return nil
}

func (r *fakeReviewStateRepo) GetByUserAndObjective(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID) (*types.ObjectiveReviewState, error) {
	for _, row := range r.states {
		if row.UserID == userID && row.ObjectiveID == objectiveID {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeReviewStateRepo) GetDueByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, asOf time.Time) ([]*types.ObjectiveReviewState, error) {
	var out []*types.ObjectiveReviewState
	for _, row := range r.states {
		if row.UserID == userID && row.NextReviewAt != nil && !row.NextReviewAt.After(asOf) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeReviewStateRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ObjectiveReviewState, error) {
	return r.states, nil
}

type fakeObjectiveCatalog struct {
	fakeObjectiveRepo
	objectives []*types.LearningObjective
}

func (r *fakeObjectiveCatalog) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.LearningObjective, error) {
	return r.objectives, nil
}

func openMissionTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func timePtr(ts time.Time) *time.Time { return &ts }

func TestGenerateDailyOrdersByPriority(t *testing.T) {
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	userID := uuid.New()
	weakObjective := &types.LearningObjective{ID: uuid.New(), Complexity: types.ComplexityBasic}
	strongObjective := &types.LearningObjective{ID: uuid.New(), Complexity: types.ComplexityBasic}

	reviewStates := &fakeReviewStateRepo{states: []*types.ObjectiveReviewState{
		{UserID: userID, ObjectiveID: strongObjective.ID, LastScore: 95, Attempts: 4, NextReviewAt: timePtr(now.AddDate(0, 0, -1))},
		{UserID: userID, ObjectiveID: weakObjective.ID, LastScore: 40, Attempts: 4, NextReviewAt: timePtr(now.AddDate(0, 0, -1))},
	}}
	missions := &fakeMissionRepo{}
	svc := &missionService{
		log:             logger.NewNop(),
		missionRepo:     missions,
		reviewStateRepo: reviewStates,
		objectiveRepo:   &fakeObjectiveCatalog{objectives: []*types.LearningObjective{weakObjective, strongObjective}},
		thresholds:      DefaultMasteryThresholds(),
		now:             func() time.Time { return now },
	}

	queue, err := svc.GenerateDaily(context.Background(), userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("queue length = %d, want 2", len(queue))
	}
	if queue[0].ObjectiveID != weakObjective.ID {
		t.Fatalf("weak objective should lead the queue")
	}
}

func TestGenerateDailyIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	userID := uuid.New()
	objective := &types.LearningObjective{ID: uuid.New(), Complexity: types.ComplexityBasic}

	reviewStates := &fakeReviewStateRepo{states: []*types.ObjectiveReviewState{
		{UserID: userID, ObjectiveID: objective.ID, LastScore: 60, Attempts: 2, NextReviewAt: timePtr(now.AddDate(0, 0, -2))},
	}}
	missions := &fakeMissionRepo{}
	svc := &missionService{
		log:             logger.NewNop(),
		missionRepo:     missions,
		reviewStateRepo: reviewStates,
		objectiveRepo:   &fakeObjectiveCatalog{objectives: []*types.LearningObjective{objective}},
		thresholds:      DefaultMasteryThresholds(),
		now:             func() time.Time { return now },
	}

	if _, err := svc.GenerateDaily(context.Background(), userID); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	queue, err := svc.GenerateDaily(context.Background(), userID)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("repeated generation duplicated missions: %d", len(queue))
	}
}

func TestCompleteAdvancesAndResetsLadder(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	userID := uuid.New()
	objectiveID := uuid.New()

	missions := &fakeMissionRepo{missions: []*types.Mission{
		{ID: uuid.New(), UserID: userID, ObjectiveID: objectiveID, Status: types.MissionPending},
		{ID: uuid.New(), UserID: userID, ObjectiveID: objectiveID, Status: types.MissionPending},
	}}
	reviewStates := &fakeReviewStateRepo{states: []*types.ObjectiveReviewState{
		{UserID: userID, ObjectiveID: objectiveID, IntervalDays: 3, Attempts: 2, Correct: 1},
	}}
	svc := &missionService{
		db:              openMissionTestDB(t),
		log:             logger.NewNop(),
		missionRepo:     missions,
		reviewStateRepo: reviewStates,
		thresholds:      DefaultMasteryThresholds(),
		now:             func() time.Time { return now },
	}

	done, err := svc.Complete(context.Background(), userID, missions.missions[0].ID, 90)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != types.MissionCompleted || done.Score == nil || *done.Score != 90 {
		t.Fatalf("mission not completed: %+v", done)
	}

	state := reviewStates.states[0]
	if state.IntervalDays != 7 {
		t.Fatalf("interval = %d, want 7 after success from rung 3", state.IntervalDays)
	}
	if state.Attempts != 3 || state.Correct != 2 {
		t.Fatalf("attempt bookkeeping wrong: %+v", state)
	}
	if state.NextReviewAt == nil || !state.NextReviewAt.Equal(now.AddDate(0, 0, 7)) {
		t.Fatalf("next review = %v, want now+7d", state.NextReviewAt)
	}

	// A failing score on the second mission resets the ladder.
	if _, err := svc.Complete(context.Background(), userID, missions.missions[1].ID, 55); err != nil {
		t.Fatalf("complete failing: %v", err)
	}
	state = reviewStates.states[0]
	if state.IntervalDays != 1 {
		t.Fatalf("interval = %d, want reset to 1 after failure", state.IntervalDays)
	}
	if state.Correct != 2 {
		t.Fatalf("failure must not increment correct: %+v", state)
	}
}

func TestCompleteRejectsForeignMission(t *testing.T) {
	now := time.Now()
	owner := uuid.New()
	missions := &fakeMissionRepo{missions: []*types.Mission{
		{ID: uuid.New(), UserID: owner, ObjectiveID: uuid.New(), Status: types.MissionPending},
	}}
	svc := &missionService{
		db:          openMissionTestDB(t),
		log:         logger.NewNop(),
		missionRepo: missions,
		thresholds:  DefaultMasteryThresholds(),
		now:         func() time.Time { return now },
	}

	_, err := svc.Complete(context.Background(), uuid.New(), missions.missions[0].ID, 80)
	if !errors.Is(err, ErrMissionNotFound) {
		t.Fatalf("err = %v, want ErrMissionNotFound", err)
	}
}
