package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medloop/medloop-backend/internal/logger"
	"github.com/medloop/medloop-backend/internal/repos"
	"github.com/medloop/medloop-backend/internal/types"
)

var ErrMissionNotFound = errors.New("mission not found")

type MissionService interface {
	GenerateDaily(ctx context.Context, userID uuid.UUID) ([]*types.Mission, error)
	Complete(ctx context.Context, userID, missionID uuid.UUID, score float64) (*types.Mission, error)
	GetQueue(ctx context.Context, userID uuid.UUID) ([]*types.Mission, error)
}

type missionService struct {
	db              *gorm.DB
	log             *logger.Logger
	missionRepo     repos.MissionRepo
	reviewStateRepo repos.ObjectiveReviewStateRepo
	objectiveRepo   repos.LearningObjectiveRepo
	thresholds      MasteryThresholds
	now             func() time.Time
}

func NewMissionService(
	db *gorm.DB,
	log *logger.Logger,
	missionRepo repos.MissionRepo,
	reviewStateRepo repos.ObjectiveReviewStateRepo,
	objectiveRepo repos.LearningObjectiveRepo,
	thresholds MasteryThresholds,
) MissionService {
	serviceLog := log.With("service", "MissionService")
	return &missionService{
		db:              db,
		log:             serviceLog,
		missionRepo:     missionRepo,
		reviewStateRepo: reviewStateRepo,
		objectiveRepo:   objectiveRepo,
		thresholds:      thresholds,
		now:             time.Now,
	}
}

// GenerateDaily turns due review states into pending missions. Due-ness
// is a plain date-threshold comparison on next_review_at; priority
// ordering comes from the adaptation scorer. Objectives that already
// have a pending mission are skipped, so repeated calls are safe.
func (s *missionService) GenerateDaily(ctx context.Context, userID uuid.UUID) ([]*types.Mission, error) {
	now := s.now()
	dueStates, err := s.reviewStateRepo.GetDueByUser(ctx, nil, userID, now)
	if err != nil {
		return nil, fmt.Errorf("Failed to load due review states: %w", err)
	}
	if len(dueStates) == 0 {
		return s.GetQueue(ctx, userID)
	}

	objectiveIDs := make([]uuid.UUID, 0, len(dueStates))
	for _, state := range dueStates {
		objectiveIDs = append(objectiveIDs, state.ObjectiveID)
	}
	objectives, err := s.objectiveRepo.GetByIDs(ctx, nil, objectiveIDs)
	if err != nil {
		return nil, fmt.Errorf("Failed to load objectives for due states: %w", err)
	}
	complexityByID := make(map[uuid.UUID]string, len(objectives))
	for _, objective := range objectives {
		complexityByID[objective.ID] = objective.Complexity
	}

	var created []*types.Mission
	for _, state := range dueStates {
		exists, err := s.missionRepo.ExistsPendingForObjective(ctx, nil, userID, state.ObjectiveID)
		if err != nil {
			return nil, fmt.Errorf("Failed to check pending missions: %w", err)
		}
		if exists {
			continue
		}

		daysOverdue := 0.0
		if state.NextReviewAt != nil {
			daysOverdue = now.Sub(*state.NextReviewAt).Hours() / 24
		}
		priority := missionPriority(adaptationSignals{
			LastScore:   state.LastScore,
			Attempts:    state.Attempts,
			DaysOverdue: daysOverdue,
			Complexity:  complexityByID[state.ObjectiveID],
		})
		created = append(created, &types.Mission{
			UserID:      userID,
			ObjectiveID: state.ObjectiveID,
			Status:      types.MissionPending,
			Priority:    priority,
			DueAt:       now,
		})
	}

	if _, err := s.missionRepo.Create(ctx, nil, created); err != nil {
		return nil, fmt.Errorf("Failed to create missions: %w", err)
	}
	s.log.Info("Generated daily missions", "user_id", userID, "due_states", len(dueStates), "created", len(created))
	return s.GetQueue(ctx, userID)
}

// Complete marks a mission done and advances the spaced-repetition
// ladder: a high score climbs one rung, anything below resets to one
// day.
func (s *missionService) Complete(ctx context.Context, userID, missionID uuid.UUID, score float64) (*types.Mission, error) {
	mission, err := s.missionRepo.GetByID(ctx, nil, missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMissionNotFound
		}
		return nil, fmt.Errorf("Failed to load mission: %w", err)
	}
	if mission.UserID != userID {
		return nil, ErrMissionNotFound
	}

	now := s.now()
	success := score >= s.thresholds.HighScore

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mission.Status = types.MissionCompleted
		mission.CompletedAt = &now
		mission.Score = &score
		if err := s.missionRepo.Update(ctx, tx, mission); err != nil {
			return fmt.Errorf("Failed to update mission: %w", err)
		}

		state, err := s.reviewStateRepo.GetByUserAndObjective(ctx, tx, userID, mission.ObjectiveID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("Failed to load review state: %w", err)
			}
			state = &types.ObjectiveReviewState{
				UserID:      userID,
				ObjectiveID: mission.ObjectiveID,
			}
		}

		interval := nextReviewInterval(state.IntervalDays, success)
		nextReview := now.AddDate(0, 0, interval)
		state.IntervalDays = interval
		state.NextReviewAt = &nextReview
		state.LastScore = score
		state.Attempts++
		if success {
			state.Correct++
		}
		if err := s.reviewStateRepo.Upsert(ctx, tx, state); err != nil {
			return fmt.Errorf("Failed to upsert review state: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Completed mission", "user_id", userID, "mission_id", missionID, "score", score, "success", success)
	return mission, nil
}

func (s *missionService) GetQueue(ctx context.Context, userID uuid.UUID) ([]*types.Mission, error) {
	queue, err := s.missionRepo.GetPendingByUser(ctx, nil, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("Failed to load mission queue: %w", err)
	}
	return queue, nil
}
