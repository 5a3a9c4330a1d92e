package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/medloop/medloop-backend/internal/logger"
	"github.com/medloop/medloop-backend/internal/repos"
	"github.com/medloop/medloop-backend/internal/types"
)

var ErrObjectiveNotFound = errors.New("learning objective not found")

type MasteryService interface {
	Evaluate(ctx context.Context, userID, objectiveID uuid.UUID) (*MasteryVerificationResult, error)
	Persist(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID, result *MasteryVerificationResult) error
	EvaluateAndPersist(ctx context.Context, userID, objectiveID uuid.UUID) (*MasteryVerificationResult, error)
	GetVerification(ctx context.Context, userID, objectiveID uuid.UUID) (*types.MasteryVerification, error)
}

type masteryService struct {
	db                      *gorm.DB
	log                     *logger.Logger
	objectiveRepo           repos.LearningObjectiveRepo
	validationResponseRepo  repos.ValidationResponseRepo
	scenarioResponseRepo    repos.ScenarioResponseRepo
	masteryVerificationRepo repos.MasteryVerificationRepo
	thresholds              MasteryThresholds
	now                     func() time.Time
}

func NewMasteryService(
	db *gorm.DB,
	log *logger.Logger,
	objectiveRepo repos.LearningObjectiveRepo,
	validationResponseRepo repos.ValidationResponseRepo,
	scenarioResponseRepo repos.ScenarioResponseRepo,
	masteryVerificationRepo repos.MasteryVerificationRepo,
	thresholds MasteryThresholds,
) MasteryService {
	serviceLog := log.With("service", "MasteryService")
	return &masteryService{
		db:                      db,
		log:                     serviceLog,
		objectiveRepo:           objectiveRepo,
		validationResponseRepo:  validationResponseRepo,
		scenarioResponseRepo:    scenarioResponseRepo,
		masteryVerificationRepo: masteryVerificationRepo,
		thresholds:              thresholds,
		now:                     time.Now,
	}
}

// Evaluate fetches the recent assessment window for (user, objective),
// runs the five criteria and aggregates the verdict. The only failure
// modes are the objective lookup and the two source queries; an empty
// window is a normal NOT_STARTED result, not an error.
func (s *masteryService) Evaluate(ctx context.Context, userID, objectiveID uuid.UUID) (*MasteryVerificationResult, error) {
	objective, err := s.objectiveRepo.GetByID(ctx, nil, objectiveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObjectiveNotFound
		}
		return nil, fmt.Errorf("Failed to load learning objective: %w", err)
	}

	assessments, err := s.fetchAssessments(ctx, userID, objectiveID)
	if err != nil {
		return nil, err
	}

	criteria := evaluateMasteryCriteria(assessments, objective.Complexity, s.thresholds)
	result := aggregateMastery(criteria, s.now())
	s.log.Debug("Evaluated mastery",
		"user_id", userID,
		"objective_id", objectiveID,
		"assessments", len(assessments),
		"status", result.Status,
		"overall_progress", result.OverallProgress,
	)
	return &result, nil
}

// fetchAssessments merges the two response sources into one normalized
// list, newest first, capped at the configured maximum. The two source
// queries are independent reads and run concurrently.
func (s *masteryService) fetchAssessments(ctx context.Context, userID, objectiveID uuid.UUID) ([]Assessment, error) {
	since := s.now().AddDate(0, 0, -s.thresholds.LookbackDays)
	limit := s.thresholds.MaxAssessments

	var validationRows []*types.ValidationResponse
	var scenarioRows []*types.ScenarioResponse

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		rows, err := s.validationResponseRepo.GetRecentByUserAndObjective(groupCtx, nil, userID, objectiveID, since, limit)
		if err != nil {
			return fmt.Errorf("Failed to load validation responses: %w", err)
		}
		validationRows = rows
		return nil
	})
	group.Go(func() error {
		rows, err := s.scenarioResponseRepo.GetRecentByUserAndObjective(groupCtx, nil, userID, objectiveID, since, limit)
		if err != nil {
			return fmt.Errorf("Failed to load scenario responses: %w", err)
		}
		scenarioRows = rows
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	assessments := make([]Assessment, 0, len(validationRows)+len(scenarioRows))
	for _, row := range validationRows {
		assessments = append(assessments, assessmentFromValidationResponse(row))
	}
	for _, row := range scenarioRows {
		assessments = append(assessments, assessmentFromScenarioResponse(row))
	}
	sort.SliceStable(assessments, func(i, j int) bool {
		return assessments[i].RespondedAt.After(assessments[j].RespondedAt)
	})
	if len(assessments) > limit {
		assessments = assessments[:limit]
	}
	return assessments, nil
}

// assessmentFromValidationResponse adapts a comprehension-style row.
// The source stores scores on 0.0..1.0 and is rescaled to 0..100. Type
// comes from the prompt kind: clinical reasoning prompts count as
// REASONING, everything else as COMPREHENSION.
func assessmentFromValidationResponse(row *types.ValidationResponse) Assessment {
	a := Assessment{
		ID:               row.ID,
		Score:            row.Score * 100,
		Type:             AssessmentComprehension,
		ConfidenceLevel:  row.ConfidenceLevel,
		CalibrationDelta: row.CalibrationDelta,
		RespondedAt:      row.RespondedAt,
	}
	if row.Prompt != nil {
		if row.Prompt.PromptType == types.PromptTypeClinicalReasoning {
			a.Type = AssessmentReasoning
		}
		if row.Prompt.DifficultyLevel != nil {
			difficulty := float64(*row.Prompt.DifficultyLevel)
			a.Difficulty = &difficulty
		}
	}
	if a.Difficulty == nil && row.InitialDifficulty != nil {
		difficulty := float64(*row.InitialDifficulty)
		a.Difficulty = &difficulty
	}
	return a
}

// assessmentFromScenarioResponse adapts a reasoning-style row. Scores
// are already 0..100; the scenario difficulty band collapses to its
// midpoint on the common scale.
func assessmentFromScenarioResponse(row *types.ScenarioResponse) Assessment {
	a := Assessment{
		ID:          row.ID,
		Score:       row.Score,
		Type:        AssessmentReasoning,
		RespondedAt: row.RespondedAt,
	}
	if row.Scenario != nil {
		midpoint := scenarioBandMidpoint(row.Scenario.Difficulty)
		a.Difficulty = &midpoint
	}
	return a
}

func scenarioBandMidpoint(difficulty string) float64 {
	switch difficulty {
	case types.ComplexityAdvanced:
		return 85
	case types.ComplexityIntermediate:
		return 55
	default:
		return 20
	}
}

// Persist upserts the verdict for (user, objective). Full replace: the
// previous row's fields are overwritten unconditionally and no history
// is kept. Concurrent evaluations race last-write-wins, which is safe
// because the computation is idempotent over the same window.
func (s *masteryService) Persist(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID, result *MasteryVerificationResult) error {
	snapshot := map[string]bool{
		"consecutive_high_scores": result.Criteria.ConsecutiveHighScores.Met,
		"assessment_type_variety": result.Criteria.AssessmentTypeVariety.Met,
		"difficulty_match":        result.Criteria.DifficultyMatch.Met,
		"calibration_accuracy":    result.Criteria.CalibrationAccuracy.Met,
		"time_spacing":            result.Criteria.TimeSpacing.Met,
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("Failed to serialize criteria snapshot: %w", err)
	}

	row := &types.MasteryVerification{
		UserID:      userID,
		ObjectiveID: objectiveID,
		Status:      result.Status,
		Criteria:    raw,
		VerifiedAt:  result.VerifiedAt,
	}
	if err := s.masteryVerificationRepo.Upsert(ctx, tx, row); err != nil {
		return fmt.Errorf("Failed to upsert mastery verification: %w", err)
	}
	return nil
}

func (s *masteryService) EvaluateAndPersist(ctx context.Context, userID, objectiveID uuid.UUID) (*MasteryVerificationResult, error) {
	result, err := s.Evaluate(ctx, userID, objectiveID)
	if err != nil {
		return nil, err
	}
	if err := s.Persist(ctx, nil, userID, objectiveID, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *masteryService) GetVerification(ctx context.Context, userID, objectiveID uuid.UUID) (*types.MasteryVerification, error) {
	row, err := s.masteryVerificationRepo.GetByUserAndObjective(ctx, nil, userID, objectiveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}
