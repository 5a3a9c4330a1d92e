package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medloop/medloop-backend/internal/logger"
	"github.com/medloop/medloop-backend/internal/repos"
	"github.com/medloop/medloop-backend/internal/types"
)

var ErrPromptNotFound = errors.New("validation prompt not found")
var ErrScenarioNotFound = errors.New("clinical scenario not found")

type SubmitValidationInput struct {
	PromptID         uuid.UUID `json:"prompt_id"`
	Score            float64   `json:"score"`
	ConfidenceLevel  *int      `json:"confidence_level,omitempty"`
	CalibrationDelta *float64  `json:"calibration_delta,omitempty"`
}

type SubmitScenarioInput struct {
	ScenarioID uuid.UUID `json:"scenario_id"`
	Score      float64   `json:"score"`
}

// ValidationService records graded challenge responses and re-evaluates
// mastery for the touched objective after each write.
type ValidationService interface {
	SubmitValidationResponse(ctx context.Context, userID uuid.UUID, input SubmitValidationInput) (*MasteryVerificationResult, error)
	SubmitScenarioResponse(ctx context.Context, userID uuid.UUID, input SubmitScenarioInput) (*MasteryVerificationResult, error)
}

type validationService struct {
	db                     *gorm.DB
	log                    *logger.Logger
	validationResponseRepo repos.ValidationResponseRepo
	scenarioResponseRepo   repos.ScenarioResponseRepo
	userEventRepo          repos.UserEventRepo
	masteryService         MasteryService
	now                    func() time.Time
}

func NewValidationService(
	db *gorm.DB,
	log *logger.Logger,
	validationResponseRepo repos.ValidationResponseRepo,
	scenarioResponseRepo repos.ScenarioResponseRepo,
	userEventRepo repos.UserEventRepo,
	masteryService MasteryService,
) ValidationService {
	serviceLog := log.With("service", "ValidationService")
	return &validationService{
		db:                     db,
		log:                    serviceLog,
		validationResponseRepo: validationResponseRepo,
		scenarioResponseRepo:   scenarioResponseRepo,
		userEventRepo:          userEventRepo,
		masteryService:         masteryService,
		now:                    time.Now,
	}
}

func (s *validationService) SubmitValidationResponse(ctx context.Context, userID uuid.UUID, input SubmitValidationInput) (*MasteryVerificationResult, error) {
	var prompt types.ValidationPrompt
	if err := s.db.WithContext(ctx).Where("id = ?", input.PromptID).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, fmt.Errorf("Failed to load validation prompt: %w", err)
	}
	if input.Score < 0 || input.Score > 1 {
		return nil, fmt.Errorf("score must be on the 0..1 scale")
	}

	row := &types.ValidationResponse{
		UserID:           userID,
		PromptID:         prompt.ID,
		Score:            input.Score,
		ConfidenceLevel:  input.ConfidenceLevel,
		CalibrationDelta: input.CalibrationDelta,
		RespondedAt:      s.now(),
	}
	if _, err := s.validationResponseRepo.Create(ctx, nil, []*types.ValidationResponse{row}); err != nil {
		return nil, fmt.Errorf("Failed to record validation response: %w", err)
	}
	s.recordEvent(ctx, userID, "validation_response", map[string]interface{}{
		"prompt_id":    prompt.ID,
		"objective_id": prompt.ObjectiveID,
		"score":        input.Score,
	})

	return s.masteryService.EvaluateAndPersist(ctx, userID, prompt.ObjectiveID)
}

func (s *validationService) SubmitScenarioResponse(ctx context.Context, userID uuid.UUID, input SubmitScenarioInput) (*MasteryVerificationResult, error) {
	var scenario types.ClinicalScenario
	if err := s.db.WithContext(ctx).Where("id = ?", input.ScenarioID).First(&scenario).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScenarioNotFound
		}
		return nil, fmt.Errorf("Failed to load clinical scenario: %w", err)
	}
	if input.Score < 0 || input.Score > 100 {
		return nil, fmt.Errorf("score must be on the 0..100 scale")
	}

	row := &types.ScenarioResponse{
		UserID:      userID,
		ScenarioID:  scenario.ID,
		Score:       input.Score,
		RespondedAt: s.now(),
	}
	if _, err := s.scenarioResponseRepo.Create(ctx, nil, []*types.ScenarioResponse{row}); err != nil {
		return nil, fmt.Errorf("Failed to record scenario response: %w", err)
	}
	s.recordEvent(ctx, userID, "scenario_response", map[string]interface{}{
		"scenario_id":  scenario.ID,
		"objective_id": scenario.ObjectiveID,
		"score":        input.Score,
	})

	return s.masteryService.EvaluateAndPersist(ctx, userID, scenario.ObjectiveID)
}

// recordEvent is best-effort; a failed analytics write never fails the
// submission.
func (s *validationService) recordEvent(ctx context.Context, userID uuid.UUID, eventType string, payload map[string]interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("Failed to encode user event payload", "error", err)
		return
	}
	_, err = s.userEventRepo.Create(ctx, nil, []*types.UserEvent{{
		UserID:    userID,
		EventType: eventType,
		Payload:   raw,
	}})
	if err != nil {
		s.log.Warn("Failed to record user event", "event_type", eventType, "error", err)
	}
}
