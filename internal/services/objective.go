package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medloop/medloop-backend/internal/logger"
	"github.com/medloop/medloop-backend/internal/repos"
	"github.com/medloop/medloop-backend/internal/types"
)

type ObjectiveService interface {
	List(ctx context.Context, topic string) ([]*types.LearningObjective, error)
	Get(ctx context.Context, id uuid.UUID) (*types.LearningObjective, error)
	GetPrompts(ctx context.Context, objectiveID uuid.UUID) ([]*types.ValidationPrompt, error)
	GetScenarios(ctx context.Context, objectiveID uuid.UUID) ([]*types.ClinicalScenario, error)
}

type objectiveService struct {
	db            *gorm.DB
	log           *logger.Logger
	objectiveRepo repos.LearningObjectiveRepo
}

func NewObjectiveService(db *gorm.DB, log *logger.Logger, objectiveRepo repos.LearningObjectiveRepo) ObjectiveService {
	serviceLog := log.With("service", "ObjectiveService")
	return &objectiveService{db: db, log: serviceLog, objectiveRepo: objectiveRepo}
}

func (s *objectiveService) List(ctx context.Context, topic string) ([]*types.LearningObjective, error) {
	return s.objectiveRepo.List(ctx, nil, topic)
}

func (s *objectiveService) Get(ctx context.Context, id uuid.UUID) (*types.LearningObjective, error) {
	objective, err := s.objectiveRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObjectiveNotFound
		}
		return nil, fmt.Errorf("Failed to load learning objective: %w", err)
	}
	return objective, nil
}

func (s *objectiveService) GetPrompts(ctx context.Context, objectiveID uuid.UUID) ([]*types.ValidationPrompt, error) {
	var results []*types.ValidationPrompt
	if err := s.db.WithContext(ctx).
		Where("objective_id = ?", objectiveID).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *objectiveService) GetScenarios(ctx context.Context, objectiveID uuid.UUID) ([]*types.ClinicalScenario, error) {
	var results []*types.ClinicalScenario
	if err := s.db.WithContext(ctx).
		Where("objective_id = ?", objectiveID).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
