package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/medloop/medloop-backend/internal/logger"
  "github.com/medloop/medloop-backend/internal/types"
)

type ScenarioResponseRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.ScenarioResponse) ([]*types.ScenarioResponse, error)
  GetRecentByUserAndObjective(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID, since time.Time, limit int) ([]*types.ScenarioResponse, error)
  GetRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.ScenarioResponse, error)
}

type scenarioResponseRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewScenarioResponseRepo(db *gorm.DB, baseLog *logger.Logger) ScenarioResponseRepo {
  repoLog := baseLog.With("repo", "ScenarioResponseRepo")
  return &scenarioResponseRepo{db: db, log: repoLog}
}

func (r *scenarioResponseRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ScenarioResponse) ([]*types.ScenarioResponse, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.ScenarioResponse{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *scenarioResponseRepo) GetRecentByUserAndObjective(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID, since time.Time, limit int) ([]*types.ScenarioResponse, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ScenarioResponse
  if userID == uuid.Nil || objectiveID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Joins("JOIN clinical_scenario ON clinical_scenario.id = scenario_response.scenario_id").
    Where("scenario_response.user_id = ? AND clinical_scenario.objective_id = ? AND scenario_response.responded_at >= ?", userID, objectiveID, since).
    Order("scenario_response.responded_at DESC").
    Limit(limit).
    Preload("Scenario").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *scenarioResponseRepo) GetRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.ScenarioResponse, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ScenarioResponse
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND responded_at >= ?", userID, since).
    Order("responded_at DESC").
    Limit(limit).
    Preload("Scenario").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
