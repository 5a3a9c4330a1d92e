package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/medloop/medloop-backend/internal/logger"
  "github.com/medloop/medloop-backend/internal/types"
)

// UserTopicScore is one peer's mean score within a topic, used by the
// benchmarking queries.
type UserTopicScore struct {
  UserID    uuid.UUID `json:"user_id"`
  MeanScore float64   `json:"mean_score"`
}

type ValidationResponseRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.ValidationResponse) ([]*types.ValidationResponse, error)
  GetRecentByUserAndObjective(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID, since time.Time, limit int) ([]*types.ValidationResponse, error)
  GetRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.ValidationResponse, error)
  MeanScoresByTopicSince(ctx context.Context, tx *gorm.DB, topic string, since time.Time) ([]UserTopicScore, error)
}

type validationResponseRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewValidationResponseRepo(db *gorm.DB, baseLog *logger.Logger) ValidationResponseRepo {
  repoLog := baseLog.With("repo", "ValidationResponseRepo")
  return &validationResponseRepo{db: db, log: repoLog}
}

func (r *validationResponseRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ValidationResponse) ([]*types.ValidationResponse, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.ValidationResponse{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *validationResponseRepo) GetRecentByUserAndObjective(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID, since time.Time, limit int) ([]*types.ValidationResponse, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ValidationResponse
  if userID == uuid.Nil || objectiveID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Joins("JOIN validation_prompt ON validation_prompt.id = validation_response.prompt_id").
    Where("validation_response.user_id = ? AND validation_prompt.objective_id = ? AND validation_response.responded_at >= ?", userID, objectiveID, since).
    Order("validation_response.responded_at DESC").
    Limit(limit).
    Preload("Prompt").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *validationResponseRepo) GetRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.ValidationResponse, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ValidationResponse
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND responded_at >= ?", userID, since).
    Order("responded_at DESC").
    Limit(limit).
    Preload("Prompt").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *validationResponseRepo) MeanScoresByTopicSince(ctx context.Context, tx *gorm.DB, topic string, since time.Time) ([]UserTopicScore, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []UserTopicScore
  if err := transaction.WithContext(ctx).
    Model(&types.ValidationResponse{}).
    Select("validation_response.user_id AS user_id, AVG(validation_response.score) AS mean_score").
    Joins("JOIN validation_prompt ON validation_prompt.id = validation_response.prompt_id").
    Joins("JOIN learning_objective ON learning_objective.id = validation_prompt.objective_id").
    Where("learning_objective.topic = ? AND validation_response.responded_at >= ?", topic, since).
    Group("validation_response.user_id").
    Scan(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
