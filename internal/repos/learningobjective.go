package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/medloop/medloop-backend/internal/logger"
  "github.com/medloop/medloop-backend/internal/types"
)

type LearningObjectiveRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.LearningObjective) ([]*types.LearningObjective, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LearningObjective, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.LearningObjective, error)
  List(ctx context.Context, tx *gorm.DB, topic string) ([]*types.LearningObjective, error)
}

type learningObjectiveRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewLearningObjectiveRepo(db *gorm.DB, baseLog *logger.Logger) LearningObjectiveRepo {
  repoLog := baseLog.With("repo", "LearningObjectiveRepo")
  return &learningObjectiveRepo{db: db, log: repoLog}
}

func (r *learningObjectiveRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.LearningObjective) ([]*types.LearningObjective, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.LearningObjective{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *learningObjectiveRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LearningObjective, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.LearningObjective
  if err := transaction.WithContext(ctx).
    Where("id = ?", id).
    First(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *learningObjectiveRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.LearningObjective, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.LearningObjective
  if len(ids) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *learningObjectiveRepo) List(ctx context.Context, tx *gorm.DB, topic string) ([]*types.LearningObjective, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  query := transaction.WithContext(ctx)
  if topic != "" {
    query = query.Where("topic = ?", topic)
  }

  var results []*types.LearningObjective
  if err := query.Order("topic, title").Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
