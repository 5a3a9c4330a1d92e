package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/medloop/medloop-backend/internal/logger"
  "github.com/medloop/medloop-backend/internal/types"
)

type MissionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.Mission) ([]*types.Mission, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Mission, error)
  GetPendingByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dueBy time.Time) ([]*types.Mission, error)
  Update(ctx context.Context, tx *gorm.DB, row *types.Mission) error
  ExistsPendingForObjective(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID) (bool, error)
}

type missionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMissionRepo(db *gorm.DB, baseLog *logger.Logger) MissionRepo {
  repoLog := baseLog.With("repo", "MissionRepo")
  return &missionRepo{db: db, log: repoLog}
}

func (r *missionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Mission) ([]*types.Mission, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.Mission{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *missionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Mission, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.Mission
  if err := transaction.WithContext(ctx).
    Preload("Objective").
    Where("id = ?", id).
    First(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *missionRepo) GetPendingByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dueBy time.Time) ([]*types.Mission, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Mission
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Preload("Objective").
    Where("user_id = ? AND status = ? AND due_at <= ?", userID, types.MissionPending, dueBy).
    Order("priority DESC, due_at").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *missionRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Mission) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  if err := transaction.WithContext(ctx).Save(row).Error; err != nil {
    return err
  }
  return nil
}

func (r *missionRepo) ExistsPendingForObjective(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Mission{}).
    Where("user_id = ? AND objective_id = ? AND status = ?", userID, objectiveID, types.MissionPending).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}
