package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/medloop/medloop-backend/internal/logger"
  "github.com/medloop/medloop-backend/internal/types"
)

type ObjectiveReviewStateRepo interface {
  Upsert(ctx context.Context, tx *gorm.DB, row *types.ObjectiveReviewState) error
  GetByUserAndObjective(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID) (*types.ObjectiveReviewState, error)
  GetDueByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, asOf time.Time) ([]*types.ObjectiveReviewState, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ObjectiveReviewState, error)
}

type objectiveReviewStateRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewObjectiveReviewStateRepo(db *gorm.DB, baseLog *logger.Logger) ObjectiveReviewStateRepo {
  repoLog := baseLog.With("repo", "ObjectiveReviewStateRepo")
  return &objectiveReviewStateRepo{db: db, log: repoLog}
}

func (r *objectiveReviewStateRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ObjectiveReviewState) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND objective_id = ?", row.UserID, row.ObjectiveID).
    Assign(map[string]interface{}{
      "interval_days":  row.IntervalDays,
      "next_review_at": row.NextReviewAt,
      "last_score":     row.LastScore,
      "attempts":       row.Attempts,
      "correct":        row.Correct,
    }).
    FirstOrCreate(row).Error; err != nil {
    return err
  }
  return nil
}

func (r *objectiveReviewStateRepo) GetByUserAndObjective(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID) (*types.ObjectiveReviewState, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.ObjectiveReviewState
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND objective_id = ?", userID, objectiveID).
    First(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *objectiveReviewStateRepo) GetDueByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, asOf time.Time) ([]*types.ObjectiveReviewState, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ObjectiveReviewState
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND next_review_at IS NOT NULL AND next_review_at <= ?", userID, asOf).
    Order("next_review_at").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *objectiveReviewStateRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ObjectiveReviewState, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ObjectiveReviewState
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
