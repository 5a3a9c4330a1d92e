package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/medloop/medloop-backend/internal/logger"
  "github.com/medloop/medloop-backend/internal/types"
)

type MasteryVerificationRepo interface {
  Upsert(ctx context.Context, tx *gorm.DB, row *types.MasteryVerification) error
  GetByUserAndObjective(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID) (*types.MasteryVerification, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.MasteryVerification, error)
  CountByUserAndStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) (int64, error)
}

type masteryVerificationRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMasteryVerificationRepo(db *gorm.DB, baseLog *logger.Logger) MasteryVerificationRepo {
  repoLog := baseLog.With("repo", "MasteryVerificationRepo")
  return &masteryVerificationRepo{db: db, log: repoLog}
}

func (r *masteryVerificationRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.MasteryVerification) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if row == nil {
    return nil
  }

  // Upsert by unique user_id + objective_id; full replace of the
  // verdict fields, no history kept. The lookup dest must carry a zero
  // primary key: a populated ID on the dest would be added to the
  // query conditions and break the (user_id, objective_id) keying.
  query := transaction.WithContext(ctx).
    Where("user_id = ? AND objective_id = ?", row.UserID, row.ObjectiveID).
    Assign(map[string]interface{}{
      "status":      row.Status,
      "criteria":    row.Criteria,
      "verified_at": row.VerifiedAt,
    })
  if row.ID != uuid.Nil {
    query = query.Attrs(map[string]interface{}{"id": row.ID})
  }

  existing := types.MasteryVerification{}
  if err := query.FirstOrCreate(&existing).Error; err != nil {
    return err
  }
  *row = existing
  return nil
}

func (r *masteryVerificationRepo) GetByUserAndObjective(ctx context.Context, tx *gorm.DB, userID, objectiveID uuid.UUID) (*types.MasteryVerification, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.MasteryVerification
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND objective_id = ?", userID, objectiveID).
    First(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *masteryVerificationRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.MasteryVerification, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.MasteryVerification
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

func (r *masteryVerificationRepo) CountByUserAndStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.MasteryVerification{}).
    Where("user_id = ? AND status = ?", userID, status).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
