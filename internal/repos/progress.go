package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/types"
)

type ProgressRepo interface {
  Create(ctx context.Context, tx *gorm.DB, records []*types.SubmoduleProgress) ([]*types.SubmoduleProgress, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SubmoduleProgress, error)
  GetBySubmoduleIDs(ctx context.Context, tx *gorm.DB, submoduleIDs []uuid.UUID) ([]*types.SubmoduleProgress, error)
}

type progressRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
  return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (pr *progressRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.SubmoduleProgress) ([]*types.SubmoduleProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  if len(records) == 0 {
    return []*types.SubmoduleProgress{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
    return nil, err
  }
  return records, nil
}

func (pr *progressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SubmoduleProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []*types.SubmoduleProgress
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *progressRepo) GetBySubmoduleIDs(ctx context.Context, tx *gorm.DB, submoduleIDs []uuid.UUID) ([]*types.SubmoduleProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []*types.SubmoduleProgress
  if len(submoduleIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("submodule_id IN ?", submoduleIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
