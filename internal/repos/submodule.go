package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/types"
)

type SubmoduleRepo interface {
  Create(ctx context.Context, tx *gorm.DB, submodules []*types.Submodule) ([]*types.Submodule, error)
  GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Submodule, error)
}

type submoduleRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewSubmoduleRepo(db *gorm.DB, baseLog *logger.Logger) SubmoduleRepo {
  return &submoduleRepo{db: db, log: baseLog.With("repo", "SubmoduleRepo")}
}

func (sr *submoduleRepo) Create(ctx context.Context, tx *gorm.DB, submodules []*types.Submodule) ([]*types.Submodule, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  if len(submodules) == 0 {
    return []*types.Submodule{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&submodules).Error; err != nil {
    return nil, err
  }
  return submodules, nil
}

func (sr *submoduleRepo) GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Submodule, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  var results []*types.Submodule
  if len(moduleIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("module_id IN ?", moduleIDs).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
