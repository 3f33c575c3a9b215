package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/studykite/studykite-backend/internal/logger"
  "github.com/studykite/studykite-backend/internal/types"
)

type ModuleRepo interface {
  Create(ctx context.Context, tx *gorm.DB, modules []*types.Module) ([]*types.Module, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Module, error)
  UpdateSubmoduleIDs(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, submoduleIDs []byte) error
  UpdateCreatedBy(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, createdBy []byte) error
}

type moduleRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
  return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (mr *moduleRepo) Create(ctx context.Context, tx *gorm.DB, modules []*types.Module) ([]*types.Module, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  if len(modules) == 0 {
    return []*types.Module{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&modules).Error; err != nil {
    return nil, err
  }
  return modules, nil
}

func (mr *moduleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Module, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }

  var results []*types.Module
  if len(moduleIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", moduleIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (mr *moduleRepo) UpdateSubmoduleIDs(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, submoduleIDs []byte) error {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.Module{}).
    Where("id = ?", moduleID).
    Updates(map[string]any{
      "submodules": submoduleIDs,
      "updated_at": time.Now(),
    }).Error
}

func (mr *moduleRepo) UpdateCreatedBy(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, createdBy []byte) error {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.Module{}).
    Where("id = ?", moduleID).
    Updates(map[string]any{
      "created_by": createdBy,
      "updated_at": time.Now(),
    }).Error
}
