package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// Module is the parent document for one upload. CreatedBy and Submodules are
// JSON id lists: Submodules stays empty on insert and is patched once the
// children exist (two-phase create, same as the original document layout).
type Module struct {
  ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  Name        string         `gorm:"column:name;not null" json:"name"`
  Description string         `gorm:"column:description" json:"description"`
  Content     string         `gorm:"column:content" json:"content"`
  Progress    int            `gorm:"column:progress;not null;default:0" json:"progress"`
  Image       string         `gorm:"column:image" json:"image"`
  CreatedBy   datatypes.JSON `gorm:"column:created_by;type:jsonb" json:"created_by"`
  Submodules  datatypes.JSON `gorm:"column:submodules;type:jsonb" json:"submodules"`
  CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
  UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Module) TableName() string { return "module" }
