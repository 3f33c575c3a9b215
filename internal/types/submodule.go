package types

import (
  "time"

  "github.com/google/uuid"
)

const (
  SubmoduleTypeKinaesthetic = "kinaesthetic"
  SubmoduleTypeVisual       = "visual"
  SubmoduleTypeAuditory     = "auditory"
  SubmoduleTypeQuiz         = "quiz"
)

type Submodule struct {
  ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
  ModuleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"module_id"`
  Module      *Module   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
  Name        string    `gorm:"column:name;not null" json:"name"`
  Description string    `gorm:"column:description" json:"description"`
  Type        string    `gorm:"column:type;not null" json:"type"`
  Style       string    `gorm:"column:style" json:"style,omitempty"`
  LessonData  string    `gorm:"column:lesson_data" json:"lesson_data"`
  Transcript  string    `gorm:"column:transcript" json:"transcript,omitempty"`
  CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
  UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Submodule) TableName() string { return "submodule" }
