package types

import (
  "time"

  "github.com/google/uuid"
)

const (
  ProgressStatusNotStarted = "Not Started"
  ProgressStatusInProgress = "In Progress"
  ProgressStatusCompleted  = "Completed"
)

// SubmoduleProgress tracks one user's completion of one submodule. Created
// with zeroed fields when the module is assembled or when the user is added
// to the module later; mutated by the progress-tracking surface.
type SubmoduleProgress struct {
  ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
  UserID               uuid.UUID  `gorm:"type:uuid;not null;index:idx_progress_user_submodule,unique" json:"user_id"`
  SubmoduleID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_progress_user_submodule,unique" json:"submodule_id"`
  Submodule            *Submodule `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubmoduleID;references:ID" json:"submodule,omitempty"`
  CompletionDate       *time.Time `gorm:"column:completion_date" json:"completion_date,omitempty"`
  CompletionPercentage int        `gorm:"column:completion_percentage;not null;default:0" json:"completion_percentage"`
  ProgressStatus       string     `gorm:"column:progress_status;not null" json:"progress_status"`
  LastUpdated          time.Time  `gorm:"column:last_updated;not null" json:"last_updated"`
}

func (SubmoduleProgress) TableName() string { return "submodule_progress" }
