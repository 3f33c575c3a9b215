package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

type User struct {
  ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  Email     string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password  string         `gorm:"not null;column:password" json:"-"`
  Admin     bool           `gorm:"not null;default:false;column:admin" json:"admin"`
  Students  datatypes.JSON `gorm:"column:students;type:jsonb" json:"students,omitempty"`
  CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
  UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
  return "user"
}
