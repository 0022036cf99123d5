package models

import (
	"time"

	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is a recruiter or manager. Code is the short executive identifier
// that appears in audit text.
type Employee struct {
	ID           uuid.UUID          `gorm:"column:id;type:char(36);primaryKey"`
	Code         string             `gorm:"column:code;not null;uniqueIndex"`
	DisplayName  string             `gorm:"column:display_name;not null"`
	Email        string             `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	Role         enums.EmployeeRole `gorm:"column:role;not null"`
	Active       bool               `gorm:"column:active;not null;default:true"`
	LastLoginAt  *time.Time         `gorm:"column:last_login_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
