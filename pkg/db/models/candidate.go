package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Candidate struct {
	ID              uuid.UUID `gorm:"column:id;type:char(36);primaryKey"`
	FullName        string    `gorm:"column:full_name;not null"`
	Mobile          string    `gorm:"column:mobile;not null;index"`
	Email           *string   `gorm:"column:email"`
	Skills          *string   `gorm:"column:skills"`
	CurrentLocation *string   `gorm:"column:current_location"`
	CreatedBy       uuid.UUID `gorm:"column:created_by;type:char(36);not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Candidate) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
