package models

import (
	"time"

	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientJob is an opening posted by a client company.
type ClientJob struct {
	ID         uuid.UUID             `gorm:"column:id;type:char(36);primaryKey"`
	ClientName string                `gorm:"column:client_name;not null"`
	Title      string                `gorm:"column:title;not null"`
	Location   *string               `gorm:"column:location"`
	Openings   int                   `gorm:"column:openings;not null;default:1"`
	Status     enums.ClientJobStatus `gorm:"column:status;not null;default:open"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (j *ClientJob) BeforeCreate(*gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
