package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Placement is the revenue record written when a candidate joins a client.
// Mobile is denormalized so number-level masking does not need a join.
type Placement struct {
	ID            uuid.UUID       `gorm:"column:id;type:char(36);primaryKey"`
	CandidateID   uuid.UUID       `gorm:"column:candidate_id;type:char(36);not null;index"`
	ClientJobID   uuid.UUID       `gorm:"column:client_job_id;type:char(36);not null"`
	Mobile        string          `gorm:"column:mobile;not null;index"`
	JoiningDate   *time.Time      `gorm:"column:joining_date;type:date"`
	BillingAmount decimal.Decimal `gorm:"column:billing_amount;type:numeric(12,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (p *Placement) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
