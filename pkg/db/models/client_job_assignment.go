package models

import (
	"time"

	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientJobAssignment links one candidate to one client job. The date columns
// are kept as text because historical rows carry free-form values; Feedback is
// the raw append-only log and is only ever decoded by pkg/followup.
type ClientJobAssignment struct {
	ID                  uuid.UUID           `gorm:"column:id;type:char(36);primaryKey"`
	CandidateID         uuid.UUID           `gorm:"column:candidate_id;type:char(36);not null;index"`
	ClientJobID         *uuid.UUID          `gorm:"column:client_job_id;type:char(36)"`
	AssignedTo          uuid.UUID           `gorm:"column:assigned_to;type:char(36);not null;index"`
	AssignedBy          uuid.UUID           `gorm:"column:assigned_by;type:char(36);not null"`
	ProfileStatus       enums.ProfileStatus `gorm:"column:profile_status;not null;default:''"`
	Remarks             string              `gorm:"column:remarks;not null;default:''"`
	NextFollowUpDate    *string             `gorm:"column:next_follow_up_date"`
	InterviewDate       *string             `gorm:"column:interview_date"`
	ExpectedJoiningDate *string             `gorm:"column:expected_joining_date"`
	Feedback            string              `gorm:"column:feedback;not null;default:''"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *ClientJobAssignment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
