package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
)

// CandidateRegisteredEvent is emitted when a recruiter registers a candidate.
type CandidateRegisteredEvent struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	CreatedBy   string    `json:"created_by"`
}

// AssignmentCreatedEvent links a candidate to a client job.
type AssignmentCreatedEvent struct {
	AssignmentID     uuid.UUID  `json:"assignment_id"`
	CandidateID      uuid.UUID  `json:"candidate_id"`
	ClientJobID      *uuid.UUID `json:"client_job_id,omitempty"`
	AssignedTo       string     `json:"assigned_to"`
	NextFollowUpDate string     `json:"next_follow_up_date,omitempty"`
}

// FeedbackRecordedEvent carries the latest call outcome.
type FeedbackRecordedEvent struct {
	AssignmentID     uuid.UUID           `json:"assignment_id"`
	Remarks          string              `json:"remarks"`
	CallStatus       string              `json:"call_status,omitempty"`
	ProfileStatus    enums.ProfileStatus `json:"profile_status,omitempty"`
	NextFollowUpDate string              `json:"next_follow_up_date,omitempty"`
	EnteredBy        string              `json:"entered_by"`
}

// AssignmentReassignedEvent records a hand-over between executives.
type AssignmentReassignedEvent struct {
	AssignmentID     uuid.UUID `json:"assignment_id"`
	FromExecutive    string    `json:"from_executive"`
	ToExecutive      string    `json:"to_executive"`
	AssignedBy       string    `json:"assigned_by"`
	NextFollowUpDate string    `json:"next_follow_up_date"`
	AuditMessage     string    `json:"audit_message"`
}

// FollowUpLapsedEvent signals that an assignment became assignable again
// because its follow-up commitment expired.
type FollowUpLapsedEvent struct {
	AssignmentID     uuid.UUID `json:"assignment_id"`
	AssignedTo       string    `json:"assigned_to"`
	NextFollowUpDate string    `json:"next_follow_up_date"`
	LapsedAt         time.Time `json:"lapsed_at"`
}
