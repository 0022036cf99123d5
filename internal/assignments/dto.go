package assignments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	"github.com/angelmondragon/recruitdesk-backend/pkg/followup"
)

// Actor is the authenticated employee performing an operation.
type Actor struct {
	ID   uuid.UUID
	Code string
	Role enums.EmployeeRole
}

// CreateInput links a candidate to a client job.
type CreateInput struct {
	Actor       Actor
	CandidateID uuid.UUID
	ClientJobID uuid.UUID
	AssignTo    string
	Note        string
}

// FeedbackInput records one call outcome. Dates accept YYYY-MM-DD or
// DD-MM-YYYY and are stored as YYYY-MM-DD.
type FeedbackInput struct {
	Actor         Actor
	AssignmentID  uuid.UUID
	Remarks       string
	CallStatus    string
	ProfileStatus string
	NFD           string
	IFD           string
	EJD           string
	Note          string
	JoiningDate   string
	BillingAmount *decimal.Decimal
}

// ReassignInput hands an assignment to another executive.
type ReassignInput struct {
	Actor        Actor
	AssignmentID uuid.UUID
	ToExecutive  string
	Note         string
}

// ExecutiveRef names an employee in responses.
type ExecutiveRef struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	DisplayName string    `json:"display_name"`
}

// TrailEntry is one rendered feedback entry.
type TrailEntry struct {
	followup.FeedbackEntry
	EnteredByName string `json:"entered_by_name"`
}

// LatestFeedback exposes the fields of the newest entry.
type LatestFeedback struct {
	Remarks    string `json:"remarks"`
	CallStatus string `json:"call_status"`
	NFD        string `json:"nfd"`
	EJD        string `json:"ejd"`
	IFD        string `json:"ifd"`
	EnteredBy  string `json:"entered_by"`
	EntryTime  string `json:"entry_time"`
}

// View is the read model returned for an assignment.
type View struct {
	ID                  uuid.UUID           `json:"id"`
	CandidateID         uuid.UUID           `json:"candidate_id"`
	ClientJobID         *uuid.UUID          `json:"client_job_id,omitempty"`
	AssignedTo          ExecutiveRef        `json:"assigned_to"`
	ProfileStatus       enums.ProfileStatus `json:"profile_status"`
	EffectiveRemark     followup.Remark     `json:"effective_remark"`
	Assignable          bool                `json:"assignable"`
	NextFollowUpDate    string              `json:"next_follow_up_date"`
	InterviewDate       string              `json:"interview_date"`
	ExpectedJoiningDate string              `json:"expected_joining_date"`
	Latest              LatestFeedback      `json:"latest"`
	Trail               []TrailEntry        `json:"trail"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}
