package candidates

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/recruitdesk-backend/pkg/pagination"
)

// RegisterInput carries the fields for a new candidate.
type RegisterInput struct {
	ActorID         uuid.UUID
	ActorCode       string
	FullName        string
	Mobile          string
	Email           string
	Skills          string
	CurrentLocation string
}

type SearchParams struct {
	Query string
	pkgpagination.Params
}

type SearchResult struct {
	Items  []View `json:"items"`
	Cursor string `json:"cursor"`
}

// View is a candidate as shown to recruiters. Mobile has already passed the
// visibility rules and may be masked.
type View struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	Mobile          string    `json:"mobile"`
	Masked          bool      `json:"mobile_masked"`
	Email           *string   `json:"email,omitempty"`
	Skills          *string   `json:"skills,omitempty"`
	CurrentLocation *string   `json:"current_location,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type searchQuery struct {
	term   string
	limit  int
	cursor *pkgpagination.Cursor
}

// maskRow is one (candidate, mobile, profile status) triple from assignments.
type maskRow struct {
	CandidateID   uuid.UUID
	Mobile        string
	ProfileStatus enums.ProfileStatus
}

func (in RegisterInput) toModel() *models.Candidate {
	return &models.Candidate{
		FullName:        strings.TrimSpace(in.FullName),
		Mobile:          NormalizeMobile(in.Mobile),
		Email:           optional(strings.ToLower(in.Email)),
		Skills:          optional(in.Skills),
		CurrentLocation: optional(in.CurrentLocation),
		CreatedBy:       in.ActorID,
	}
}

func toView(m models.Candidate, mobile string) View {
	return View{
		ID:              m.ID,
		FullName:        m.FullName,
		Mobile:          mobile,
		Masked:          mobile != m.Mobile,
		Email:           m.Email,
		Skills:          m.Skills,
		CurrentLocation: m.CurrentLocation,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// NormalizeMobile strips spaces and dashes users commonly type.
func NormalizeMobile(value string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(value))
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
