package followup

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
)

// RemarkProfileAssigned is logged on every reassignment.
const RemarkProfileAssigned = "Profile Assigned"

var (
	ErrInvalidTarget = errors.New("target executive is required and must be active")
	ErrMissingActor  = errors.New("entered by is required")
)

// Executive identifies a recruiter. Code is the short identifier shown in audit
// text next to the display name.
type Executive struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Active      bool   `json:"active"`
}

func (e Executive) label() string {
	name := strings.TrimSpace(e.DisplayName)
	if name == "" {
		name = strings.TrimSpace(e.Code)
	}
	return fmt.Sprintf("%s(%s)", name, strings.TrimSpace(e.Code))
}

// AssignmentUpdate is the change set a reassignment applies. Entry is the audit
// point to append to the feedback log.
type AssignmentUpdate struct {
	AssignToID   string        `json:"assign_to_id"`
	AssignByID   string        `json:"assign_by_id"`
	FeedbackText string        `json:"feedback_text"`
	NFD          string        `json:"nfd"`
	EJD          string        `json:"ejd"`
	IFD          string        `json:"ifd"`
	Remarks      string        `json:"remarks"`
	Entry        FeedbackEntry `json:"entry"`
}

// AuditMessage renders the reassignment audit line.
func AuditMessage(from, to Executive, note string) string {
	msg := fmt.Sprintf("Profile assigned from %s to %s", from.label(), to.label())
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		msg += ". " + trimmed
	}
	return msg
}

// Reassign computes the update moving an assignment from one executive to
// another. It performs no I/O. A locked assignment yields a STATE_CONFLICT
// wrapping ErrAssignmentLocked; a bad target or missing actor yields a
// VALIDATION_ERROR.
func Reassign(a Assignment, from, to Executive, enteredBy, note string, now time.Time, offsetMinutes int) (AssignmentUpdate, error) {
	local := now.In(Zone(offsetMinutes))
	if !IsAssignable(a, local) {
		return AssignmentUpdate{}, pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrAssignmentLocked, "assignment is not open for reassignment").
			WithDetails(map[string]string{"next_follow_up_date": a.NextFollowUpDate})
	}
	if strings.TrimSpace(to.Code) == "" || !to.Active {
		return AssignmentUpdate{}, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidTarget, "invalid target executive").
			WithDetails(map[string]string{"to_executive": "must be a known active executive"})
	}
	enteredBy = strings.TrimSpace(enteredBy)
	if enteredBy == "" {
		return AssignmentUpdate{}, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingActor, "entered by is required").
			WithDetails(map[string]string{"entered_by": "is required"})
	}

	nfd := GenerateFollowUpDate(now, offsetMinutes)
	text := AuditMessage(from, to, note)

	return AssignmentUpdate{
		AssignToID:   strings.TrimSpace(to.Code),
		AssignByID:   enteredBy,
		FeedbackText: text,
		NFD:          nfd,
		EJD:          "",
		IFD:          "",
		Remarks:      RemarkProfileAssigned,
		Entry: FeedbackEntry{
			Remarks:   RemarkProfileAssigned,
			NFD:       nfd,
			EnteredBy: enteredBy,
			Note:      text,
			EntryTime: local.Format(normalizedTimeLayout),
		},
	}, nil
}
