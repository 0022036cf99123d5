package followup

import (
	"errors"
	"strings"
	"time"
)

// ErrAssignmentLocked signals that an assignment is still owned by its current
// recruiter and may not be reassigned.
var ErrAssignmentLocked = errors.New("assignment is locked for reassignment")

const openProfileRemark = "open profile"

// RemarkSource tells renderers where an effective remark came from.
type RemarkSource string

const (
	SourceProfileStatus RemarkSource = "profilestatus"
	SourceRemarks       RemarkSource = "remarks"
)

// Remark is the single current status of an assignment.
type Remark struct {
	Text   string       `json:"text"`
	Source RemarkSource `json:"source"`
}

// EffectiveRemark prefers the authoritative profile status and falls back to the
// latest logged remark.
func EffectiveRemark(profileStatus string, entries []FeedbackEntry) Remark {
	if status := strings.TrimSpace(profileStatus); status != "" {
		return Remark{Text: status, Source: SourceProfileStatus}
	}
	return Remark{Text: LatestValue(entries, FieldRemarks), Source: SourceRemarks}
}

// IsOpenProfile reports whether the remark releases the assignment.
func (r Remark) IsOpenProfile() bool {
	return strings.EqualFold(strings.TrimSpace(r.Text), openProfileRemark)
}

// Assignment is the parsed view of a client job assignment the rules run on.
type Assignment struct {
	CandidateID         string
	ClientJobID         string
	ProfileStatus       string
	NextFollowUpDate    string
	InterviewDate       string
	ExpectedJoiningDate string
	Feedback            []FeedbackEntry
	JoiningDate         *time.Time
}

// EffectiveRemark returns the assignment's current status and its source.
func (a Assignment) EffectiveRemark() Remark {
	return EffectiveRemark(a.ProfileStatus, a.Feedback)
}

// IsAssignable reports whether the assignment may move to another recruiter at
// now. The follow-up date is read as a calendar date in now's location and stops
// protecting the assignment at the following midnight. Unreadable dates keep the
// assignment locked.
func IsAssignable(a Assignment, now time.Time) bool {
	if strings.TrimSpace(a.ClientJobID) == "" {
		return false
	}
	if a.EffectiveRemark().IsOpenProfile() {
		return true
	}
	if strings.TrimSpace(a.NextFollowUpDate) == "" {
		return true
	}
	expiry, ok := FollowUpExpiry(a.NextFollowUpDate, now.Location())
	if !ok {
		return false
	}
	return !now.Before(expiry)
}

// FollowUpExpiry returns midnight after the follow-up date in loc.
func FollowUpExpiry(nfd string, loc *time.Location) (time.Time, bool) {
	day, ok := ParseCalendarDate(nfd, loc)
	if !ok {
		return time.Time{}, false
	}
	y, m, d := day.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc), true
}

var calendarLayouts = []string{
	dateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02-01-2006",
}

// ParseCalendarDate reads a stored date value and returns midnight of that day
// in loc. RFC3339 values are converted into loc before the day is taken.
func ParseCalendarDate(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		y, m, d := ts.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), true
	}
	for _, layout := range calendarLayouts {
		ts, err := time.ParseInLocation(layout, value, loc)
		if err != nil {
			continue
		}
		y, m, d := ts.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}
