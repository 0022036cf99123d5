package enums

import (
	"fmt"
	"strings"
)

// ProfileStatus is the authoritative placement status set on an assignment.
// The zero value means no status has been recorded yet.
type ProfileStatus string

const (
	ProfileStatusNone     ProfileStatus = ""
	ProfileStatusJoined   ProfileStatus = "Joined"
	ProfileStatusSelected ProfileStatus = "Selected"
	ProfileStatusAbscond  ProfileStatus = "Abscond"
)

var validProfileStatuses = []ProfileStatus{
	ProfileStatusNone,
	ProfileStatusJoined,
	ProfileStatusSelected,
	ProfileStatusAbscond,
}

// String implements fmt.Stringer.
func (p ProfileStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProfileStatus.
func (p ProfileStatus) IsValid() bool {
	for _, candidate := range validProfileStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// TakesMobile reports whether a record with this status claims the candidate's
// mobile number. Absconded placements never do.
func (p ProfileStatus) TakesMobile() bool {
	return p == ProfileStatusJoined || p == ProfileStatusSelected
}

// ParseProfileStatus converts raw input into a ProfileStatus. Matching is
// case-insensitive because historical rows were written by hand.
func ParseProfileStatus(value string) (ProfileStatus, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validProfileStatuses {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid profile status %q", value)
}
