package enums

import "fmt"

type ClientJobStatus string

const (
	ClientJobStatusOpen   ClientJobStatus = "open"
	ClientJobStatusOnHold ClientJobStatus = "on_hold"
	ClientJobStatusClosed ClientJobStatus = "closed"
)

var validClientJobStatuses = []ClientJobStatus{
	ClientJobStatusOpen,
	ClientJobStatusOnHold,
	ClientJobStatusClosed,
}

// IsValid reports whether the value is a known ClientJobStatus.
func (s ClientJobStatus) IsValid() bool {
	for _, candidate := range validClientJobStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseClientJobStatus converts raw input into a ClientJobStatus.
func ParseClientJobStatus(value string) (ClientJobStatus, error) {
	for _, candidate := range validClientJobStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid client job status %q", value)
}
