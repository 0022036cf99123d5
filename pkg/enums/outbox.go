package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateAssignment OutboxAggregateType = "client_job_assignment"
	AggregateCandidate  OutboxAggregateType = "candidate"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateAssignment,
	AggregateCandidate,
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType is the event name published to the assignments topic.
type OutboxEventType string

const (
	EventCandidateRegistered  OutboxEventType = "candidate_registered"
	EventAssignmentCreated    OutboxEventType = "assignment_created"
	EventFeedbackRecorded     OutboxEventType = "feedback_recorded"
	EventAssignmentReassigned OutboxEventType = "assignment_reassigned"
	EventFollowUpLapsed       OutboxEventType = "followup_lapsed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCandidateRegistered,
	EventAssignmentCreated,
	EventFeedbackRecorded,
	EventAssignmentReassigned,
	EventFollowUpLapsed,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
