package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
)

// ActorRef identifies the employee that produced the event.
type ActorRef struct {
	EmployeeID uuid.UUID          `json:"employeeId"`
	Code       string             `json:"code,omitempty"`
	Role       enums.EmployeeRole `json:"role,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
