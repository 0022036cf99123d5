package assignments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/recruitdesk-backend/internal/employees"
	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox"
)

// Repository defines persistence operations for assignment tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, assignment *models.ClientJobAssignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ClientJobAssignment, error)
	ExistsForCandidateJob(ctx context.Context, candidateID, clientJobID uuid.UUID) (bool, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID, assignedTo *uuid.UUID) ([]models.ClientJobAssignment, error)
	ListByFollowUpDates(ctx context.Context, dates []string) ([]models.ClientJobAssignment, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	FindClientJob(ctx context.Context, id uuid.UUID) (*models.ClientJob, error)
	CreatePlacement(ctx context.Context, placement *models.Placement) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type executiveDirectory interface {
	Lookup(ctx context.Context, id uuid.UUID) (employees.Entry, bool, error)
	LookupCode(ctx context.Context, code string) (employees.Entry, bool, error)
	DisplayName(ctx context.Context, code string) string
}

// BusyFlag guarantees at most one in-flight reassignment per assignment.
// Acquire reports false when another request holds the flag.
type BusyFlag interface {
	Acquire(ctx context.Context, assignmentID uuid.UUID) (release func(context.Context) error, ok bool, err error)
}

type reassignMetrics interface {
	IncReassign(outcome string)
	ObserveReassign(d time.Duration)
	IncFeedback()
}
