package visibility

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
)

// AssignmentVisibilityInput drives the shared ownership checks for assignment queries.
type AssignmentVisibilityInput struct {
	Assignment *models.ClientJobAssignment
	ViewerID   uuid.UUID
	ViewerRole enums.EmployeeRole
}

// EnsureAssignmentVisible hides other executives' assignments. Managers and
// admins see everything. A hidden row reports NOT_FOUND so ids do not leak.
func EnsureAssignmentVisible(input AssignmentVisibilityInput) error {
	if input.Assignment == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
	}
	if input.ViewerID == uuid.Nil || !input.ViewerRole.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "viewer identity required")
	}
	if isSupervisor(input.ViewerRole) {
		return nil
	}
	if input.Assignment.AssignedTo != input.ViewerID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
	}
	return nil
}

// EnsureCanReassign allows the owning executive or any supervisor to hand an
// assignment over. Visibility is checked first.
func EnsureCanReassign(input AssignmentVisibilityInput) error {
	if err := EnsureAssignmentVisible(input); err != nil {
		return err
	}
	if isSupervisor(input.ViewerRole) || input.Assignment.AssignedTo == input.ViewerID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "only the owning executive can reassign")
}

// ScopeAssignedTo returns the executive filter a listing query must apply,
// or nil when the viewer may see every row.
func ScopeAssignedTo(viewerID uuid.UUID, role enums.EmployeeRole) *uuid.UUID {
	if isSupervisor(role) {
		return nil
	}
	id := viewerID
	return &id
}

func isSupervisor(role enums.EmployeeRole) bool {
	return role == enums.EmployeeRoleAdmin || role == enums.EmployeeRoleManager
}
