package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/recruitdesk-backend/api/middleware"
	"github.com/angelmondragon/recruitdesk-backend/internal/assignments"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
)

// actorFromRequest reads the identity Auth placed on the context.
func actorFromRequest(r *http.Request) (assignments.Actor, error) {
	rawID := middleware.EmployeeIDFromContext(r.Context())
	if rawID == "" {
		return assignments.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee context missing")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return assignments.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid employee id")
	}
	return assignments.Actor{
		ID:   id,
		Code: middleware.CodeFromContext(r.Context()),
		Role: enums.EmployeeRole(middleware.RoleFromContext(r.Context())),
	}, nil
}

func uuidParam(r *http.Request, name, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return id, nil
}
