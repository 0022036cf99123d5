package controllers

import (
	"net/http"

	"github.com/angelmondragon/recruitdesk-backend/api/responses"
	"github.com/angelmondragon/recruitdesk-backend/api/validators"
	"github.com/angelmondragon/recruitdesk-backend/internal/employees"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
)

type createEmployeeRequest struct {
	Code        string `json:"code" validate:"required,empcode"`
	DisplayName string `json:"display_name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Role        string `json:"role" validate:"required"`
	Password    string `json:"password" validate:"omitempty,min=8"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ListExecutives feeds the assign picker from the directory cache.
func ListExecutives(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employees service unavailable"))
			return
		}
		entries, err := svc.ListExecutives(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": entries})
	}
}

func CreateEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employees service unavailable"))
			return
		}

		var body createEmployeeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseEmployeeRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		result, err := svc.Create(r.Context(), employees.CreateInput{
			Code:        body.Code,
			DisplayName: validators.SanitizeString(body.DisplayName, 120),
			Email:       body.Email,
			Role:        role,
			Password:    body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// SetEmployeeActive deactivates or reactivates an employee. Inactive
// executives drop out of the picker and cannot receive reassignments.
func SetEmployeeActive(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employees service unavailable"))
			return
		}

		id, err := uuidParam(r, "employeeId", "employee id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body setActiveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.SetActive(r.Context(), id, *body.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employee)
	}
}
