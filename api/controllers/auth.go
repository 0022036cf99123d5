package controllers

import (
	"net/http"

	"github.com/angelmondragon/recruitdesk-backend/api/middleware"
	"github.com/angelmondragon/recruitdesk-backend/api/responses"
	"github.com/angelmondragon/recruitdesk-backend/api/validators"
	"github.com/angelmondragon/recruitdesk-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
)

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout closes the session behind the presented token. It runs behind
// Auth, so the jti on the context has already been verified.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		err := svc.Logout(r.Context(), auth.LogoutRequest{
			AccessID:     middleware.AccessIDFromContext(r.Context()),
			EmployeeCode: middleware.CodeFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
