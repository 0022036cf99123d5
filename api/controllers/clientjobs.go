package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/recruitdesk-backend/api/responses"
	"github.com/angelmondragon/recruitdesk-backend/api/validators"
	"github.com/angelmondragon/recruitdesk-backend/internal/clientjobs"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
)

type clientJobStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open on_hold closed"`
}

func CreateClientJob(svc clientjobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client jobs service unavailable"))
			return
		}
		var body clientjobs.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func ListClientJobs(svc clientjobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client jobs service unavailable"))
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), clientjobs.ListParams{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Params: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func UpdateClientJobStatus(svc clientjobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client jobs service unavailable"))
			return
		}
		id, err := uuidParam(r, "jobId", "client job id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body clientJobStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.SetStatus(r.Context(), id, body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
