package controllers

import (
	"net/http"

	"github.com/angelmondragon/recruitdesk-backend/api/responses"
	"github.com/angelmondragon/recruitdesk-backend/api/validators"
	"github.com/angelmondragon/recruitdesk-backend/internal/candidates"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
)

const maxSearchTerm = 64

type registerCandidateRequest struct {
	FullName        string `json:"full_name" validate:"required,max=200"`
	Mobile          string `json:"mobile" validate:"required,mobile"`
	Email           string `json:"email" validate:"omitempty,email"`
	Skills          string `json:"skills" validate:"max=1000"`
	CurrentLocation string `json:"current_location" validate:"max=200"`
}

func RegisterCandidate(svc candidates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "candidates service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body registerCandidateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Register(r.Context(), candidates.RegisterInput{
			ActorID:         actor.ID,
			ActorCode:       actor.Code,
			FullName:        body.FullName,
			Mobile:          body.Mobile,
			Email:           body.Email,
			Skills:          body.Skills,
			CurrentLocation: body.CurrentLocation,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func GetCandidate(svc candidates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "candidates service unavailable"))
			return
		}
		id, err := uuidParam(r, "candidateId", "candidate id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// SearchCandidates pages by cursor; every mobile in the page is already
// masked or shown by the service.
func SearchCandidates(svc candidates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "candidates service unavailable"))
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Search(r.Context(), candidates.SearchParams{
			Query:  validators.SearchTerm(r, maxSearchTerm),
			Params: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
