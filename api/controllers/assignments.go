package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/recruitdesk-backend/api/responses"
	"github.com/angelmondragon/recruitdesk-backend/api/validators"
	"github.com/angelmondragon/recruitdesk-backend/internal/assignments"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
)

type createAssignmentRequest struct {
	CandidateID string `json:"candidate_id" validate:"required"`
	ClientJobID string `json:"client_job_id" validate:"required"`
	AssignTo    string `json:"assign_to" validate:"omitempty,empcode"`
	Note        string `json:"note" validate:"max=500"`
}

type feedbackRequest struct {
	Remarks       string           `json:"remarks" validate:"required,max=200"`
	CallStatus    string           `json:"call_status" validate:"max=100"`
	ProfileStatus string           `json:"profile_status" validate:"omitempty,profilestatus"`
	NFD           string           `json:"nfd" validate:"omitempty,caldate"`
	IFD           string           `json:"ifd" validate:"omitempty,caldate"`
	EJD           string           `json:"ejd" validate:"omitempty,caldate"`
	Note          string           `json:"note" validate:"max=1000"`
	JoiningDate   string           `json:"joining_date" validate:"omitempty,caldate"`
	BillingAmount *decimal.Decimal `json:"billing_amount"`
}

type reassignRequest struct {
	ToExecutive string `json:"to_executive" validate:"required,empcode"`
	Note        string `json:"note" validate:"max=500"`
}

func CreateAssignment(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignments service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createAssignmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		candidateID, err := uuid.Parse(body.CandidateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid candidate_id"))
			return
		}
		jobID, err := uuid.Parse(body.ClientJobID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid client_job_id"))
			return
		}

		view, err := svc.Create(r.Context(), assignments.CreateInput{
			Actor:       actor,
			CandidateID: candidateID,
			ClientJobID: jobID,
			AssignTo:    body.AssignTo,
			Note:        validators.SanitizeString(body.Note, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func GetAssignment(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignments service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "assignmentId", "assignment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListCandidateAssignments returns the assignments of one candidate the
// caller may see.
func ListCandidateAssignments(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignments service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		candidateID, err := uuidParam(r, "candidateId", "candidate id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.ListForCandidate(r.Context(), actor, candidateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": views})
	}
}

func RecordFeedback(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignments service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "assignmentId", "assignment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body feedbackRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithAssignmentID(ctx, id.String())
		}
		view, err := svc.RecordFeedback(ctx, assignments.FeedbackInput{
			Actor:         actor,
			AssignmentID:  id,
			Remarks:       body.Remarks,
			CallStatus:    body.CallStatus,
			ProfileStatus: body.ProfileStatus,
			NFD:           body.NFD,
			IFD:           body.IFD,
			EJD:           body.EJD,
			Note:          body.Note,
			JoiningDate:   body.JoiningDate,
			BillingAmount: body.BillingAmount,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ReassignAssignment hands the assignment to another executive. A locked
// assignment answers STATE_CONFLICT; a concurrent reassignment answers CONFLICT.
func ReassignAssignment(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignments service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuidParam(r, "assignmentId", "assignment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reassignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithAssignmentID(ctx, id.String())
		}
		view, err := svc.Reassign(ctx, assignments.ReassignInput{
			Actor:        actor,
			AssignmentID: id,
			ToExecutive:  body.ToExecutive,
			Note:         validators.SanitizeString(body.Note, 500),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "to_executive", view.AssignedTo.Code), "assignment.reassigned")
		}
		responses.WriteSuccess(w, view)
	}
}
