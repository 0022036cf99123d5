package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/recruitdesk-backend/internal/assignments"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/followup"
)

type stubAssignments struct {
	created  *assignments.CreateInput
	feedback *assignments.FeedbackInput
	reassign *assignments.ReassignInput
	err      error
}

func (s *stubAssignments) Create(_ context.Context, input assignments.CreateInput) (*assignments.View, error) {
	s.created = &input
	if s.err != nil {
		return nil, s.err
	}
	return &assignments.View{ID: uuid.New(), CandidateID: input.CandidateID}, nil
}

func (s *stubAssignments) Get(_ context.Context, _ assignments.Actor, id uuid.UUID) (*assignments.View, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &assignments.View{ID: id}, nil
}

func (s *stubAssignments) ListForCandidate(_ context.Context, _ assignments.Actor, candidateID uuid.UUID) ([]assignments.View, error) {
	return []assignments.View{{ID: uuid.New(), CandidateID: candidateID}}, s.err
}

func (s *stubAssignments) RecordFeedback(_ context.Context, input assignments.FeedbackInput) (*assignments.View, error) {
	s.feedback = &input
	if s.err != nil {
		return nil, s.err
	}
	return &assignments.View{ID: input.AssignmentID}, nil
}

func (s *stubAssignments) Reassign(_ context.Context, input assignments.ReassignInput) (*assignments.View, error) {
	s.reassign = &input
	if s.err != nil {
		return nil, s.err
	}
	return &assignments.View{ID: input.AssignmentID, AssignedTo: assignments.ExecutiveRef{Code: input.ToExecutive}}, nil
}

func (s *stubAssignments) EmitLapsed(context.Context, time.Time) (int, error) {
	return 0, nil
}

func TestReassignAssignmentPassesActorAndTarget(t *testing.T) {
	svc := &stubAssignments{}
	id := uuid.New()
	req := newRequest(http.MethodPost, "/api/v1/assignments/"+id.String()+"/reassign", `{"to_executive":"E2","note":" on leave "}`,
		enums.EmployeeRoleExecutive, map[string]string{"assignmentId": id.String()})
	resp := httptest.NewRecorder()

	ReassignAssignment(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, svc.reassign)
	assert.Equal(t, id, svc.reassign.AssignmentID)
	assert.Equal(t, "E2", svc.reassign.ToExecutive)
	assert.Equal(t, "on leave", svc.reassign.Note)
	assert.Equal(t, testEmployeeID, svc.reassign.Actor.ID)
	assert.Equal(t, "E1", svc.reassign.Actor.Code)
	assert.Equal(t, enums.EmployeeRoleExecutive, svc.reassign.Actor.Role)
}

func TestReassignAssignmentLockedIsStateConflict(t *testing.T) {
	svc := &stubAssignments{err: pkgerrors.Wrap(pkgerrors.CodeStateConflict, fmt.Errorf("reassign: %w", followup.ErrAssignmentLocked), "assignment is locked")}
	id := uuid.New()
	req := newRequest(http.MethodPost, "/", `{"to_executive":"E2"}`, enums.EmployeeRoleExecutive, map[string]string{"assignmentId": id.String()})
	resp := httptest.NewRecorder()

	ReassignAssignment(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), decodeEnvelope(t, resp).Error.Code)
}

func TestReassignAssignmentRequiresTarget(t *testing.T) {
	svc := &stubAssignments{}
	id := uuid.New()
	req := newRequest(http.MethodPost, "/", `{"note":"x"}`, enums.EmployeeRoleExecutive, map[string]string{"assignmentId": id.String()})
	resp := httptest.NewRecorder()

	ReassignAssignment(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	env := decodeEnvelope(t, resp)
	assert.Equal(t, "is required", env.Error.Details["to_executive"])
	assert.Nil(t, svc.reassign)
}

func TestReassignAssignmentRejectsBadID(t *testing.T) {
	svc := &stubAssignments{}
	req := newRequest(http.MethodPost, "/", `{"to_executive":"E2"}`, enums.EmployeeRoleExecutive, map[string]string{"assignmentId": "nope"})
	resp := httptest.NewRecorder()

	ReassignAssignment(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Nil(t, svc.reassign)
}

func TestAssignmentEndpointsRequireEmployeeContext(t *testing.T) {
	svc := &stubAssignments{}
	id := uuid.New()
	req := newRequest(http.MethodGet, "/", "", "", map[string]string{"assignmentId": id.String()})
	resp := httptest.NewRecorder()

	GetAssignment(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRecordFeedbackDecodesBillingAmount(t *testing.T) {
	svc := &stubAssignments{}
	id := uuid.New()
	body := `{"remarks":"Joined","profile_status":"Joined","joining_date":"10-03-2026","billing_amount":"45000.50","nfd":""}`
	req := newRequest(http.MethodPost, "/", body, enums.EmployeeRoleExecutive, map[string]string{"assignmentId": id.String()})
	resp := httptest.NewRecorder()

	RecordFeedback(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, svc.feedback)
	require.NotNil(t, svc.feedback.BillingAmount)
	assert.Equal(t, "45000.5", svc.feedback.BillingAmount.String())
	assert.Equal(t, "Joined", svc.feedback.ProfileStatus)
	assert.Equal(t, "10-03-2026", svc.feedback.JoiningDate)
}

func TestRecordFeedbackRejectsUnknownFields(t *testing.T) {
	svc := &stubAssignments{}
	id := uuid.New()
	req := newRequest(http.MethodPost, "/", `{"remarks":"x","feedback":"rewrite"}`, enums.EmployeeRoleExecutive, map[string]string{"assignmentId": id.String()})
	resp := httptest.NewRecorder()

	RecordFeedback(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Nil(t, svc.feedback)
}

func TestCreateAssignmentParsesIDs(t *testing.T) {
	svc := &stubAssignments{}
	candidateID, jobID := uuid.New(), uuid.New()
	body := fmt.Sprintf(`{"candidate_id":%q,"client_job_id":%q,"assign_to":"E2"}`, candidateID, jobID)
	req := newRequest(http.MethodPost, "/api/v1/assignments", body, enums.EmployeeRoleManager, nil)
	resp := httptest.NewRecorder()

	CreateAssignment(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, candidateID, svc.created.CandidateID)
	assert.Equal(t, jobID, svc.created.ClientJobID)
	assert.Equal(t, enums.EmployeeRoleManager, svc.created.Actor.Role)

	bad := newRequest(http.MethodPost, "/api/v1/assignments", `{"candidate_id":"x","client_job_id":"y"}`, enums.EmployeeRoleManager, nil)
	resp = httptest.NewRecorder()
	CreateAssignment(svc, testLogger())(resp, bad)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListCandidateAssignments(t *testing.T) {
	svc := &stubAssignments{}
	candidateID := uuid.New()
	req := newRequest(http.MethodGet, "/", "", enums.EmployeeRoleExecutive, map[string]string{"candidateId": candidateID.String()})
	resp := httptest.NewRecorder()

	ListCandidateAssignments(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(decodeEnvelope(t, resp).Data), candidateID.String())
}
