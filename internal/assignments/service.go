package assignments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/recruitdesk-backend/internal/employees"
	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/followup"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
	"github.com/angelmondragon/recruitdesk-backend/pkg/metrics"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/recruitdesk-backend/pkg/visibility"
)

const storedDateLayout = "2006-01-02"

// Service defines the assignment lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*View, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*View, error)
	ListForCandidate(ctx context.Context, actor Actor, candidateID uuid.UUID) ([]View, error)
	RecordFeedback(ctx context.Context, input FeedbackInput) (*View, error)
	Reassign(ctx context.Context, input ReassignInput) (*View, error)
	EmitLapsed(ctx context.Context, day time.Time) (int, error)
}

type lapsedPublisher interface {
	outboxPublisher
	EmitIfNotExistsSince(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent, since time.Time) (bool, error)
}

// ServiceParams groups the service collaborators.
type ServiceParams struct {
	Repository Repository
	Tx         txRunner
	Outbox     lapsedPublisher
	Directory  executiveDirectory
	Busy       BusyFlag
	Engine     *followup.Engine
	Metrics    reassignMetrics
	Logger     *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    lapsedPublisher
	directory executiveDirectory
	busy      BusyFlag
	engine    *followup.Engine
	metrics   reassignMetrics
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("employee directory required")
	}
	if params.Busy == nil {
		return nil, fmt.Errorf("busy flag required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("follow-up engine required")
	}
	m := params.Metrics
	if m == nil {
		m = metrics.NewAssignmentMetrics(nil)
	}
	return &service{
		repo:      params.Repository,
		tx:        params.Tx,
		outbox:    params.Outbox,
		directory: params.Directory,
		busy:      params.Busy,
		engine:    params.Engine,
		metrics:   m,
		logg:      params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*View, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	if input.CandidateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "candidate_id is required")
	}
	if input.ClientJobID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client_job_id is required")
	}

	targetCode := strings.TrimSpace(input.AssignTo)
	if targetCode == "" {
		targetCode = input.Actor.Code
	}
	target, ok, err := s.directory.LookupCode(ctx, targetCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve executive")
	}
	if !ok || !target.Active {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, followup.ErrInvalidTarget, "invalid target executive").
			WithDetails(map[string]string{"assign_to": "must be a known active executive"})
	}
	if input.Actor.Role == enums.EmployeeRoleExecutive && target.ID != input.Actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "executives can only assign to themselves")
	}

	if _, err := s.repo.FindCandidate(ctx, input.CandidateID); err != nil {
		return nil, notFoundOr(err, "candidate not found", "load candidate")
	}
	job, err := s.repo.FindClientJob(ctx, input.ClientJobID)
	if err != nil {
		return nil, notFoundOr(err, "client job not found", "load client job")
	}
	if job.Status != enums.ClientJobStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "client job is not open")
	}
	exists, err := s.repo.ExistsForCandidateJob(ctx, input.CandidateID, input.ClientJobID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing assignment")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "candidate already linked to this client job")
	}

	nfd := s.engine.NextFollowUpDate()
	note := fmt.Sprintf("Profile assigned to %s(%s)", labelOf(target), target.Code)
	if trimmed := strings.TrimSpace(input.Note); trimmed != "" {
		note += ". " + trimmed
	}
	entry := s.engine.NewEntry(followup.FeedbackEntry{
		Remarks:   followup.RemarkProfileAssigned,
		NFD:       nfd,
		EnteredBy: input.Actor.Code,
		Note:      note,
	})
	jobID := input.ClientJobID
	row := &models.ClientJobAssignment{
		CandidateID:      input.CandidateID,
		ClientJobID:      &jobID,
		AssignedTo:       target.ID,
		AssignedBy:       input.Actor.ID,
		Remarks:          followup.RemarkProfileAssigned,
		NextFollowUpDate: &nfd,
		Feedback:         followup.AppendFeedback("", entry),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAssignmentCreated,
			AggregateType: enums.AggregateAssignment,
			AggregateID:   row.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.AssignmentCreatedEvent{
				AssignmentID:     row.ID,
				CandidateID:      row.CandidateID,
				ClientJobID:      row.ClientJobID,
				AssignedTo:       target.Code,
				NextFollowUpDate: nfd,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
	}
	return s.reload(ctx, row.ID)
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*View, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "assignment not found", "load assignment")
	}
	if err := visibility.EnsureAssignmentVisible(visibilityInput(row, actor)); err != nil {
		return nil, err
	}
	view := s.buildView(ctx, row)
	return &view, nil
}

func (s *service) ListForCandidate(ctx context.Context, actor Actor, candidateID uuid.UUID) ([]View, error) {
	if candidateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "candidate id required")
	}
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindCandidate(ctx, candidateID); err != nil {
		return nil, notFoundOr(err, "candidate not found", "load candidate")
	}
	rows, err := s.repo.ListByCandidate(ctx, candidateID, visibility.ScopeAssignedTo(actor.ID, actor.Role))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	views := make([]View, 0, len(rows))
	for i := range rows {
		views = append(views, s.buildView(ctx, &rows[i]))
	}
	return views, nil
}

func (s *service) RecordFeedback(ctx context.Context, input FeedbackInput) (*View, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	if input.AssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	remarks := strings.TrimSpace(input.Remarks)
	if remarks == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remarks is required")
	}

	var status enums.ProfileStatus
	statusProvided := strings.TrimSpace(input.ProfileStatus) != ""
	if statusProvided {
		parsed, err := enums.ParseProfileStatus(input.ProfileStatus)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid profile_status")
		}
		status = parsed
	}

	dates := map[string]string{"nfd": input.NFD, "ifd": input.IFD, "ejd": input.EJD, "joining_date": input.JoiningDate}
	for name, raw := range dates {
		normalized, err := s.normalizeDate(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid date").
				WithDetails(map[string]string{name: "expected YYYY-MM-DD or DD-MM-YYYY"})
		}
		dates[name] = normalized
	}
	if dates["joining_date"] != "" && status != enums.ProfileStatusJoined {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "joining_date requires profile_status Joined")
	}
	if input.BillingAmount != nil && input.BillingAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "billing_amount must not be negative")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByID(ctx, input.AssignmentID)
		if err != nil {
			return notFoundOr(err, "assignment not found", "load assignment")
		}
		if err := visibility.EnsureAssignmentVisible(visibilityInput(row, input.Actor)); err != nil {
			return err
		}

		entry := s.engine.NewEntry(followup.FeedbackEntry{
			Remarks:    remarks,
			NFD:        dates["nfd"],
			EJD:        dates["ejd"],
			IFD:        dates["ifd"],
			CallStatus: strings.TrimSpace(input.CallStatus),
			EnteredBy:  input.Actor.Code,
			Note:       strings.TrimSpace(input.Note),
		})
		updates := map[string]any{
			"feedback":            followup.AppendFeedback(row.Feedback, entry),
			"remarks":             remarks,
			"next_follow_up_date": nullableString(dates["nfd"]),
		}
		if dates["ifd"] != "" {
			updates["interview_date"] = dates["ifd"]
		}
		if dates["ejd"] != "" {
			updates["expected_joining_date"] = dates["ejd"]
		}
		if statusProvided {
			updates["profile_status"] = status
		}
		if err := repo.Update(ctx, row.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update assignment")
		}

		if dates["joining_date"] != "" {
			if err := s.recordPlacement(ctx, repo, row, dates["joining_date"], input.BillingAmount); err != nil {
				return err
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventFeedbackRecorded,
			AggregateType: enums.AggregateAssignment,
			AggregateID:   row.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.FeedbackRecordedEvent{
				AssignmentID:     row.ID,
				Remarks:          remarks,
				CallStatus:       entry.CallStatus,
				ProfileStatus:    status,
				NextFollowUpDate: dates["nfd"],
				EnteredBy:        input.Actor.Code,
			},
		})
	})
	if err != nil {
		return nil, asTyped(err, "record feedback")
	}
	s.metrics.IncFeedback()
	return s.reload(ctx, input.AssignmentID)
}

func (s *service) recordPlacement(ctx context.Context, repo Repository, row *models.ClientJobAssignment, joiningDate string, amount *decimal.Decimal) error {
	if row.ClientJobID == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "assignment has no client job to place against")
	}
	candidate, err := repo.FindCandidate(ctx, row.CandidateID)
	if err != nil {
		return notFoundOr(err, "candidate not found", "load candidate")
	}
	day, err := time.Parse(storedDateLayout, joiningDate)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid joining_date").
			WithDetails(map[string]string{"joining_date": "expected YYYY-MM-DD"})
	}
	placement := &models.Placement{
		CandidateID: row.CandidateID,
		ClientJobID: *row.ClientJobID,
		Mobile:      candidate.Mobile,
		JoiningDate: &day,
	}
	if amount != nil {
		placement.BillingAmount = *amount
	}
	if err := repo.CreatePlacement(ctx, placement); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create placement")
	}
	return nil
}

// Reassign moves the assignment to another executive. The engine decides
// whether the move is allowed; this method only adds identity resolution,
// the busy flag and persistence. profile_status is left as it was: a Joined or
// Selected candidate stays placed under the new owner and keeps masking the
// number for other profiles.
func (s *service) Reassign(ctx context.Context, input ReassignInput) (view *View, err error) {
	start := time.Now()
	outcome := metrics.OutcomeError
	defer func() {
		if err == nil {
			outcome = metrics.OutcomeSuccess
		}
		s.metrics.IncReassign(outcome)
		s.metrics.ObserveReassign(time.Since(start))
	}()

	if err := validateActor(input.Actor); err != nil {
		outcome = metrics.OutcomeInvalid
		return nil, err
	}
	if input.AssignmentID == uuid.Nil {
		outcome = metrics.OutcomeInvalid
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}

	release, ok, err := s.busy.Acquire(ctx, input.AssignmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire reassignment flag")
	}
	if !ok {
		outcome = metrics.OutcomeBusy
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a reassignment for this assignment is already in progress")
	}
	defer func() {
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", relErr.Error()), "release reassignment flag failed")
		}
	}()

	row, err := s.repo.FindByID(ctx, input.AssignmentID)
	if err != nil {
		return nil, notFoundOr(err, "assignment not found", "load assignment")
	}
	if err := visibility.EnsureCanReassign(visibilityInput(row, input.Actor)); err != nil {
		return nil, err
	}

	from, err := s.executiveFor(ctx, row.AssignedTo)
	if err != nil {
		return nil, err
	}
	to, toEntry, err := s.targetFor(ctx, input.ToExecutive)
	if err != nil {
		return nil, err
	}

	var update followup.AssignmentUpdate
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		fresh, err := repo.FindByID(ctx, input.AssignmentID)
		if err != nil {
			return notFoundOr(err, "assignment not found", "load assignment")
		}
		if fresh.AssignedTo != row.AssignedTo {
			return pkgerrors.New(pkgerrors.CodeConflict, "assignment changed owner, reload and retry")
		}

		update, err = s.engine.Reassign(toAssignment(fresh), from, to, input.Actor.Code, input.Note)
		if err != nil {
			return err
		}

		if err := repo.Update(ctx, fresh.ID, map[string]any{
			"assigned_to":           toEntry.ID,
			"assigned_by":           input.Actor.ID,
			"remarks":               update.Remarks,
			"next_follow_up_date":   update.NFD,
			"interview_date":        nullableString(update.IFD),
			"expected_joining_date": nullableString(update.EJD),
			"feedback":              followup.AppendFeedback(fresh.Feedback, update.Entry),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update assignment")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAssignmentReassigned,
			AggregateType: enums.AggregateAssignment,
			AggregateID:   fresh.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.AssignmentReassignedEvent{
				AssignmentID:     fresh.ID,
				FromExecutive:    from.Code,
				ToExecutive:      update.AssignToID,
				AssignedBy:       update.AssignByID,
				NextFollowUpDate: update.NFD,
				AuditMessage:     update.FeedbackText,
			},
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, followup.ErrAssignmentLocked):
			outcome = metrics.OutcomeLocked
		case errors.Is(err, followup.ErrInvalidTarget), errors.Is(err, followup.ErrMissingActor):
			outcome = metrics.OutcomeInvalid
		}
		return nil, asTyped(err, "reassign")
	}

	if s.logg != nil {
		logCtx := s.logg.WithAssignmentID(ctx, input.AssignmentID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{"from": from.Code, "to": update.AssignToID, "nfd": update.NFD})
		s.logg.Info(logCtx, "assignment reassigned")
	}
	return s.reload(ctx, input.AssignmentID)
}

// EmitLapsed queues a followup_lapsed event for every assignment whose
// follow-up date was day and which is open again now. Reruns on the same
// local day do not duplicate events.
func (s *service) EmitLapsed(ctx context.Context, day time.Time) (int, error) {
	rows, err := s.repo.ListByFollowUpDates(ctx, followup.LapsedOn(day))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list lapsed follow-ups")
	}

	now := s.engine.Now()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	emitted := 0
	var errs error
	for i := range rows {
		row := rows[i]
		if !s.engine.IsAssignable(toAssignment(&row)) {
			continue
		}
		owner := row.AssignedTo.String()
		if entry, ok, lookupErr := s.directory.Lookup(ctx, row.AssignedTo); lookupErr == nil && ok {
			owner = entry.Code
		}
		var written bool
		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			var emitErr error
			written, emitErr = s.outbox.EmitIfNotExistsSince(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventFollowUpLapsed,
				AggregateType: enums.AggregateAssignment,
				AggregateID:   row.ID,
				Data: payloads.FollowUpLapsedEvent{
					AssignmentID:     row.ID,
					AssignedTo:       owner,
					NextFollowUpDate: derefString(row.NextFollowUpDate),
					LapsedAt:         now.UTC(),
				},
			}, since)
			return emitErr
		})
		if txErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("assignment %s: %w", row.ID, txErr))
			continue
		}
		if written {
			emitted++
		}
	}
	return emitted, errs
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*View, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "assignment not found", "reload assignment")
	}
	view := s.buildView(ctx, row)
	return &view, nil
}

func (s *service) executiveFor(ctx context.Context, id uuid.UUID) (followup.Executive, error) {
	entry, ok, err := s.directory.Lookup(ctx, id)
	if err != nil {
		return followup.Executive{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve current executive")
	}
	if !ok {
		return followup.Executive{ID: id.String(), Code: id.String()}, nil
	}
	return entry.Executive(), nil
}

// targetFor resolves the requested executive. Unknown codes come back as an
// inactive executive so the engine reports them as invalid targets.
func (s *service) targetFor(ctx context.Context, code string) (followup.Executive, employees.Entry, error) {
	entry, ok, err := s.directory.LookupCode(ctx, code)
	if err != nil {
		return followup.Executive{}, employees.Entry{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve target executive")
	}
	if !ok {
		return followup.Executive{Code: strings.TrimSpace(code)}, employees.Entry{}, nil
	}
	return entry.Executive(), entry, nil
}

func (s *service) normalizeDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	day, ok := followup.ParseCalendarDate(trimmed, s.engine.Location())
	if !ok {
		return "", fmt.Errorf("invalid date %q", raw)
	}
	return day.Format(storedDateLayout), nil
}

func (s *service) buildView(ctx context.Context, row *models.ClientJobAssignment) View {
	a := toAssignment(row)
	view := View{
		ID:                  row.ID,
		CandidateID:         row.CandidateID,
		ClientJobID:         row.ClientJobID,
		ProfileStatus:       row.ProfileStatus,
		EffectiveRemark:     a.EffectiveRemark(),
		Assignable:          s.engine.IsAssignable(a),
		NextFollowUpDate:    a.NextFollowUpDate,
		InterviewDate:       a.InterviewDate,
		ExpectedJoiningDate: a.ExpectedJoiningDate,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
	view.AssignedTo = ExecutiveRef{ID: row.AssignedTo, Code: row.AssignedTo.String()}
	if entry, ok, err := s.directory.Lookup(ctx, row.AssignedTo); err == nil && ok {
		view.AssignedTo = ExecutiveRef{ID: entry.ID, Code: entry.Code, DisplayName: entry.DisplayName}
	}
	if latest, ok := followup.Latest(a.Feedback); ok {
		view.Latest = LatestFeedback{
			Remarks:    latest.Remarks,
			CallStatus: latest.CallStatus,
			NFD:        latest.NFD,
			EJD:        latest.EJD,
			IFD:        latest.IFD,
			EnteredBy:  latest.EnteredBy,
			EntryTime:  latest.EntryTime,
		}
	}
	ordered := followup.NewestFirst(a.Feedback)
	view.Trail = make([]TrailEntry, 0, len(ordered))
	for _, entry := range ordered {
		name := entry.EnteredBy
		if strings.TrimSpace(name) != "" {
			name = s.directory.DisplayName(ctx, name)
		}
		view.Trail = append(view.Trail, TrailEntry{FeedbackEntry: entry, EnteredByName: name})
	}
	return view
}

// toAssignment is the single place a stored row becomes an engine value; the
// raw feedback string does not travel past it.
func toAssignment(row *models.ClientJobAssignment) followup.Assignment {
	a := followup.Assignment{
		CandidateID:         row.CandidateID.String(),
		ProfileStatus:       string(row.ProfileStatus),
		NextFollowUpDate:    strings.TrimSpace(derefString(row.NextFollowUpDate)),
		InterviewDate:       strings.TrimSpace(derefString(row.InterviewDate)),
		ExpectedJoiningDate: strings.TrimSpace(derefString(row.ExpectedJoiningDate)),
		Feedback:            followup.ParseFeedbackLog(row.Feedback),
	}
	if row.ClientJobID != nil && *row.ClientJobID != uuid.Nil {
		a.ClientJobID = row.ClientJobID.String()
	}
	return a
}

func visibilityInput(row *models.ClientJobAssignment, actor Actor) visibility.AssignmentVisibilityInput {
	return visibility.AssignmentVisibilityInput{Assignment: row, ViewerID: actor.ID, ViewerRole: actor.Role}
}

func validateActor(actor Actor) error {
	if actor.ID == uuid.Nil || strings.TrimSpace(actor.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "employee identity missing")
	}
	if !actor.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown employee role")
	}
	return nil
}

func actorRef(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{EmployeeID: actor.ID, Code: actor.Code, Role: actor.Role}
}

func labelOf(entry employees.Entry) string {
	if strings.TrimSpace(entry.DisplayName) == "" {
		return entry.Code
	}
	return entry.DisplayName
}

func notFoundOr(err error, notFound, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

// asTyped keeps typed errors raised inside a transaction and wraps the rest.
func asTyped(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
