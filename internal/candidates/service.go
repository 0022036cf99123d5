package candidates

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	"github.com/angelmondragon/recruitdesk-backend/pkg/followup"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox/payloads"
	pkgpagination "github.com/angelmondragon/recruitdesk-backend/pkg/pagination"
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

type candidatesRepository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	Search(ctx context.Context, opts searchQuery) ([]models.Candidate, error)
	StatusesForMobiles(ctx context.Context, mobiles []string) ([]maskRow, error)
	PlacementsForMobiles(ctx context.Context, mobiles []string) ([]models.Placement, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type maskMetrics interface {
	IncMobileRendered(masked bool)
}

// Service registers and looks up candidates.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*View, error)
	Get(ctx context.Context, id uuid.UUID) (*View, error)
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
}

type service struct {
	repo    candidatesRepository
	txRepo  func(tx *gorm.DB) candidatesRepository
	tx      txRunner
	outbox  outboxPublisher
	engine  *followup.Engine
	metrics maskMetrics
}

func NewService(repo *Repository, tx txRunner, publisher outboxPublisher, engine *followup.Engine, metrics maskMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("candidates repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if engine == nil {
		return nil, fmt.Errorf("follow-up engine required")
	}
	return &service{
		repo:    repo,
		txRepo:  func(tx *gorm.DB) candidatesRepository { return repo.WithTx(tx) },
		tx:      tx,
		outbox:  publisher,
		engine:  engine,
		metrics: metrics,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*View, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee identity missing")
	}
	details := map[string]string{}
	if strings.TrimSpace(input.FullName) == "" {
		details["full_name"] = "is required"
	}
	if !mobilePattern.MatchString(NormalizeMobile(input.Mobile)) {
		details["mobile"] = "must be a 10 digit number"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid candidate").WithDetails(details)
	}

	candidate := input.toModel()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.txRepo(tx).Create(ctx, candidate); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCandidateRegistered,
			AggregateType: enums.AggregateCandidate,
			AggregateID:   candidate.ID,
			Actor:         &outbox.ActorRef{EmployeeID: input.ActorID, Code: input.ActorCode},
			Data: payloads.CandidateRegisteredEvent{
				CandidateID: candidate.ID,
				CreatedBy:   input.ActorCode,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register candidate")
	}

	views, err := s.render(ctx, []models.Candidate{*candidate})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "candidate id required")
	}
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "candidate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load candidate")
	}
	views, err := s.render(ctx, []models.Candidate{*candidate})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *service) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	query := searchQuery{
		term:  params.Query,
		limit: pkgpagination.LimitWithBuffer(params.Limit),
	}
	listing := pkgpagination.Listing{Name: "candidates", Filter: params.Query}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(listing, params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search candidates")
	}
	page, next := pkgpagination.Trim(rows, params.Limit, listing, func(c models.Candidate) pkgpagination.Cursor {
		return pkgpagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})

	items, err := s.render(ctx, page)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Items: items, Cursor: next}, nil
}

// render builds one mask index for the whole batch and passes every mobile
// through it.
func (s *service) render(ctx context.Context, rows []models.Candidate) ([]View, error) {
	if len(rows) == 0 {
		return []View{}, nil
	}
	mobiles := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if !seen[row.Mobile] {
			seen[row.Mobile] = true
			mobiles = append(mobiles, row.Mobile)
		}
	}

	statuses, err := s.repo.StatusesForMobiles(ctx, mobiles)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile statuses")
	}
	placements, err := s.repo.PlacementsForMobiles(ctx, mobiles)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load placements")
	}

	records := make([]followup.MaskRecord, 0, len(statuses)+len(placements))
	for _, st := range statuses {
		records = append(records, followup.MaskRecord{Mobile: st.Mobile, Holder: st.CandidateID.String(), ProfileStatus: st.ProfileStatus})
	}
	ownJoining := map[uuid.UUID]time.Time{}
	for _, p := range placements {
		if p.JoiningDate == nil {
			continue
		}
		jd := calendarDay(*p.JoiningDate, s.engine.Location())
		records = append(records, followup.MaskRecord{Mobile: p.Mobile, Holder: p.CandidateID.String(), JoiningDates: []time.Time{jd}})
		if earliest, ok := ownJoining[p.CandidateID]; !ok || jd.Before(earliest) {
			ownJoining[p.CandidateID] = jd
		}
	}
	idx := s.engine.MaskIndex(records)

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		var own *time.Time
		if jd, ok := ownJoining[row.ID]; ok {
			own = &jd
		}
		view := toView(row, s.engine.DisplayMobile(row.Mobile, row.ID.String(), own, idx))
		if s.metrics != nil {
			s.metrics.IncMobileRendered(view.Masked)
		}
		views = append(views, view)
	}
	return views, nil
}

// calendarDay pins a stored DATE to midnight in loc; drivers hand DATE columns
// back as UTC midnight.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
