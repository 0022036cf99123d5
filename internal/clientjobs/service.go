// Package clientjobs manages the client openings candidates are assigned to.
package clientjobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/recruitdesk-backend/pkg/errors"
	pkgpagination "github.com/angelmondragon/recruitdesk-backend/pkg/pagination"
)

type jobsRepository interface {
	Create(ctx context.Context, job *models.ClientJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ClientJob, error)
	List(ctx context.Context, status enums.ClientJobStatus, limit int, cursor *pkgpagination.Cursor) ([]models.ClientJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ClientJobStatus) error
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*View, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*View, error)
}

type CreateInput struct {
	ClientName string `json:"client_name" validate:"required,max=200"`
	Title      string `json:"title" validate:"required,max=200"`
	Location   string `json:"location" validate:"max=200"`
	Openings   int    `json:"openings" validate:"omitempty,min=1"`
}

type ListParams struct {
	Status string
	pkgpagination.Params
}

type ListResult struct {
	Items  []View `json:"items"`
	Cursor string `json:"cursor"`
}

type View struct {
	ID         uuid.UUID             `json:"id"`
	ClientName string                `json:"client_name"`
	Title      string                `json:"title"`
	Location   *string               `json:"location,omitempty"`
	Openings   int                   `json:"openings"`
	Status     enums.ClientJobStatus `json:"status"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

type service struct {
	repo jobsRepository
}

func NewService(repo jobsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("client jobs repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*View, error) {
	client := strings.TrimSpace(input.ClientName)
	title := strings.TrimSpace(input.Title)
	if client == "" || title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client_name and title are required")
	}
	openings := input.Openings
	if openings <= 0 {
		openings = 1
	}
	job := &models.ClientJob{
		ClientName: client,
		Title:      title,
		Openings:   openings,
		Status:     enums.ClientJobStatusOpen,
	}
	if loc := strings.TrimSpace(input.Location); loc != "" {
		job.Location = &loc
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client job")
	}
	view := toView(*job)
	return &view, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var status enums.ClientJobStatus
	if raw := strings.TrimSpace(params.Status); raw != "" {
		parsed, err := enums.ParseClientJobStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		status = parsed
	}
	listing := pkgpagination.Listing{Name: "client_jobs", Filter: string(status)}
	var cursor *pkgpagination.Cursor
	if params.Cursor != "" {
		parsed, err := pkgpagination.ParseCursor(listing, params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	rows, err := s.repo.List(ctx, status, pkgpagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list client jobs")
	}
	page, next := pkgpagination.Trim(rows, params.Limit, listing, func(j models.ClientJob) pkgpagination.Cursor {
		return pkgpagination.Cursor{CreatedAt: j.CreatedAt, ID: j.ID}
	})
	items := make([]View, 0, len(page))
	for _, row := range page {
		items = append(items, toView(row))
	}
	return &ListResult{Items: items, Cursor: next}, nil
}

// SetStatus moves a job between open, on_hold and closed. Only open jobs
// accept new assignments; existing assignments are untouched.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*View, error) {
	parsed, err := enums.ParseClientJobStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client job not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client job")
	}
	if err := s.repo.UpdateStatus(ctx, id, parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client job")
	}
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload client job")
	}
	view := toView(*job)
	return &view, nil
}

func toView(m models.ClientJob) View {
	return View{
		ID:         m.ID,
		ClientName: m.ClientName,
		Title:      m.Title,
		Location:   m.Location,
		Openings:   m.Openings,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
