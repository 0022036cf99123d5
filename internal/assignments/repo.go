package assignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an assignments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, assignment *models.ClientJobAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ClientJobAssignment, error) {
	var row models.ClientJobAssignment
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ExistsForCandidateJob(ctx context.Context, candidateID, clientJobID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ClientJobAssignment{}).
		Where("candidate_id = ? AND client_job_id = ?", candidateID, clientJobID).
		Count(&count).Error
	return count > 0, err
}

// ListByCandidate returns the candidate's assignments newest first, optionally
// restricted to one executive.
func (r *repository) ListByCandidate(ctx context.Context, candidateID uuid.UUID, assignedTo *uuid.UUID) ([]models.ClientJobAssignment, error) {
	query := r.db.WithContext(ctx).Where("candidate_id = ?", candidateID)
	if assignedTo != nil {
		query = query.Where("assigned_to = ?", *assignedTo)
	}
	var rows []models.ClientJobAssignment
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByFollowUpDates matches the stored text form of the follow-up date, so
// callers pass every spelling they expect.
func (r *repository) ListByFollowUpDates(ctx context.Context, dates []string) ([]models.ClientJobAssignment, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	var rows []models.ClientJobAssignment
	err := r.db.WithContext(ctx).
		Where("next_follow_up_date IN ?", dates).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ClientJobAssignment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	var row models.Candidate
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindClientJob(ctx context.Context, id uuid.UUID) (*models.ClientJob, error) {
	var row models.ClientJob
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CreatePlacement(ctx context.Context, placement *models.Placement) error {
	return r.db.WithContext(ctx).Create(placement).Error
}
