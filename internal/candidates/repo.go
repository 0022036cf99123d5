package candidates

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
)

// Repository exposes candidate persistence and the lookups the mobile mask needs.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, candidate *models.Candidate) error {
	return r.db.WithContext(ctx).Create(candidate).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.WithContext(ctx).First(&candidate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

// Search matches name or mobile and pages newest first.
func (r *Repository) Search(ctx context.Context, opts searchQuery) ([]models.Candidate, error) {
	query := r.db.WithContext(ctx).Model(&models.Candidate{})
	if term := strings.TrimSpace(opts.term); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR mobile LIKE ?", like, like)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	var rows []models.Candidate
	if err := query.Order("created_at DESC").Order("id DESC").Limit(opts.limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// StatusesForMobiles returns the profile status of every assignment whose
// candidate carries one of mobiles, across all candidates.
func (r *Repository) StatusesForMobiles(ctx context.Context, mobiles []string) ([]maskRow, error) {
	if len(mobiles) == 0 {
		return nil, nil
	}
	var rows []maskRow
	err := r.db.WithContext(ctx).
		Table("client_job_assignments AS a").
		Select("a.candidate_id AS candidate_id, c.mobile AS mobile, a.profile_status AS profile_status").
		Joins("JOIN candidates AS c ON c.id = a.candidate_id").
		Where("c.mobile IN ?", mobiles).
		Where("a.profile_status <> ''").
		Scan(&rows).Error
	return rows, err
}

// PlacementsForMobiles returns placement rows recorded against mobiles.
func (r *Repository) PlacementsForMobiles(ctx context.Context, mobiles []string) ([]models.Placement, error) {
	if len(mobiles) == 0 {
		return nil, nil
	}
	var rows []models.Placement
	err := r.db.WithContext(ctx).
		Where("mobile IN ?", mobiles).
		Where("joining_date IS NOT NULL").
		Find(&rows).Error
	return rows, err
}
