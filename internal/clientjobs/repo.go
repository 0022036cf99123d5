package clientjobs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/recruitdesk-backend/pkg/pagination"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, job *models.ClientJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ClientJob, error) {
	var job models.ClientJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// List pages jobs newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status enums.ClientJobStatus, limit int, cursor *pkgpagination.Cursor) ([]models.ClientJob, error) {
	query := r.db.WithContext(ctx).Model(&models.ClientJob{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.ClientJob
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ClientJobStatus) error {
	return r.db.WithContext(ctx).Model(&models.ClientJob{}).Where("id = ?", id).Update("status", status).Error
}
