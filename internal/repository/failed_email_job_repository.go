package repository

import (
	"context"
	"time"

	"github.com/devzoku/devzoku-api/internal/models"
	"gorm.io/gorm"
)

// GormFailedEmailJobRepository is a GORM implementation of FailedEmailJobRepository
type GormFailedEmailJobRepository struct {
	db *gorm.DB
}

// NewFailedEmailJobRepository creates a new FailedEmailJobRepository
func NewFailedEmailJobRepository(db *gorm.DB) FailedEmailJobRepository {
	return &GormFailedEmailJobRepository{db: db}
}

// Create stores a dead-lettered job
func (r *GormFailedEmailJobRepository) Create(ctx context.Context, job *models.FailedEmailJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// ListUnresolved lists dead letters oldest first
func (r *GormFailedEmailJobRepository) ListUnresolved(ctx context.Context, limit int) ([]models.FailedEmailJob, error) {
	var jobs []models.FailedEmailJob
	if err := r.db.WithContext(ctx).
		Where("resolved = ?", false).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkResolved flags a dead letter as re-enqueued
func (r *GormFailedEmailJobRepository) MarkResolved(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.FailedEmailJob{}).
		Where("id = ?", id).
		Updates(map[string]any{"resolved": true, "retried_at": at}).Error
}
