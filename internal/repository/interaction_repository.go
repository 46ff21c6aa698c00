package repository

import (
	"context"
	"time"

	"github.com/devzoku/devzoku-api/internal/models"
	"gorm.io/gorm"
)

// GormInteractionRepository is a GORM implementation of InteractionRepository
type GormInteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new InteractionRepository
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &GormInteractionRepository{db: db}
}

// Create appends an interaction
func (r *GormInteractionRepository) Create(ctx context.Context, interaction *models.UserInteraction) error {
	return r.db.WithContext(ctx).Create(interaction).Error
}

// HasViewSince reports whether the user viewed the hackathon at or after since
func (r *GormInteractionRepository) HasViewSince(ctx context.Context, userID, hackathonID uint64, since time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserInteraction{}).
		Where("user_id = ? AND hackathon_id = ? AND type = ? AND created_at >= ?",
			userID, hackathonID, models.InteractionView, since).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
