package repository

import (
	"context"

	"github.com/devzoku/devzoku-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProfileRepository is a GORM implementation of ProfileRepository
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindOrCreateDeveloper loads a developer profile, creating an empty one if missing
func (r *GormProfileRepository) FindOrCreateDeveloper(ctx context.Context, userID uint64) (*models.DeveloperProfile, error) {
	return r.findOrCreateDeveloper(ctx, userID, false)
}

// FindOrCreateDeveloperForUpdate is FindOrCreateDeveloper with a row lock
func (r *GormProfileRepository) FindOrCreateDeveloperForUpdate(ctx context.Context, userID uint64) (*models.DeveloperProfile, error) {
	return r.findOrCreateDeveloper(ctx, userID, true)
}

// findOrCreateDeveloper inserts an empty profile when none exists, then reads
// it. The insert ignores conflicts so concurrent first writers for the same
// user both end up reading the one row, the locked read waiting its turn.
func (r *GormProfileRepository) findOrCreateDeveloper(ctx context.Context, userID uint64, lock bool) (*models.DeveloperProfile, error) {
	db := r.db.WithContext(ctx)

	empty := models.DeveloperProfile{UserID: userID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&empty).Error; err != nil {
		return nil, err
	}

	query := db
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var profile models.DeveloperProfile
	if err := query.Where("user_id = ?", userID).Take(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveDeveloper persists notification list and participation history
func (r *GormProfileRepository) SaveDeveloper(ctx context.Context, profile *models.DeveloperProfile) error {
	return r.db.WithContext(ctx).
		Model(profile).
		Select("Notifications", "Hackathons").
		Updates(profile).Error
}

// IncrementHackathonsOrganized bumps the organizer's event counter
func (r *GormProfileRepository) IncrementHackathonsOrganized(ctx context.Context, userID uint64) error {
	db := r.db.WithContext(ctx)
	profile := models.OrganizerProfile{UserID: userID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&profile).Error; err != nil {
		return err
	}
	return db.Model(&profile).
		UpdateColumn("hackathons_organized", gorm.Expr("hackathons_organized + ?", 1)).Error
}
