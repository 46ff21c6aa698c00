package repository

import (
	"context"
	"strings"

	"github.com/devzoku/devzoku-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormHackathonRepository is a GORM implementation of HackathonRepository
type GormHackathonRepository struct {
	db *gorm.DB
}

// NewHackathonRepository creates a new HackathonRepository
func NewHackathonRepository(db *gorm.DB) HackathonRepository {
	return &GormHackathonRepository{db: db}
}

func phasesInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("phase_order ASC, start_time ASC")
}

// Create creates a hackathon row without its phases
func (r *GormHackathonRepository) Create(ctx context.Context, hackathon *models.Hackathon) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(hackathon).Error
}

// CreatePhases creates the phase rows of a hackathon
func (r *GormHackathonRepository) CreatePhases(ctx context.Context, phases []models.HackathonPhase) error {
	if len(phases) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&phases).Error
}

// FindByID finds a hackathon with its ordered phases and organizer
func (r *GormHackathonRepository) FindByID(ctx context.Context, id uint64) (*models.Hackathon, error) {
	var hackathon models.Hackathon
	if err := r.db.WithContext(ctx).
		Preload("Phases", phasesInOrder).
		Preload("Organizer").
		First(&hackathon, id).Error; err != nil {
		return nil, err
	}
	return &hackathon, nil
}

// FindByIDForUpdate finds a hackathon and locks the row
func (r *GormHackathonRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*models.Hackathon, error) {
	var hackathon models.Hackathon
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&hackathon, id).Error; err != nil {
		return nil, err
	}
	return &hackathon, nil
}

// ExistsByTitle reports whether a hackathon with this title exists
func (r *GormHackathonRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Hackathon{}).
		Where("title = ?", title).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List retrieves hackathons matching the filter, soonest first
func (r *GormHackathonRepository) List(ctx context.Context, filter HackathonFilter) ([]models.Hackathon, error) {
	var hackathons []models.Hackathon
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return hackathons, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Hackathon{}).Preload("Organizer")

	if filter.IDs != nil {
		query = query.Where("id IN ?", filter.IDs)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.Mode != nil {
		query = query.Where("mode = ?", *filter.Mode)
	}
	if filter.OrganizerID != nil {
		query = query.Where("created_by = ?", *filter.OrganizerID)
	}
	if filter.StartFrom != nil {
		query = query.Where("start_time >= ?", *filter.StartFrom)
	}
	if filter.EndBy != nil {
		query = query.Where("end_time <= ?", *filter.EndBy)
	}

	if err := query.Order("start_time ASC, id ASC").Find(&hackathons).Error; err != nil {
		return nil, err
	}
	return hackathons, nil
}

// UpdatePositionHolders stores the winner snapshot
func (r *GormHackathonRepository) UpdatePositionHolders(ctx context.Context, hackathon *models.Hackathon) error {
	return r.db.WithContext(ctx).
		Model(hackathon).
		Update("position_holders", hackathon.PositionHolders).Error
}
