package repository

import (
	"context"

	"github.com/devzoku/devzoku-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormApplicationRepository is a GORM implementation of ApplicationRepository
type GormApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &GormApplicationRepository{db: db}
}

// Create records an application
func (r *GormApplicationRepository) Create(ctx context.Context, application *models.TeamHackathon) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(application).Error
}

// Find finds the application of a team to a hackathon
func (r *GormApplicationRepository) Find(ctx context.Context, teamID, hackathonID uint64) (*models.TeamHackathon, error) {
	var application models.TeamHackathon
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND hackathon_id = ?", teamID, hackathonID).
		First(&application).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

// ListByHackathon lists all applications to a hackathon with their teams
func (r *GormApplicationRepository) ListByHackathon(ctx context.Context, hackathonID uint64) ([]models.TeamHackathon, error) {
	var applications []models.TeamHackathon
	if err := r.db.WithContext(ctx).
		Preload("Team").
		Where("hackathon_id = ?", hackathonID).
		Order("submitted_at ASC, team_id ASC").
		Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

// CountByTeam counts the applications of a team
func (r *GormApplicationRepository) CountByTeam(ctx context.Context, teamID uint64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TeamHackathon{}).
		Where("team_id = ?", teamID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountMembersApplied counts how many of the users already belong to a team
// that applied to the hackathon
func (r *GormApplicationRepository) CountMembersApplied(ctx context.Context, hackathonID uint64, userIDs []uint64) (int64, error) {
	var count int64
	if len(userIDs) == 0 {
		return 0, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.TeamHackathon{}).
		Joins("JOIN team_members ON team_members.team_id = team_hackathons.team_id").
		Where("team_hackathons.hackathon_id = ? AND team_members.user_id IN ?", hackathonID, userIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HackathonIDsByTeams lists the hackathons any of the teams applied to
func (r *GormApplicationRepository) HackathonIDsByTeams(ctx context.Context, teamIDs []uint64) ([]uint64, error) {
	ids := []uint64{}
	if len(teamIDs) == 0 {
		return ids, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.TeamHackathon{}).
		Where("team_id IN ?", teamIDs).
		Distinct().
		Pluck("hackathon_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// SetPosition sets the position of one application
func (r *GormApplicationRepository) SetPosition(ctx context.Context, teamID, hackathonID uint64, position models.Position) error {
	return r.db.WithContext(ctx).
		Model(&models.TeamHackathon{}).
		Where("team_id = ? AND hackathon_id = ?", teamID, hackathonID).
		Update("position", position).Error
}
