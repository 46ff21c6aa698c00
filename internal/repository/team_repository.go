package repository

import (
	"context"

	"github.com/devzoku/devzoku-api/internal/database"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

func membersByJoinOrder(db *gorm.DB) *gorm.DB {
	return db.Order("team_members.joined_at ASC, team_members.user_id ASC")
}

// Create creates a new team
func (r *GormTeamRepository) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(team).Error
}

// FindByID finds a team by ID with optional preloading
func (r *GormTeamRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Team, error) {
	query := r.db.WithContext(ctx)
	for _, p := range preload {
		if p == "Members" {
			query = query.Preload(p, membersByJoinOrder)
			continue
		}
		query = query.Preload(p)
	}

	var team models.Team
	if err := query.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByIDForUpdate finds a team by ID and locks the row
func (r *GormTeamRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// ExistsByName reports whether a team with exactly this name exists
func (r *GormTeamRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Team{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List retrieves teams with their captain and roster, paginated
func (r *GormTeamRepository) List(ctx context.Context, params utils.PaginationParams) ([]models.Team, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Team{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var teams []models.Team
	if err := r.db.WithContext(ctx).
		Preload("Captain").
		Preload("Members", membersByJoinOrder).
		Preload("Members.User").
		Order("teams.created_at DESC, teams.id DESC").
		Scopes(database.Paginate(params)).
		Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

// ListByMember lists teams the user belongs to, with the member roster
func (r *GormTeamRepository) ListByMember(ctx context.Context, userID uint64) ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.WithContext(ctx).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Preload("Members", membersByJoinOrder).
		Preload("Members.User").
		Order("teams.id ASC").
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(team).Error
}

// Delete hard deletes a team and its memberships
func (r *GormTeamRepository) Delete(ctx context.Context, id uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Team{}, id).Error
}

// AddMember adds a member to a team
func (r *GormTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error
}

// RemoveMember removes a member from a team
func (r *GormTeamRepository) RemoveMember(ctx context.Context, teamID, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{}).Error
}

// FindMember finds a specific team member
func (r *GormTeamRepository) FindMember(ctx context.Context, teamID, userID uint64) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists the members of a team, earliest joined first
func (r *GormTeamRepository) ListMembers(ctx context.Context, teamID uint64) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := r.db.WithContext(ctx).
		Scopes(membersByJoinOrder).
		Preload("User").
		Where("team_id = ?", teamID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembersOfTeams lists the members of all given teams
func (r *GormTeamRepository) ListMembersOfTeams(ctx context.Context, teamIDs []uint64) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if len(teamIDs) == 0 {
		return members, nil
	}
	if err := r.db.WithContext(ctx).
		Scopes(membersByJoinOrder).
		Preload("User").
		Where("team_id IN ?", teamIDs).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// CountMembers counts the members of a team
func (r *GormTeamRepository) CountMembers(ctx context.Context, teamID uint64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("team_id = ?", teamID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListTeamIDsByUser lists the IDs of teams the user belongs to
func (r *GormTeamRepository) ListTeamIDsByUser(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	if err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
