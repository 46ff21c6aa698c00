package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/devzoku/devzoku-api/internal/constants"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/repository"
	"github.com/devzoku/devzoku-api/internal/utils"
)

// TeamService handles team creation, membership and listing
type TeamService struct {
	store *repository.Store
	now   Clock
}

// NewTeamService creates a new TeamService
func NewTeamService(store *repository.Store, now Clock) *TeamService {
	return &TeamService{store: store, now: clockOrDefault(now)}
}

// CreateTeamInput represents input for creating a team
type CreateTeamInput struct {
	Name               string
	Description        string
	TeamSize           int
	IsAcceptingInvites bool
	SkillsNeeded       string
	CreatorID          uint64
}

// NameAvailability is the result of a team name check
type NameAvailability struct {
	IsUnique bool
	IsValid  bool
}

// LeaveResult describes what happened to the team after a member left
type LeaveResult struct {
	TeamDeleted  bool
	NewCaptainID *uint64
}

func validTeamName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= constants.MinTeamNameLength && n <= constants.MaxTeamNameLength
}

// CreateTeam creates a team with the creator as captain and first member
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if !validTeamName(name) {
		return nil, ErrInvalidTeamName
	}
	if input.TeamSize < constants.MinTeamSize || input.TeamSize > constants.MaxTeamSize {
		return nil, ErrInvalidTeamSize
	}

	exists, err := s.store.Teams.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check team name: %w", err)
	}
	if exists {
		return nil, ErrTeamNameTaken
	}

	now := s.now()
	team := &models.Team{
		Name:                    name,
		Description:             strings.TrimSpace(input.Description),
		TeamSize:                input.TeamSize,
		IsAcceptingInvites:      input.IsAcceptingInvites,
		SkillsNeeded:            strings.TrimSpace(input.SkillsNeeded),
		CaptainID:               input.CreatorID,
		CreatedBy:               input.CreatorID,
		PendingInvitesFromUsers: []uint64{},
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Teams.Create(ctx, team); err != nil {
			return err
		}
		return tx.Teams.AddMember(ctx, &models.TeamMember{
			TeamID:   team.ID,
			UserID:   input.CreatorID,
			JoinedAt: now,
		})
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrTeamNameTaken
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return s.GetTeam(ctx, team.ID)
}

// CheckNameAvailable reports whether a name is well-formed and unused.
// Names shorter than the minimum are reported invalid without a lookup.
func (s *TeamService) CheckNameAvailable(ctx context.Context, name string) (NameAvailability, error) {
	name = strings.TrimSpace(name)
	if !validTeamName(name) {
		return NameAvailability{}, nil
	}

	exists, err := s.store.Teams.ExistsByName(ctx, name)
	if err != nil {
		return NameAvailability{}, fmt.Errorf("failed to check team name: %w", err)
	}
	return NameAvailability{IsUnique: !exists, IsValid: true}, nil
}

// teamRoster preloads a team's captain and members in join order
var teamRoster = []string{"Captain", "Members", "Members.User"}

// GetTeam returns a team with its captain and ordered roster
func (s *TeamService) GetTeam(ctx context.Context, teamID uint64) (*models.Team, error) {
	team, err := s.store.Teams.FindByID(ctx, teamID, teamRoster...)
	if err != nil {
		return nil, notFound(err, ErrTeamNotFound, "find team")
	}
	return team, nil
}

// ListTeams returns one page of all teams
func (s *TeamService) ListTeams(ctx context.Context, params utils.PaginationParams) ([]models.Team, int64, error) {
	teams, total, err := s.store.Teams.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, total, nil
}

// ListJoinedTeams returns the teams the user belongs to with their rosters
func (s *TeamService) ListJoinedTeams(ctx context.Context, userID uint64) ([]models.Team, error) {
	teams, err := s.store.Teams.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined teams: %w", err)
	}
	return teams, nil
}

// LeaveTeam removes the user from the team. The earliest-joined remaining
// member becomes captain if the captain leaves, and the team is deleted
// when nobody is left. A team that has applied to any hackathon cannot be
// left.
func (s *TeamService) LeaveTeam(ctx context.Context, teamID, userID uint64) (*LeaveResult, error) {
	result := &LeaveResult{}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		team, err := tx.Teams.FindByIDForUpdate(ctx, teamID)
		if err != nil {
			return notFound(err, ErrTeamNotFound, "find team")
		}

		if _, err := tx.Teams.FindMember(ctx, teamID, userID); err != nil {
			return notFound(err, ErrNotTeamMember, "find membership")
		}

		applied, err := tx.Applications.CountByTeam(ctx, teamID)
		if err != nil {
			return fmt.Errorf("failed to count applications: %w", err)
		}
		if applied > 0 {
			return ErrTeamHasApplications
		}

		if err := tx.Teams.RemoveMember(ctx, teamID, userID); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}

		remaining, err := tx.Teams.ListMembers(ctx, teamID)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		if len(remaining) == 0 {
			result.TeamDeleted = true
			return tx.Teams.Delete(ctx, teamID)
		}

		if team.CaptainID == userID {
			successor := remaining[0].UserID
			team.CaptainID = successor
			result.NewCaptainID = &successor
		}
		team.RemovePendingInvite(userID)
		team.UpdatedAt = s.now()
		return tx.Teams.Update(ctx, team)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
