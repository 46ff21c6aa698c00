package repository

import (
	"context"
	"time"

	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByIDs finds all users with the given IDs
	FindByIDs(ctx context.Context, ids []uint64) ([]models.User, error)

	// LockByID takes a row lock on the user for the rest of the transaction.
	// A missing user is not an error.
	LockByID(ctx context.Context, id uint64) error
}

// ProfileRepository defines the interface for developer and organizer profiles
type ProfileRepository interface {
	// FindOrCreateDeveloper loads a developer profile, creating an empty one if missing
	FindOrCreateDeveloper(ctx context.Context, userID uint64) (*models.DeveloperProfile, error)

	// FindOrCreateDeveloperForUpdate is FindOrCreateDeveloper with a row lock
	FindOrCreateDeveloperForUpdate(ctx context.Context, userID uint64) (*models.DeveloperProfile, error)

	// SaveDeveloper persists notification list and participation history
	SaveDeveloper(ctx context.Context, profile *models.DeveloperProfile) error

	// IncrementHackathonsOrganized bumps the organizer's event counter
	IncrementHackathonsOrganized(ctx context.Context, userID uint64) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a new team
	Create(ctx context.Context, team *models.Team) error

	// FindByID finds a team by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Team, error)

	// FindByIDForUpdate finds a team by ID and locks the row
	FindByIDForUpdate(ctx context.Context, id uint64) (*models.Team, error)

	// ExistsByName reports whether a team with exactly this name exists
	ExistsByName(ctx context.Context, name string) (bool, error)

	// List retrieves teams with their captain and roster, paginated
	List(ctx context.Context, params utils.PaginationParams) ([]models.Team, int64, error)

	// ListByMember lists teams the user belongs to, with the member roster
	ListByMember(ctx context.Context, userID uint64) ([]models.Team, error)

	// Update updates a team
	Update(ctx context.Context, team *models.Team) error

	// Delete hard deletes a team and its memberships
	Delete(ctx context.Context, id uint64) error

	// AddMember adds a member to a team
	AddMember(ctx context.Context, member *models.TeamMember) error

	// RemoveMember removes a member from a team
	RemoveMember(ctx context.Context, teamID, userID uint64) error

	// FindMember finds a specific team member
	FindMember(ctx context.Context, teamID, userID uint64) (*models.TeamMember, error)

	// ListMembers lists the members of a team, earliest joined first
	ListMembers(ctx context.Context, teamID uint64) ([]models.TeamMember, error)

	// ListMembersOfTeams lists the members of all given teams
	ListMembersOfTeams(ctx context.Context, teamIDs []uint64) ([]models.TeamMember, error)

	// CountMembers counts the members of a team
	CountMembers(ctx context.Context, teamID uint64) (int64, error)

	// ListTeamIDsByUser lists the IDs of teams the user belongs to
	ListTeamIDsByUser(ctx context.Context, userID uint64) ([]uint64, error)
}

// HackathonFilter holds the filters that can be pushed down to the store.
// Status, tags and duration are derived or stored as JSON and are applied
// by the caller after fetching.
type HackathonFilter struct {
	Search      string
	Mode        *models.HackathonMode
	OrganizerID *uint64
	StartFrom   *time.Time
	EndBy       *time.Time
	// IDs restricts the result when non-nil. An empty non-nil slice matches nothing.
	IDs []uint64
}

// HackathonRepository defines the interface for hackathon data access
type HackathonRepository interface {
	// Create creates a hackathon row without its phases
	Create(ctx context.Context, hackathon *models.Hackathon) error

	// CreatePhases creates the phase rows of a hackathon
	CreatePhases(ctx context.Context, phases []models.HackathonPhase) error

	// FindByID finds a hackathon with its ordered phases and organizer
	FindByID(ctx context.Context, id uint64) (*models.Hackathon, error)

	// FindByIDForUpdate finds a hackathon and locks the row
	FindByIDForUpdate(ctx context.Context, id uint64) (*models.Hackathon, error)

	// ExistsByTitle reports whether a hackathon with this title exists
	ExistsByTitle(ctx context.Context, title string) (bool, error)

	// List retrieves hackathons matching the filter, soonest first
	List(ctx context.Context, filter HackathonFilter) ([]models.Hackathon, error)

	// UpdatePositionHolders stores the winner snapshot
	UpdatePositionHolders(ctx context.Context, hackathon *models.Hackathon) error
}

// ApplicationRepository defines the interface for team applications
type ApplicationRepository interface {
	// Create records an application
	Create(ctx context.Context, application *models.TeamHackathon) error

	// Find finds the application of a team to a hackathon
	Find(ctx context.Context, teamID, hackathonID uint64) (*models.TeamHackathon, error)

	// ListByHackathon lists all applications to a hackathon with their teams
	ListByHackathon(ctx context.Context, hackathonID uint64) ([]models.TeamHackathon, error)

	// CountByTeam counts the applications of a team
	CountByTeam(ctx context.Context, teamID uint64) (int64, error)

	// CountMembersApplied counts how many of the users already belong to a
	// team that applied to the hackathon
	CountMembersApplied(ctx context.Context, hackathonID uint64, userIDs []uint64) (int64, error)

	// HackathonIDsByTeams lists the hackathons any of the teams applied to
	HackathonIDsByTeams(ctx context.Context, teamIDs []uint64) ([]uint64, error)

	// SetPosition sets the position of one application
	SetPosition(ctx context.Context, teamID, hackathonID uint64, position models.Position) error
}

// InteractionRepository defines the interface for the interaction log
type InteractionRepository interface {
	// Create appends an interaction
	Create(ctx context.Context, interaction *models.UserInteraction) error

	// HasViewSince reports whether the user viewed the hackathon at or after since
	HasViewSince(ctx context.Context, userID, hackathonID uint64, since time.Time) (bool, error)
}

// FailedEmailJobRepository defines the interface for the email dead-letter store
type FailedEmailJobRepository interface {
	// Create stores a dead-lettered job
	Create(ctx context.Context, job *models.FailedEmailJob) error

	// ListUnresolved lists dead letters oldest first
	ListUnresolved(ctx context.Context, limit int) ([]models.FailedEmailJob, error)

	// MarkResolved flags a dead letter as re-enqueued
	MarkResolved(ctx context.Context, id uint64, at time.Time) error
}
