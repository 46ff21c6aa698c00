package services

import (
	"context"
	"fmt"

	"github.com/devzoku/devzoku-api/internal/constants"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/outbox"
	"github.com/devzoku/devzoku-api/internal/repository"
	"github.com/google/uuid"
)

// InvitationService handles join requests and their resolution by captains
type InvitationService struct {
	store *repository.Store
	now   Clock
}

// NewInvitationService creates a new InvitationService
func NewInvitationService(store *repository.Store, now Clock) *InvitationService {
	return &InvitationService{store: store, now: clockOrDefault(now)}
}

func (s *InvitationService) newNotification(kind models.NotificationType, message string, teamID uint64) models.Notification {
	return models.Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Message:   message,
		CreatedAt: s.now(),
		TeamID:    &teamID,
	}
}

// RequestToJoin adds the user to the team's pending list and notifies every
// current member.
func (s *InvitationService) RequestToJoin(ctx context.Context, teamID, userID uint64) (*models.Team, outbox.Intents, error) {
	var (
		team    *models.Team
		intents outbox.Intents
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		team, err = tx.Teams.FindByIDForUpdate(ctx, teamID)
		if err != nil {
			return notFound(err, ErrTeamNotFound, "find team")
		}
		if !team.IsAcceptingInvites {
			return ErrTeamClosedToInvites
		}

		if _, err := tx.Teams.FindMember(ctx, teamID, userID); err == nil {
			return ErrAlreadyTeamMember
		} else if !repository.IsNotFound(err) {
			return fmt.Errorf("failed to find membership: %w", err)
		}

		if team.HasPendingInvite(userID) {
			return ErrInvitePending
		}

		requester, err := tx.Users.FindByID(ctx, userID)
		if err != nil {
			return notFound(err, ErrUserNotFound, "find user")
		}

		team.PendingInvitesFromUsers = append(team.PendingInvitesFromUsers, userID)
		team.UpdatedAt = s.now()
		if err := tx.Teams.Update(ctx, team); err != nil {
			return fmt.Errorf("failed to update team: %w", err)
		}

		members, err := tx.Teams.ListMembers(ctx, teamID)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}

		intents.Add(outbox.Notify{
			Recipients: memberIDs(members),
			Event:      constants.EventNewInvitation,
			Notification: s.newNotification(
				models.NotificationInvitationSent,
				fmt.Sprintf("%s has requested to join your team %s", requester.Name, team.Name),
				team.ID,
			),
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	team, err = s.loadRoster(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	return team, intents, nil
}

// ListPendingInvites returns the users waiting on the team, oldest request
// first. Only members may look.
func (s *InvitationService) ListPendingInvites(ctx context.Context, teamID, actingUserID uint64) ([]models.User, error) {
	team, err := s.store.Teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, notFound(err, ErrTeamNotFound, "find team")
	}
	if _, err := s.store.Teams.FindMember(ctx, teamID, actingUserID); err != nil {
		return nil, notFound(err, ErrNotTeamMember, "find membership")
	}

	users, err := s.store.Users.FindByIDs(ctx, team.PendingInvitesFromUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending users: %w", err)
	}

	byID := make(map[uint64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]models.User, 0, len(users))
	for _, id := range team.PendingInvitesFromUsers {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}

// AcceptInvite moves a pending user into the team. Only the captain may
// accept, and only while the team has room.
func (s *InvitationService) AcceptInvite(ctx context.Context, teamID, pendingUserID, actingUserID uint64) (*models.Team, outbox.Intents, error) {
	var (
		team    *models.Team
		intents outbox.Intents
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		team, err = tx.Teams.FindByIDForUpdate(ctx, teamID)
		if err != nil {
			return notFound(err, ErrTeamNotFound, "find team")
		}
		if team.CaptainID != actingUserID {
			return ErrNotTeamCaptain
		}

		if !team.HasPendingInvite(pendingUserID) {
			if _, err := tx.Teams.FindMember(ctx, teamID, pendingUserID); err == nil {
				return ErrAlreadyTeamMember
			}
			return ErrInviteNotFound
		}

		count, err := tx.Teams.CountMembers(ctx, teamID)
		if err != nil {
			return fmt.Errorf("failed to count members: %w", err)
		}
		if count >= int64(team.TeamSize) {
			return ErrTeamFull
		}

		now := s.now()
		if err := tx.Teams.AddMember(ctx, &models.TeamMember{
			TeamID:   teamID,
			UserID:   pendingUserID,
			JoinedAt: now,
		}); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrAlreadyTeamMember
			}
			return fmt.Errorf("failed to add member: %w", err)
		}

		team.RemovePendingInvite(pendingUserID)
		team.UpdatedAt = now
		if err := tx.Teams.Update(ctx, team); err != nil {
			return fmt.Errorf("failed to update team: %w", err)
		}

		intents.Add(outbox.Notify{
			Recipients: []uint64{pendingUserID},
			Event:      constants.EventInvitationAccepted,
			Notification: s.newNotification(
				models.NotificationInvitationAccepted,
				fmt.Sprintf("Your request to join %s has been accepted", team.Name),
				team.ID,
			),
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	team, err = s.loadRoster(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	return team, intents, nil
}

// RejectInvite drops a pending request. The captain rejects it, or the
// requester withdraws it.
func (s *InvitationService) RejectInvite(ctx context.Context, teamID, pendingUserID, actingUserID uint64) (*models.Team, error) {
	var team *models.Team

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		team, err = tx.Teams.FindByIDForUpdate(ctx, teamID)
		if err != nil {
			return notFound(err, ErrTeamNotFound, "find team")
		}
		if team.CaptainID != actingUserID && pendingUserID != actingUserID {
			return ErrInviteActionForbidden
		}
		if !team.RemovePendingInvite(pendingUserID) {
			return ErrInviteNotFound
		}

		team.UpdatedAt = s.now()
		if err := tx.Teams.Update(ctx, team); err != nil {
			return fmt.Errorf("failed to update team: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadRoster(ctx, teamID)
}

// loadRoster rereads a committed team with its captain and members so
// responses carry the live member count.
func (s *InvitationService) loadRoster(ctx context.Context, teamID uint64) (*models.Team, error) {
	team, err := s.store.Teams.FindByID(ctx, teamID, teamRoster...)
	if err != nil {
		return nil, notFound(err, ErrTeamNotFound, "reload team")
	}
	return team, nil
}
