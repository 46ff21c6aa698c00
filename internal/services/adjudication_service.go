package services

import (
	"context"
	"fmt"

	"github.com/devzoku/devzoku-api/internal/lifecycle"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/outbox"
	"github.com/devzoku/devzoku-api/internal/queue"
	"github.com/devzoku/devzoku-api/internal/repository"
	"go.uber.org/zap"
)

// AdjudicationService records hackathon results
type AdjudicationService struct {
	store *repository.Store
	now   Clock
	log   *zap.Logger
}

// NewAdjudicationService creates a new AdjudicationService
func NewAdjudicationService(store *repository.Store, now Clock, log *zap.Logger) *AdjudicationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdjudicationService{
		store: store,
		now:   clockOrDefault(now),
		log:   log.Named("adjudication"),
	}
}

// AdjudicationResult is the hackathon after results were recorded and the
// positions of every applied team
type AdjudicationResult struct {
	Hackathon    models.Hackathon
	Status       lifecycle.Status
	Applications []models.TeamHackathon
}

func positionsFor(holders models.PositionHolders) (map[uint64]models.Position, error) {
	if holders.Winner == nil {
		return nil, ErrWinnerRequired
	}

	positions := make(map[uint64]models.Position, 3)
	named := []struct {
		team     *uint64
		position models.Position
	}{
		{holders.Winner, models.PositionWinner},
		{holders.FirstRunnerUp, models.PositionFirstRunnerUp},
		{holders.SecondRunnerUp, models.PositionSecondRunnerUp},
	}
	for _, n := range named {
		if n.team == nil {
			continue
		}
		if _, dup := positions[*n.team]; dup {
			return nil, ErrDuplicatePositionHolder
		}
		positions[*n.team] = n.position
	}
	return positions, nil
}

// MarkWinners stores the winner snapshot, labels every application, and
// writes each member's participation history in one transaction. Each
// captain of an applied team is then emailed the team's result.
func (s *AdjudicationService) MarkWinners(ctx context.Context, hackathonID uint64, holders models.PositionHolders, actingUserID uint64) (*AdjudicationResult, outbox.Intents, error) {
	positions, err := positionsFor(holders)
	if err != nil {
		return nil, nil, err
	}

	var (
		result  *AdjudicationResult
		intents outbox.Intents
	)

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		hackathon, err := tx.Hackathons.FindByIDForUpdate(ctx, hackathonID)
		if err != nil {
			return notFound(err, ErrHackathonNotFound, "find hackathon")
		}
		if hackathon.CreatedBy != actingUserID {
			return ErrNotHackathonOrganizer
		}

		applications, err := tx.Applications.ListByHackathon(ctx, hackathonID)
		if err != nil {
			return fmt.Errorf("failed to list applications: %w", err)
		}
		applied := make(map[uint64]bool, len(applications))
		for _, a := range applications {
			applied[a.TeamID] = true
		}
		for teamID := range positions {
			if !applied[teamID] {
				return ErrPositionHolderNotListed
			}
		}

		hackathon.SetPositionHolders(holders)
		if err := tx.Hackathons.UpdatePositionHolders(ctx, hackathon); err != nil {
			return fmt.Errorf("failed to store position holders: %w", err)
		}

		teamIDs := make([]uint64, 0, len(applications))
		teamPosition := make(map[uint64]models.Position, len(applications))
		for i := range applications {
			a := &applications[i]
			position, ok := positions[a.TeamID]
			if !ok {
				position = models.PositionParticipant
			}
			if err := tx.Applications.SetPosition(ctx, a.TeamID, hackathonID, position); err != nil {
				return fmt.Errorf("failed to set position of team %d: %w", a.TeamID, err)
			}
			a.Position = &position
			teamIDs = append(teamIDs, a.TeamID)
			teamPosition[a.TeamID] = position
		}

		members, err := tx.Teams.ListMembersOfTeams(ctx, teamIDs)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		for _, m := range members {
			profile, err := tx.Profiles.FindOrCreateDeveloperForUpdate(ctx, m.UserID)
			if err != nil {
				return fmt.Errorf("failed to load profile of user %d: %w", m.UserID, err)
			}
			profile.RecordParticipation(hackathonID, teamPosition[m.TeamID])
			if err := tx.Profiles.SaveDeveloper(ctx, profile); err != nil {
				return fmt.Errorf("failed to save profile of user %d: %w", m.UserID, err)
			}
		}

		intents, err = s.resultEmails(ctx, tx, hackathon, applications)
		if err != nil {
			return err
		}

		result = &AdjudicationResult{
			Hackathon:    *hackathon,
			Status:       hackathon.Status(s.now()),
			Applications: applications,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("Winners marked",
		zap.Uint64("hackathon_id", hackathonID),
		zap.Int("teams", len(result.Applications)),
	)
	return result, intents, nil
}

func (s *AdjudicationService) resultEmails(ctx context.Context, tx *repository.Store, hackathon *models.Hackathon, applications []models.TeamHackathon) (outbox.Intents, error) {
	captainIDs := make([]uint64, 0, len(applications))
	for _, a := range applications {
		captainIDs = append(captainIDs, a.Team.CaptainID)
	}
	captains, err := tx.Users.FindByIDs(ctx, captainIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load captains: %w", err)
	}
	byID := make(map[uint64]models.User, len(captains))
	for _, c := range captains {
		byID[c.ID] = c
	}

	var intents outbox.Intents
	now := s.now()
	for _, a := range applications {
		captain, ok := byID[a.Team.CaptainID]
		if !ok {
			s.log.Warn("Captain not found, skipping result email", zap.Uint64("team_id", a.TeamID))
			continue
		}
		job, err := queue.NewJob(queue.JobWinnerResult, queue.WinnerResultData{
			To:             captain.Email,
			CaptainName:    captain.Name,
			TeamName:       a.Team.Name,
			HackathonID:    hackathon.ID,
			HackathonTitle: hackathon.Title,
			Position:       string(*a.Position),
		}, now)
		if err != nil {
			return nil, err
		}
		intents.Add(outbox.EnqueueEmail{Job: job})
	}
	return intents, nil
}
