package services

import (
	"context"
	"fmt"
	"time"

	apierrors "github.com/devzoku/devzoku-api/internal/errors"
	"github.com/devzoku/devzoku-api/internal/lifecycle"
	"github.com/devzoku/devzoku-api/internal/metrics"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/outbox"
	"github.com/devzoku/devzoku-api/internal/queue"
	"github.com/devzoku/devzoku-api/internal/repository"
	"go.uber.org/zap"
)

// ApplicationService applies teams to hackathons
type ApplicationService struct {
	store       *repository.Store
	dedupWindow time.Duration
	now         Clock
	log         *zap.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(store *repository.Store, dedupWindow time.Duration, now Clock, log *zap.Logger) *ApplicationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ApplicationService{
		store:       store,
		dedupWindow: dedupWindow,
		now:         clockOrDefault(now),
		log:         log.Named("applications"),
	}
}

// Apply records the team's application to the hackathon. Checks run in a
// fixed order and the first failing one is reported. On success every
// member gets a registration email and a register interaction.
func (s *ApplicationService) Apply(ctx context.Context, hackathonID, teamID, actingUserID uint64) (*models.TeamHackathon, outbox.Intents, error) {
	var (
		application *models.TeamHackathon
		intents     outbox.Intents
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		hackathon, err := tx.Hackathons.FindByIDForUpdate(ctx, hackathonID)
		if err != nil {
			return notFound(err, ErrHackathonNotFound, "find hackathon")
		}
		team, err := tx.Teams.FindByID(ctx, teamID)
		if err != nil {
			return notFound(err, ErrTeamNotFound, "find team")
		}

		now := s.now()
		if !lifecycle.RegistrationOpen(hackathon.Schedule(), now) {
			if now.Before(hackathon.RegistrationStart) {
				return ErrRegistrationNotStarted
			}
			return ErrRegistrationOver
		}
		if !now.Before(hackathon.EndTime) {
			return ErrHackathonOver
		}

		members, err := tx.Teams.ListMembers(ctx, teamID)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		size := len(members)
		if size < hackathon.MinTeamSize || size > hackathon.MaxTeamSize {
			return ErrTeamSizeNotAllowed
		}

		if _, err := tx.Applications.Find(ctx, teamID, hackathonID); err == nil {
			return ErrAlreadyApplied
		} else if !repository.IsNotFound(err) {
			return fmt.Errorf("failed to check existing application: %w", err)
		}

		if team.CaptainID != actingUserID {
			return ErrOnlyCaptainCanApply
		}

		applied, err := tx.Applications.CountMembersApplied(ctx, hackathonID, memberIDs(members))
		if err != nil {
			return fmt.Errorf("failed to check member applications: %w", err)
		}
		if applied > 0 {
			return ErrMemberAppliedElsewhere
		}

		application = &models.TeamHackathon{
			TeamID:      teamID,
			HackathonID: hackathonID,
			SubmittedAt: now,
		}
		if err := tx.Applications.Create(ctx, application); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrAlreadyApplied
			}
			return fmt.Errorf("failed to create application: %w", err)
		}

		intents, err = s.registrationIntents(hackathon, team, members, now)
		return err
	})
	if err != nil {
		metrics.Applications.WithLabelValues(applicationResult(err)).Inc()
		return nil, nil, err
	}

	metrics.Applications.WithLabelValues(metrics.ResultOK).Inc()
	s.log.Info("Team applied to hackathon",
		zap.Uint64("team_id", teamID),
		zap.Uint64("hackathon_id", hackathonID),
		zap.Int("members", len(intents.Emails())),
	)
	return application, intents, nil
}

func (s *ApplicationService) registrationIntents(hackathon *models.Hackathon, team *models.Team, members []models.TeamMember, now time.Time) (outbox.Intents, error) {
	var intents outbox.Intents
	hackathonID := hackathon.ID

	for _, m := range members {
		job, err := queue.NewJob(queue.JobTeamRegistration, queue.TeamRegistrationData{
			To:             m.User.Email,
			MemberName:     m.User.Name,
			TeamName:       team.Name,
			HackathonID:    hackathon.ID,
			HackathonTitle: hackathon.Title,
			Mode:           string(hackathon.Mode),
			StartTime:      hackathon.StartTime,
			EndTime:        hackathon.EndTime,
		}, now)
		if err != nil {
			return nil, err
		}
		intents.Add(outbox.EnqueueEmail{Job: job})
	}

	for _, m := range members {
		intents.Add(outbox.RecordInteraction{
			Interaction: models.UserInteraction{
				UserID:      m.UserID,
				HackathonID: &hackathonID,
				Type:        models.InteractionRegister,
				Tags:        hackathon.Tags,
				Duration:    DurationBucket(hackathon.Duration()),
				Mode:        string(hackathon.Mode),
				CreatedAt:   now,
			},
			DedupWindow: s.dedupWindow,
		})
	}
	return intents, nil
}

func applicationResult(err error) string {
	if apierrors.KindOf(err) == apierrors.KindInternal {
		return metrics.ResultFailed
	}
	return metrics.ResultRejected
}
