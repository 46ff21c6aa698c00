package services

import (
	"context"
	"testing"
	"time"

	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/queue"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ApplicationServiceSuite struct {
	suite.Suite
	f       *fixtures
	service *ApplicationService
	ctx     context.Context
	org     *models.User
}

func TestApplicationServiceSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceSuite))
}

func (s *ApplicationServiceSuite) SetupTest() {
	s.f = newFixtures(s.T())
	s.service = NewApplicationService(s.f.store, 10*time.Minute, s.f.clock.Now, zap.NewNop())
	s.ctx = context.Background()
	s.org = s.f.organizer("org")
}

func (s *ApplicationServiceSuite) TestApply_Scenario() {
	h := s.f.hackathon(s.org, 2, 4)
	captain := s.f.developer("captain")
	m1 := s.f.developer("m1")
	m2 := s.f.developer("m2")
	teamA := s.f.team("Team A", captain, m1, m2)

	application, intents, err := s.service.Apply(s.ctx, h.ID, teamA.ID, captain.ID)
	s.Require().NoError(err)
	s.Equal(teamA.ID, application.TeamID)
	s.Equal(h.ID, application.HackathonID)
	s.Nil(application.Position)

	emails := intents.Emails()
	s.Require().Len(emails, 3)
	recipients := make([]string, 0, len(emails))
	for _, job := range emails {
		s.Equal(queue.JobTeamRegistration, job.Name)
		var data queue.TeamRegistrationData
		s.Require().NoError(job.Decode(&data))
		s.Equal("Team A", data.TeamName)
		s.Equal(h.Title, data.HackathonTitle)
		recipients = append(recipients, data.To)
	}
	s.ElementsMatch([]string{"captain@example.com", "m1@example.com", "m2@example.com"}, recipients)

	interactions := intents.Interactions()
	s.Require().Len(interactions, 3)
	for _, ri := range interactions {
		s.Equal(models.InteractionRegister, ri.Interaction.Type)
		s.Require().NotNil(ri.Interaction.HackathonID)
		s.Equal(h.ID, *ri.Interaction.HackathonID)
		s.Equal("48", ri.Interaction.Duration)
		s.Equal(10*time.Minute, ri.DedupWindow)
	}

	_, _, err = s.service.Apply(s.ctx, h.ID, teamA.ID, captain.ID)
	s.ErrorIs(err, ErrAlreadyApplied)

	other := s.f.developer("other")
	teamB := s.f.team("Team B", other, m1)
	_, _, err = s.service.Apply(s.ctx, h.ID, teamB.ID, other.ID)
	s.ErrorIs(err, ErrMemberAppliedElsewhere)

	count, err := s.f.store.Applications.CountByTeam(s.ctx, teamB.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ApplicationServiceSuite) TestApply_OnlyCaptain() {
	h := s.f.hackathon(s.org, 1, 4)
	captain := s.f.developer("captain")
	member := s.f.developer("member")
	team := s.f.team("Team", captain, member)

	_, _, err := s.service.Apply(s.ctx, h.ID, team.ID, member.ID)
	s.ErrorIs(err, ErrOnlyCaptainCanApply)
}

func (s *ApplicationServiceSuite) TestApply_TeamSizeBoundsAreInclusive() {
	h := s.f.hackathon(s.org, 2, 3)

	users := make([]*models.User, 0, 4)
	for _, name := range []string{"u1", "u2", "u3", "u4"} {
		users = append(users, s.f.developer(name))
	}
	lone := s.f.developer("lone")

	tooSmall := s.f.team("Too Small", lone)
	_, _, err := s.service.Apply(s.ctx, h.ID, tooSmall.ID, lone.ID)
	s.ErrorIs(err, ErrTeamSizeNotAllowed)

	tooBig := s.f.team("Too Big", users...)
	_, _, err = s.service.Apply(s.ctx, h.ID, tooBig.ID, users[0].ID)
	s.ErrorIs(err, ErrTeamSizeNotAllowed)

	atMin := s.f.team("At Min", s.f.developer("a1"), s.f.developer("a2"))
	_, _, err = s.service.Apply(s.ctx, h.ID, atMin.ID, atMin.CaptainID)
	s.NoError(err)

	atMax := s.f.team("At Max", s.f.developer("b1"), s.f.developer("b2"), s.f.developer("b3"))
	_, _, err = s.service.Apply(s.ctx, h.ID, atMax.ID, atMax.CaptainID)
	s.NoError(err)
}

func (s *ApplicationServiceSuite) TestApply_RegistrationWindowIsHalfOpen() {
	h := s.f.hackathon(s.org, 1, 4)
	captain := s.f.developer("captain")
	team := s.f.team("Timely", captain)

	s.f.clock.T = h.RegistrationStart.Add(-time.Second)
	_, _, err := s.service.Apply(s.ctx, h.ID, team.ID, captain.ID)
	s.ErrorIs(err, ErrRegistrationNotStarted)

	s.f.clock.T = h.RegistrationEnd
	_, _, err = s.service.Apply(s.ctx, h.ID, team.ID, captain.ID)
	s.ErrorIs(err, ErrRegistrationOver)

	s.f.clock.T = h.RegistrationStart
	_, _, err = s.service.Apply(s.ctx, h.ID, team.ID, captain.ID)
	s.NoError(err)
}

func (s *ApplicationServiceSuite) TestApply_Missing() {
	h := s.f.hackathon(s.org, 1, 4)
	captain := s.f.developer("captain")
	team := s.f.team("Team", captain)

	_, _, err := s.service.Apply(s.ctx, 999, team.ID, captain.ID)
	s.ErrorIs(err, ErrHackathonNotFound)

	_, _, err = s.service.Apply(s.ctx, h.ID, 999, captain.ID)
	s.ErrorIs(err, ErrTeamNotFound)
}
