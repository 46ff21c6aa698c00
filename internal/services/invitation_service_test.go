package services

import (
	"context"
	"testing"

	"github.com/devzoku/devzoku-api/internal/constants"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/stretchr/testify/suite"
)

type InvitationServiceSuite struct {
	suite.Suite
	f       *fixtures
	service *InvitationService
	ctx     context.Context
}

func TestInvitationServiceSuite(t *testing.T) {
	suite.Run(t, new(InvitationServiceSuite))
}

func (s *InvitationServiceSuite) SetupTest() {
	s.f = newFixtures(s.T())
	s.service = NewInvitationService(s.f.store, s.f.clock.Now)
	s.ctx = context.Background()
}

func (s *InvitationServiceSuite) TestRequestToJoin_NotifiesEveryMember() {
	alice := s.f.developer("alice")
	bob := s.f.developer("bob")
	dave := s.f.developer("dave")
	team := s.f.team("Rockets", alice, bob)

	updated, intents, err := s.service.RequestToJoin(s.ctx, team.ID, dave.ID)
	s.Require().NoError(err)
	s.Equal([]uint64{dave.ID}, []uint64(updated.PendingInvitesFromUsers))
	s.Len(updated.Members, 2)

	notes := intents.Notifications()
	s.Require().Len(notes, 1)
	s.ElementsMatch([]uint64{alice.ID, bob.ID}, notes[0].Recipients)
	s.Equal(constants.EventNewInvitation, notes[0].Event)
	s.Equal(models.NotificationInvitationSent, notes[0].Notification.Type)
	s.Equal("dave has requested to join your team Rockets", notes[0].Notification.Message)
	s.NotEmpty(notes[0].Notification.ID)
	s.Require().NotNil(notes[0].Notification.TeamID)
	s.Equal(team.ID, *notes[0].Notification.TeamID)
}

func (s *InvitationServiceSuite) TestRequestToJoin_Rejections() {
	alice := s.f.developer("alice")
	dave := s.f.developer("dave")
	team := s.f.team("Rockets", alice)

	_, _, err := s.service.RequestToJoin(s.ctx, team.ID, alice.ID)
	s.ErrorIs(err, ErrAlreadyTeamMember)

	_, _, err = s.service.RequestToJoin(s.ctx, team.ID, dave.ID)
	s.Require().NoError(err)
	_, _, err = s.service.RequestToJoin(s.ctx, team.ID, dave.ID)
	s.ErrorIs(err, ErrInvitePending)

	_, _, err = s.service.RequestToJoin(s.ctx, 999, dave.ID)
	s.ErrorIs(err, ErrTeamNotFound)

	closed := s.f.team("Closed", alice)
	closed.IsAcceptingInvites = false
	s.Require().NoError(s.f.store.Teams.Update(s.ctx, closed))
	_, _, err = s.service.RequestToJoin(s.ctx, closed.ID, dave.ID)
	s.ErrorIs(err, ErrTeamClosedToInvites)
}

func (s *InvitationServiceSuite) TestListPendingInvites_KeepsRequestOrder() {
	alice := s.f.developer("alice")
	zed := s.f.developer("zed")
	amy := s.f.developer("amy")
	outsider := s.f.developer("outsider")
	team := s.f.team("Queue", alice)

	_, _, err := s.service.RequestToJoin(s.ctx, team.ID, zed.ID)
	s.Require().NoError(err)
	_, _, err = s.service.RequestToJoin(s.ctx, team.ID, amy.ID)
	s.Require().NoError(err)

	users, err := s.service.ListPendingInvites(s.ctx, team.ID, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal(zed.ID, users[0].ID)
	s.Equal(amy.ID, users[1].ID)

	_, err = s.service.ListPendingInvites(s.ctx, team.ID, outsider.ID)
	s.ErrorIs(err, ErrNotTeamMember)
}

func (s *InvitationServiceSuite) TestAcceptInvite_AddsMemberAndNotifiesRequester() {
	alice := s.f.developer("alice")
	dave := s.f.developer("dave")
	team := s.f.team("Rockets", alice)

	_, _, err := s.service.RequestToJoin(s.ctx, team.ID, dave.ID)
	s.Require().NoError(err)

	updated, intents, err := s.service.AcceptInvite(s.ctx, team.ID, dave.ID, alice.ID)
	s.Require().NoError(err)
	s.False(updated.HasPendingInvite(dave.ID))
	s.Require().Len(updated.Members, 2)
	s.Equal(alice.ID, updated.Members[0].UserID)
	s.Equal(dave.ID, updated.Members[1].UserID)
	s.Equal("dave", updated.Members[1].User.Name)
	s.Equal(alice.ID, updated.Captain.ID)

	member, err := s.f.store.Teams.FindMember(s.ctx, team.ID, dave.ID)
	s.Require().NoError(err)
	s.Equal(baseTime, member.JoinedAt.UTC())

	notes := intents.Notifications()
	s.Require().Len(notes, 1)
	s.Equal([]uint64{dave.ID}, notes[0].Recipients)
	s.Equal(constants.EventInvitationAccepted, notes[0].Event)
	s.Equal(models.NotificationInvitationAccepted, notes[0].Notification.Type)
	s.Equal("Your request to join Rockets has been accepted", notes[0].Notification.Message)
}

func (s *InvitationServiceSuite) TestAcceptInvite_SecondAcceptIsConflict() {
	alice := s.f.developer("alice")
	dave := s.f.developer("dave")
	team := s.f.team("Rockets", alice)

	_, _, err := s.service.RequestToJoin(s.ctx, team.ID, dave.ID)
	s.Require().NoError(err)
	_, _, err = s.service.AcceptInvite(s.ctx, team.ID, dave.ID, alice.ID)
	s.Require().NoError(err)

	_, _, err = s.service.AcceptInvite(s.ctx, team.ID, dave.ID, alice.ID)
	s.ErrorIs(err, ErrAlreadyTeamMember)

	count, err := s.f.store.Teams.CountMembers(s.ctx, team.ID)
	s.Require().NoError(err)
	s.EqualValues(2, count)
}

func (s *InvitationServiceSuite) TestAcceptInvite_Guards() {
	alice := s.f.developer("alice")
	bob := s.f.developer("bob")
	dave := s.f.developer("dave")
	erin := s.f.developer("erin")
	team := s.f.team("Tiny", alice, bob)
	team.TeamSize = 2
	s.Require().NoError(s.f.store.Teams.Update(s.ctx, team))

	_, _, err := s.service.AcceptInvite(s.ctx, team.ID, dave.ID, alice.ID)
	s.ErrorIs(err, ErrInviteNotFound)

	_, _, err = s.service.RequestToJoin(s.ctx, team.ID, dave.ID)
	s.Require().NoError(err)
	_, _, err = s.service.RequestToJoin(s.ctx, team.ID, erin.ID)
	s.Require().NoError(err)

	_, _, err = s.service.AcceptInvite(s.ctx, team.ID, dave.ID, bob.ID)
	s.ErrorIs(err, ErrNotTeamCaptain)

	_, _, err = s.service.AcceptInvite(s.ctx, team.ID, dave.ID, alice.ID)
	s.ErrorIs(err, ErrTeamFull)

	reloaded, err := s.f.store.Teams.FindByID(s.ctx, team.ID)
	s.Require().NoError(err)
	s.True(reloaded.HasPendingInvite(dave.ID))
}

func (s *InvitationServiceSuite) TestRejectInvite_ByCaptainOrRequester() {
	alice := s.f.developer("alice")
	bob := s.f.developer("bob")
	dave := s.f.developer("dave")
	erin := s.f.developer("erin")
	team := s.f.team("Rockets", alice, bob)

	_, _, err := s.service.RequestToJoin(s.ctx, team.ID, dave.ID)
	s.Require().NoError(err)
	_, _, err = s.service.RequestToJoin(s.ctx, team.ID, erin.ID)
	s.Require().NoError(err)

	_, err = s.service.RejectInvite(s.ctx, team.ID, dave.ID, bob.ID)
	s.ErrorIs(err, ErrInviteActionForbidden)

	updated, err := s.service.RejectInvite(s.ctx, team.ID, dave.ID, alice.ID)
	s.Require().NoError(err)
	s.False(updated.HasPendingInvite(dave.ID))
	s.Len(updated.Members, 2)

	updated, err = s.service.RejectInvite(s.ctx, team.ID, erin.ID, erin.ID)
	s.Require().NoError(err)
	s.Empty(updated.PendingInvitesFromUsers)

	_, err = s.service.RejectInvite(s.ctx, team.ID, erin.ID, erin.ID)
	s.ErrorIs(err, ErrInviteNotFound)
}
