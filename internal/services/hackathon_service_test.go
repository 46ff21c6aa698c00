package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/devzoku/devzoku-api/internal/lifecycle"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/repository"
	"github.com/devzoku/devzoku-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type HackathonServiceSuite struct {
	suite.Suite
	f       *fixtures
	posters *fakePosterStore
	service *HackathonService
	ctx     context.Context
	org     *models.User
}

func TestHackathonServiceSuite(t *testing.T) {
	suite.Run(t, new(HackathonServiceSuite))
}

func (s *HackathonServiceSuite) SetupTest() {
	s.f = newFixtures(s.T())
	s.posters = &fakePosterStore{}
	s.service = NewHackathonService(HackathonServiceConfig{
		Store:       s.f.store,
		Posters:     s.posters,
		DedupWindow: 10 * time.Minute,
		Now:         s.f.clock.Now,
		Logger:      zap.NewNop(),
	})
	s.ctx = context.Background()
	s.org = s.f.organizer("org")
}

func (s *HackathonServiceSuite) createInput() CreateHackathonInput {
	return CreateHackathonInput{
		OrganizerID:       s.org.ID,
		Title:             "Spring Hack",
		Description:       "build things",
		RegistrationStart: baseTime.Add(time.Hour),
		RegistrationEnd:   baseTime.Add(24 * time.Hour),
		StartTime:         baseTime.Add(48 * time.Hour),
		EndTime:           baseTime.Add(72 * time.Hour),
		MinTeamSize:       1,
		MaxTeamSize:       4,
		Mode:              models.ModeOffline,
		Tags:              []string{" ai ", "", "web"},
		Phases: []PhaseInput{
			{Name: "Ideation", StartTime: baseTime.Add(48 * time.Hour), EndTime: baseTime.Add(56 * time.Hour)},
			{Name: "Build", StartTime: baseTime.Add(56 * time.Hour), EndTime: baseTime.Add(72 * time.Hour)},
		},
		Poster: posterUpload(),
	}
}

func (s *HackathonServiceSuite) TestCreateHackathon_PersistsEverything() {
	hackathon, err := s.service.CreateHackathon(s.ctx, s.createInput())
	s.Require().NoError(err)

	s.Equal("Spring Hack", hackathon.Title)
	s.Equal([]string{"ai", "web"}, []string(hackathon.Tags))
	s.Equal("https://posters.example.com/poster.png", hackathon.Poster)
	s.Equal([]string{"poster.png"}, s.posters.uploads)

	stored, err := s.f.store.Hackathons.FindByID(s.ctx, hackathon.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Phases, 2)
	s.Equal("Ideation", stored.Phases[0].Name)
	s.Equal(1, stored.Phases[0].PhaseOrder)
	s.Equal(2, stored.Phases[1].PhaseOrder)

	var profile models.OrganizerProfile
	s.Require().NoError(s.f.db.First(&profile, "user_id = ?", s.org.ID).Error)
	s.Equal(1, profile.HackathonsOrganized)

	_, err = s.service.CreateHackathon(s.ctx, s.createInput())
	s.ErrorIs(err, ErrHackathonTitleTaken)
}

func (s *HackathonServiceSuite) TestCreateHackathon_Validation() {
	cases := []struct {
		name   string
		mutate func(in *CreateHackathonInput)
		want   error
	}{
		{"blank title", func(in *CreateHackathonInput) { in.Title = "  " }, ErrHackathonTitleRequired},
		{"bad mode", func(in *CreateHackathonInput) { in.Mode = "hybrid" }, ErrInvalidMode},
		{"max below min", func(in *CreateHackathonInput) { in.MinTeamSize = 3; in.MaxTeamSize = 2 }, ErrInvalidHackathonSize},
		{"past registration", func(in *CreateHackathonInput) { in.RegistrationStart = baseTime }, ErrScheduleInPast},
		{"inverted registration", func(in *CreateHackathonInput) { in.RegistrationEnd = in.RegistrationStart }, ErrInvalidRegistration},
		{"registration after start", func(in *CreateHackathonInput) { in.RegistrationEnd = in.StartTime.Add(time.Hour) }, ErrRegistrationAfterStart},
		{"inverted event", func(in *CreateHackathonInput) { in.EndTime = in.StartTime }, ErrInvalidHackathonWindow},
		{"phase past end", func(in *CreateHackathonInput) { in.Phases[1].EndTime = in.EndTime.Add(time.Hour) }, ErrInvalidPhase},
		{"unnamed phase", func(in *CreateHackathonInput) { in.Phases[0].Name = "" }, ErrInvalidPhase},
		{"no poster", func(in *CreateHackathonInput) { in.Poster = nil }, ErrPosterRequired},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			in := s.createInput()
			tc.mutate(&in)
			_, err := s.service.CreateHackathon(s.ctx, in)
			s.ErrorIs(err, tc.want)
		})
	}
	s.Empty(s.posters.uploads)
}

func (s *HackathonServiceSuite) TestCreateHackathon_PosterFailures() {
	s.posters.err = errors.New("s3 down")
	_, err := s.service.CreateHackathon(s.ctx, s.createInput())
	s.ErrorIs(err, ErrPosterUploadFailed)

	exists, err := s.f.store.Hackathons.ExistsByTitle(s.ctx, "Spring Hack")
	s.Require().NoError(err)
	s.False(exists)

	noStore := NewHackathonService(HackathonServiceConfig{Store: s.f.store, Now: s.f.clock.Now})
	_, err = noStore.CreateHackathon(s.ctx, s.createInput())
	s.ErrorIs(err, ErrPosterStoreUnavailable)
}

func (s *HackathonServiceSuite) TestListHackathons_Filters() {
	short := s.f.hackathon(s.org, 1, 4)
	short.Title = "Weekend AI Jam"
	short.EndTime = short.StartTime.Add(6 * time.Hour)
	short.Tags = []string{"AI"}
	short.Mode = models.ModeOffline
	s.Require().NoError(s.f.db.Omit(clause.Associations).Save(short).Error)

	long := s.f.hackathon(s.org, 1, 4)
	long.Tags = []string{"blockchain"}
	long.EndTime = long.StartTime.Add(100 * time.Hour)
	s.Require().NoError(s.f.db.Omit(clause.Associations).Save(long).Error)

	page := utils.NewPaginationParams(1, 10)

	items, total, intents, err := s.service.ListHackathons(s.ctx, ListHackathonsInput{Pagination: page}, nil)
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(items, 2)
	s.Empty(intents)
	s.Equal(lifecycle.StatusRegistrationInProgress, items[0].Status)

	items, _, _, err = s.service.ListHackathons(s.ctx, ListHackathonsInput{Tags: []string{"ai"}, Pagination: page}, nil)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(short.ID, items[0].Hackathon.ID)

	items, _, _, err = s.service.ListHackathons(s.ctx, ListHackathonsInput{Duration: "7", Pagination: page}, nil)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(short.ID, items[0].Hackathon.ID)

	items, _, _, err = s.service.ListHackathons(s.ctx, ListHackathonsInput{Duration: "72+", Pagination: page}, nil)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(long.ID, items[0].Hackathon.ID)

	items, _, _, err = s.service.ListHackathons(s.ctx, ListHackathonsInput{Mode: "OFFLINE", Search: "jam", Pagination: page}, nil)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(short.ID, items[0].Hackathon.ID)

	items, _, _, err = s.service.ListHackathons(s.ctx, ListHackathonsInput{Status: string(lifecycle.StatusOngoing), Pagination: page}, nil)
	s.Require().NoError(err)
	s.Empty(items)

	_, _, _, err = s.service.ListHackathons(s.ctx, ListHackathonsInput{Duration: "12"}, nil)
	s.ErrorIs(err, ErrInvalidDurationFilter)
	_, _, _, err = s.service.ListHackathons(s.ctx, ListHackathonsInput{Status: "paused"}, nil)
	s.ErrorIs(err, ErrInvalidStatusFilter)
}

func (s *HackathonServiceSuite) TestListHackathons_Paginates() {
	for i := 0; i < 3; i++ {
		s.f.hackathon(s.org, 1, 4)
	}

	items, total, _, err := s.service.ListHackathons(s.ctx, ListHackathonsInput{Pagination: utils.NewPaginationParams(2, 2)}, nil)
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Len(items, 1)
}

func (s *HackathonServiceSuite) TestListHackathons_MineAndParticipated() {
	other := s.f.organizer("other")
	mine := s.f.hackathon(s.org, 1, 4)
	theirs := s.f.hackathon(other, 1, 4)
	page := utils.NewPaginationParams(1, 10)

	orgCaller := &Caller{UserID: s.org.ID, Role: models.RoleOrganizer}
	items, _, intents, err := s.service.ListHackathons(s.ctx, ListHackathonsInput{Mine: true, Pagination: page}, orgCaller)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(mine.ID, items[0].Hackathon.ID)
	s.Len(intents.Interactions(), 1)

	_, _, _, err = s.service.ListHackathons(s.ctx, ListHackathonsInput{Mine: true}, nil)
	s.ErrorIs(err, ErrLoginRequired)

	dev := s.f.developer("dev")
	devCaller := &Caller{UserID: dev.ID, Role: models.RoleDeveloper}
	_, _, _, err = s.service.ListHackathons(s.ctx, ListHackathonsInput{Mine: true}, devCaller)
	s.ErrorIs(err, ErrOrganizerOnly)

	items, total, intents, err := s.service.ListHackathons(s.ctx, ListHackathonsInput{ShowParticipated: true, Pagination: page}, devCaller)
	s.Require().NoError(err)
	s.NotNil(items)
	s.Empty(items)
	s.Zero(total)
	s.Len(intents.Interactions(), 1)

	team := s.f.team("Dev Team", dev)
	s.f.apply(team, theirs)
	items, _, _, err = s.service.ListHackathons(s.ctx, ListHackathonsInput{ShowParticipated: true, Pagination: page}, devCaller)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(theirs.ID, items[0].Hackathon.ID)
}

func (s *HackathonServiceSuite) TestListHackathons_SearchInteraction() {
	dev := s.f.developer("dev")
	caller := &Caller{UserID: dev.ID, Role: models.RoleDeveloper}

	_, _, intents, err := s.service.ListHackathons(s.ctx, ListHackathonsInput{
		Tags:       []string{"ai"},
		Duration:   "24",
		Search:     "hack",
		Pagination: utils.NewPaginationParams(1, 10),
	}, caller)
	s.Require().NoError(err)

	interactions := intents.Interactions()
	s.Require().Len(interactions, 1)
	got := interactions[0]
	s.Equal(models.InteractionSearch, got.Interaction.Type)
	s.Equal(dev.ID, got.Interaction.UserID)
	s.Nil(got.Interaction.HackathonID)
	s.Zero(got.DedupWindow)
	s.JSONEq(`{"tags":["ai"],"duration":"24","search":"hack"}`, string(got.Interaction.Query))
}

func (s *HackathonServiceSuite) TestGetHackathon_ViewAndTeams() {
	h := s.f.hackathon(s.org, 1, 4)
	dev := s.f.developer("dev")
	mate := s.f.developer("mate")
	team := s.f.team("Viewers", dev, mate)
	s.f.apply(team, h)

	devCaller := &Caller{UserID: dev.ID, Role: models.RoleDeveloper}
	detail, intents, err := s.service.GetHackathon(s.ctx, h.ID, devCaller, false)
	s.Require().NoError(err)
	s.Equal(h.ID, detail.Hackathon.ID)
	s.NotNil(detail.Teams)
	s.Empty(detail.Teams)

	views := intents.Interactions()
	s.Require().Len(views, 1)
	s.Equal(models.InteractionView, views[0].Interaction.Type)
	s.Equal(10*time.Minute, views[0].DedupWindow)

	_, intents, err = s.service.GetHackathon(s.ctx, h.ID, nil, false)
	s.Require().NoError(err)
	s.Empty(intents)

	_, _, err = s.service.GetHackathon(s.ctx, h.ID, devCaller, true)
	s.ErrorIs(err, ErrNotHackathonOrganizer)

	orgCaller := &Caller{UserID: s.org.ID, Role: models.RoleOrganizer}
	detail, intents, err = s.service.GetHackathon(s.ctx, h.ID, orgCaller, true)
	s.Require().NoError(err)
	s.Empty(intents)
	s.Require().Len(detail.Teams, 1)
	s.Equal(team.ID, detail.Teams[0].Application.TeamID)
	s.Len(detail.Teams[0].Members, 2)

	_, _, err = s.service.GetHackathon(s.ctx, 999, nil, false)
	s.ErrorIs(err, ErrHackathonNotFound)
}

func TestCreateHackathon_RollsBackWhenPhasesFail(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	phaseErr := errors.New("phase insert failed")
	mock.ExpectQuery(`SELECT count\(\*\) FROM "hackathons"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "hackathons"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "hackathon_phases"`).
		WillReturnError(phaseErr)
	mock.ExpectRollback()

	posters := &fakePosterStore{}
	service := NewHackathonService(HackathonServiceConfig{
		Store:   repository.NewStore(db),
		Posters: posters,
		Now:     func() time.Time { return baseTime },
	})

	_, err = service.CreateHackathon(context.Background(), CreateHackathonInput{
		OrganizerID:       7,
		Title:             "Rollback Hack",
		RegistrationStart: baseTime.Add(time.Hour),
		RegistrationEnd:   baseTime.Add(2 * time.Hour),
		StartTime:         baseTime.Add(3 * time.Hour),
		EndTime:           baseTime.Add(4 * time.Hour),
		MinTeamSize:       1,
		MaxTeamSize:       3,
		Mode:              models.ModeOnline,
		Phases: []PhaseInput{
			{Name: "Only", StartTime: baseTime.Add(3 * time.Hour), EndTime: baseTime.Add(4 * time.Hour)},
		},
		Poster: posterUpload(),
	})
	require.ErrorIs(t, err, phaseErr)
	assert.Len(t, posters.uploads, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDurationBucket(t *testing.T) {
	cases := []struct {
		hours float64
		want  string
	}{
		{1, "7"},
		{7, "7"},
		{7.5, "24"},
		{24, "24"},
		{48, "48"},
		{72, "72"},
		{72.01, "72+"},
		{200, "72+"},
	}
	for _, tc := range cases {
		d := time.Duration(tc.hours * float64(time.Hour))
		assert.Equal(t, tc.want, DurationBucket(d), "hours=%v", tc.hours)
		assert.True(t, matchesDuration(tc.want, d), "hours=%v", tc.hours)
	}
}
