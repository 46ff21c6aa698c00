package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/repository"
	"github.com/devzoku/devzoku-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixtures struct {
	t     *testing.T
	db    *gorm.DB
	store *repository.Store
	clock *testutil.Clock
	seq   int
}

func newFixtures(t *testing.T) *fixtures {
	t.Helper()
	db := testutil.NewDB(t)
	return &fixtures{
		t:     t,
		db:    db,
		store: repository.NewStore(db),
		clock: testutil.NewClock(baseTime),
	}
}

func (f *fixtures) developer(name string) *models.User {
	return testutil.CreateUser(f.t, f.db, name, models.RoleDeveloper)
}

func (f *fixtures) organizer(name string) *models.User {
	return testutil.CreateUser(f.t, f.db, name, models.RoleOrganizer)
}

// team inserts a team captained by the first user, with members joined one
// minute apart in the given order.
func (f *fixtures) team(name string, users ...*models.User) *models.Team {
	f.t.Helper()
	require.NotEmpty(f.t, users)

	team := &models.Team{
		Name:                    name,
		TeamSize:                10,
		IsAcceptingInvites:      true,
		CaptainID:               users[0].ID,
		CreatedBy:               users[0].ID,
		PendingInvitesFromUsers: []uint64{},
	}
	require.NoError(f.t, f.store.Teams.Create(context.Background(), team))
	for i, u := range users {
		require.NoError(f.t, f.store.Teams.AddMember(context.Background(), &models.TeamMember{
			TeamID:   team.ID,
			UserID:   u.ID,
			JoinedAt: baseTime.Add(time.Duration(i) * time.Minute),
		}))
	}
	return team
}

// hackathon inserts a hackathon whose registration is open at baseTime:
// registration [base-1d, base+1d), event [base+2d, base+4d).
func (f *fixtures) hackathon(organizer *models.User, minSize, maxSize int) *models.Hackathon {
	f.t.Helper()
	f.seq++
	h := &models.Hackathon{
		Title:             fmt.Sprintf("Hackathon %d", f.seq),
		RegistrationStart: baseTime.Add(-24 * time.Hour),
		RegistrationEnd:   baseTime.Add(24 * time.Hour),
		StartTime:         baseTime.Add(48 * time.Hour),
		EndTime:           baseTime.Add(96 * time.Hour),
		MinTeamSize:       minSize,
		MaxTeamSize:       maxSize,
		Mode:              models.ModeOnline,
		Tags:              []string{"ai", "web"},
		Poster:            "https://posters.example.com/p.png",
		CreatedBy:         organizer.ID,
	}
	require.NoError(f.t, f.store.Hackathons.Create(context.Background(), h))
	return h
}

func (f *fixtures) apply(team *models.Team, h *models.Hackathon) {
	f.t.Helper()
	require.NoError(f.t, f.store.Applications.Create(context.Background(), &models.TeamHackathon{
		TeamID:      team.ID,
		HackathonID: h.ID,
		SubmittedAt: f.clock.Now(),
	}))
}

func (f *fixtures) profile(userID uint64) *models.DeveloperProfile {
	f.t.Helper()
	p, err := f.store.Profiles.FindOrCreateDeveloper(context.Background(), userID)
	require.NoError(f.t, err)
	return p
}

type fakePosterStore struct {
	mu      sync.Mutex
	err     error
	uploads []string
}

func (s *fakePosterStore) Upload(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	s.uploads = append(s.uploads, filename)
	return "https://posters.example.com/" + filename, nil
}

func posterUpload() *PosterUpload {
	return &PosterUpload{
		Filename:    "poster.png",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("png!"),
	}
}
