package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestProfileRepository_FindOrCreateDeveloperKeepsExistingRow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "alice", models.RoleDeveloper)

	created, err := repo.FindOrCreateDeveloper(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, created.UserID)
	assert.Empty(t, created.Notifications)

	created.Notifications = []models.Notification{{ID: "n-1", Type: models.NotificationInvitationSent}}
	created.RecordParticipation(4, models.PositionWinner)
	require.NoError(t, repo.SaveDeveloper(ctx, created))

	again, err := repo.FindOrCreateDeveloperForUpdate(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, again.Notifications, 1)
	assert.Equal(t, "n-1", again.Notifications[0].ID)
	require.Len(t, again.Hackathons, 1)

	var rows int64
	require.NoError(t, db.Model(&models.DeveloperProfile{}).Where("user_id = ?", user.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestProfileRepository_FindOrCreateDeveloperInsertsBeforeLockedRead(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	// A concurrent first writer has already inserted the row: the insert
	// affects nothing and the locked read returns that row.
	mock.ExpectExec(`INSERT INTO "developer_profiles" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "developer_profiles" WHERE user_id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "notifications", "hackathons"}).
			AddRow(7, `[{"id":"n-1","type":"invitation-sent"}]`, `[]`))

	profile, err := NewProfileRepository(db).FindOrCreateDeveloperForUpdate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), profile.UserID)
	require.Len(t, profile.Notifications, 1)
	assert.Equal(t, "n-1", profile.Notifications[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_IncrementHackathonsOrganized(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	org := testutil.CreateUser(t, db, "org", models.RoleOrganizer)

	require.NoError(t, repo.IncrementHackathonsOrganized(ctx, org.ID))
	require.NoError(t, repo.IncrementHackathonsOrganized(ctx, org.ID))

	var profile models.OrganizerProfile
	require.NoError(t, db.First(&profile, "user_id = ?", org.ID).Error)
	assert.Equal(t, 2, profile.HackathonsOrganized)
}
