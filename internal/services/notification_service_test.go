package services

import (
	"context"
	"testing"
	"time"

	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_ListAndDelete(t *testing.T) {
	f := newFixtures(t)
	service := NewNotificationService(f.store)
	ctx := context.Background()
	dev := f.developer("dev")

	empty, err := service.List(ctx, dev.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	profile := f.profile(dev.ID)
	profile.Notifications = []models.Notification{
		{ID: "old", Type: models.NotificationInvitationSent, Message: "old", CreatedAt: baseTime},
		{ID: "new", Type: models.NotificationInvitationAccepted, Message: "new", CreatedAt: baseTime.Add(time.Hour)},
	}
	require.NoError(t, f.store.Profiles.SaveDeveloper(ctx, profile))

	listed, err := service.List(ctx, dev.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "new", listed[0].ID)
	assert.Equal(t, "old", listed[1].ID)

	require.NoError(t, service.Delete(ctx, dev.ID, "old"))
	assert.ErrorIs(t, service.Delete(ctx, dev.ID, "old"), ErrNotificationNotFound)

	listed, err = service.List(ctx, dev.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "new", listed[0].ID)
}
