package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devzoku/devzoku-api/internal/dto"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationHandler_ListAndDelete(t *testing.T) {
	env := setupTestEnv(t)
	dev := testutil.CreateUser(t, env.db, "dev", models.RoleDeveloper)

	w := env.do(t, http.MethodGet, "/notifications", nil, dev)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]dto.NotificationDTO](t, w).Data)

	ctx := context.Background()
	profile, err := env.store.Profiles.FindOrCreateDeveloper(ctx, dev.ID)
	require.NoError(t, err)
	profile.Notifications = []models.Notification{
		{ID: "n1", Type: models.NotificationInvitationSent, Message: "first", CreatedAt: testNow},
		{ID: "n2", Type: models.NotificationInvitationAccepted, Message: "second", CreatedAt: testNow.Add(1)},
	}
	require.NoError(t, env.store.Profiles.SaveDeveloper(ctx, profile))

	w = env.do(t, http.MethodGet, "/notifications", nil, dev)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]dto.NotificationDTO](t, w).Data
	require.Len(t, listed, 2)
	assert.Equal(t, "n2", listed[0].ID)

	w = env.do(t, http.MethodDelete, "/notifications/n1", nil, dev)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/notifications/n1", nil, dev)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"database": "ok"}, decode[map[string]any](t, w).Data)

	w = httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	Health(failingPinger{})(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, w).Code)
}

func TestUnknownRoute(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
