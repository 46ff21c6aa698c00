package handlers

import (
	"net/http"

	"github.com/devzoku/devzoku-api/internal/dto"
	apierrors "github.com/devzoku/devzoku-api/internal/errors"
	"github.com/devzoku/devzoku-api/internal/services"
	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the caller's stored notifications
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications returns the caller's notifications, newest first
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	notifications, err := h.notifications.List(c.Request.Context(), caller.UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, dto.ToNotificationDTOs(notifications), "Notifications fetched successfully")
}

// DeleteNotification removes one notification
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), caller.UserID, c.Param("id")); err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "Notification deleted successfully")
}
