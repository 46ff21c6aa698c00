package dto

import (
	"time"

	"github.com/devzoku/devzoku-api/internal/models"
)

// NotificationDTO represents a stored notification
type NotificationDTO struct {
	ID        string                  `json:"id"`
	Type      models.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	CreatedAt time.Time               `json:"createdAt"`
	TeamID    *uint64                 `json:"teamId,omitempty"`
}

// ToNotificationDTOs converts notifications to DTOs
func ToNotificationDTOs(notifications []models.Notification) []NotificationDTO {
	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = NotificationDTO{
			ID:        n.ID,
			Type:      n.Type,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
			TeamID:    n.TeamID,
		}
	}
	return dtos
}
