package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/repository"
)

// NotificationService reads and dismisses a developer's stored notifications
type NotificationService struct {
	store *repository.Store
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(store *repository.Store) *NotificationService {
	return &NotificationService{store: store}
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint64) ([]models.Notification, error) {
	profile, err := s.store.Profiles.FindOrCreateDeveloper(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	notifications := slices.Clone([]models.Notification(profile.Notifications))
	slices.SortStableFunc(notifications, func(a, b models.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// Delete removes one notification by ID
func (s *NotificationService) Delete(ctx context.Context, userID uint64, notificationID string) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		profile, err := tx.Profiles.FindOrCreateDeveloperForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if !profile.RemoveNotification(notificationID) {
			return ErrNotificationNotFound
		}
		if err := tx.Profiles.SaveDeveloper(ctx, profile); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		return nil
	})
}
