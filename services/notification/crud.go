package notification

import (
	"context"
	"fmt"

	"flowdesk/models"
	"flowdesk/utils"
)

// List returns the user's notification history, newest first.
func (s *DefaultNotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]models.Notification, error) {
	return s.Repo.ListByUser(userID, unreadOnly, limit)
}

// MarkRead flips one notification to read and pushes the updated unread
// count to live connections.
func (s *DefaultNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.Repo.MarkRead(userID, id); err != nil {
		return err
	}
	s.refreshUnreadCount(ctx, userID)
	return nil
}

// MarkAllRead flips every unread notification of the user to read.
func (s *DefaultNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	modified, err := s.Repo.MarkAllRead(userID)
	if err != nil {
		return 0, err
	}
	s.refreshUnreadCount(ctx, userID)
	return modified, nil
}

// Delete removes a notification owned by the user.
func (s *DefaultNotificationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.Repo.Delete(userID, id); err != nil {
		return err
	}
	s.refreshUnreadCount(ctx, userID)
	return nil
}

// UnreadCount returns the user's unread notification count, served from
// the cache when warm.
func (s *DefaultNotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if count, ok := utils.GetCachedUnreadCount(ctx, userID); ok {
		return count, nil
	}
	count, err := s.Repo.CountUnread(userID)
	if err != nil {
		return 0, err
	}
	utils.SetCachedUnreadCount(ctx, userID, count)
	return count, nil
}

// refreshUnreadCount invalidates the cached counter and pushes the fresh
// value to the user's live connections.
func (s *DefaultNotificationService) refreshUnreadCount(ctx context.Context, userID string) {
	utils.InvalidateUnreadCount(ctx, userID)
	if s.Realtime == nil {
		return
	}
	count, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return
	}
	s.Realtime.PublishUnreadCount(userID, count)
}

// GetPreferences returns the user's stored preferences, or the
// all-enabled defaults when none exist.
func (s *DefaultNotificationService) GetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	user, err := s.Users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Preferences == nil {
		return models.DefaultNotificationPreferences(), nil
	}
	return user.Preferences, nil
}

// UpdatePreferences replaces the user's notification preferences.
func (s *DefaultNotificationService) UpdatePreferences(ctx context.Context, userID string, prefs *models.NotificationPreferences) error {
	if prefs == nil {
		return fmt.Errorf("preferences payload is nil")
	}
	if prefs.QuietHours.Enabled {
		if _, err := parseClock(prefs.QuietHours.Start); err != nil {
			return err
		}
		if _, err := parseClock(prefs.QuietHours.End); err != nil {
			return err
		}
	}
	return s.Users.UpdatePreferences(userID, prefs)
}

// RegisterPushToken stores the device token reported by a client.
func (s *DefaultNotificationService) RegisterPushToken(ctx context.Context, userID, token string) error {
	if token == "" {
		return fmt.Errorf("push token is empty")
	}
	return s.Users.SetFCMToken(userID, token)
}

// RemovePushToken clears the stored device token, e.g. on sign-out.
func (s *DefaultNotificationService) RemovePushToken(ctx context.Context, userID string) error {
	return s.Users.ClearFCMToken(userID)
}
