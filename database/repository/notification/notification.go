package notificationRepo

import "flowdesk/models"

// NotificationRepository defines notification data access.
type NotificationRepository interface {
	// Create inserts a new notification record.
	Create(n *models.Notification) error
	// ListByUser returns the user's notifications, newest first,
	// optionally filtered to unread only.
	ListByUser(userID string, unreadOnly bool, limit int64) ([]models.Notification, error)
	// MarkRead flips a single notification to read.
	MarkRead(userID, id string) error
	// MarkAllRead flips every unread notification of the user to read.
	MarkAllRead(userID string) (int64, error)
	// Delete removes a notification owned by the user.
	Delete(userID, id string) error
	// CountUnread returns the user's unread notification count.
	CountUnread(userID string) (int64, error)
}
