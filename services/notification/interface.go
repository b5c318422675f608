package notification

import (
	"context"
	"fmt"

	notificationRepo "flowdesk/database/repository/notification"
	userRepo "flowdesk/database/repository/user"
	"flowdesk/models"

	"github.com/hibiken/asynq"
)

// NotificationService is the central fan-out for business events: it
// persists every notification and attempts delivery across the in-app,
// push, email and third-party messaging channels according to the owner's
// preferences.
type NotificationService interface {
	// Dispatch runs the full channel fan-out inline. It never returns an
	// error: channel failures are logged and swallowed, the persisted row
	// is the system of record. The returned notification is nil only if
	// persistence itself failed.
	Dispatch(ctx context.Context, in models.NotificationJobPayload) *models.Notification

	// Send routes the dispatch through the durable queue when the broker
	// is available and falls back to Dispatch inline otherwise.
	Send(ctx context.Context, in models.NotificationJobPayload)

	// Notification history surface.
	List(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)

	// Preference and push-device management.
	GetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error)
	UpdatePreferences(ctx context.Context, userID string, prefs *models.NotificationPreferences) error
	RegisterPushToken(ctx context.Context, userID, token string) error
	RemovePushToken(ctx context.Context, userID string) error
}

// RealtimePublisher pushes events to the user's live connections.
// Implementations must not block waiting for client acknowledgment.
type RealtimePublisher interface {
	PublishNotification(userID string, n *models.Notification)
	PublishUnreadCount(userID string, count int64)
}

// JobQueue is the durable queue surface the dispatcher produces to.
type JobQueue interface {
	Available() bool
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error
}

// EmailSender delivers a rendered notification email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Repo      notificationRepo.NotificationRepository
	Users     userRepo.UserRepository
	Realtime  RealtimePublisher
	Push      PushSender
	Mailer    EmailSender
	Messenger Messenger
	Queue     JobQueue
}

// NewDefaultNotificationService wires the dispatcher. Realtime, Push,
// Mailer, Messenger and Queue may be nil; the corresponding channel is
// then skipped.
func NewDefaultNotificationService(
	repo notificationRepo.NotificationRepository,
	users userRepo.UserRepository,
) (*DefaultNotificationService, error) {
	if repo == nil || users == nil {
		return nil, fmt.Errorf("notification service initialization error: repository is nil")
	}
	return &DefaultNotificationService{
		Repo:  repo,
		Users: users,
	}, nil
}
