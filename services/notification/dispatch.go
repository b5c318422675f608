// File: services/notification/dispatch.go
package notification

import (
	"context"
	"errors"
	"time"

	"flowdesk/models"
	"flowdesk/services/tasks"
	"flowdesk/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatch persists the notification unconditionally, then attempts the
// channels the preferences and hints allow. All channel failures are
// caught and logged; nothing propagates to the caller.
func (s *DefaultNotificationService) Dispatch(ctx context.Context, in models.NotificationJobPayload) *models.Notification {
	logger := utils.GetLogger()

	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Title:     in.Title,
		Message:   in.Message,
		Category:  in.Category,
		Link:      in.Link,
		CreatedAt: time.Now(),
	}
	if err := s.Repo.Create(n); err != nil {
		logger.Error("dispatch: failed to persist notification",
			zap.String("userId", in.UserID), zap.Error(err))
		return nil
	}
	utils.InvalidateUnreadCount(ctx, in.UserID)

	user, err := s.Users.GetByID(in.UserID)
	if err != nil {
		// The row is already persisted; without a user record none of the
		// addressed channels can be resolved.
		logger.Warn("dispatch: user lookup failed, channels skipped",
			zap.String("userId", in.UserID), zap.Error(err))
		user = &models.User{ID: in.UserID}
	}

	prefs := user.Preferences
	if prefs == nil {
		prefs = models.DefaultNotificationPreferences()
	}
	if !prefs.Enabled {
		// Master toggle off: the row above is the audit trail, every
		// channel send is suppressed.
		return n
	}
	if !prefs.CategoryEnabled(in.Category.PreferenceCategory()) {
		return n
	}

	quiet := quietHoursActive(prefs.QuietHours, time.Now())

	s.sendInApp(ctx, user, prefs, n)
	s.sendPush(ctx, user, prefs, in, quiet)
	s.sendEmail(ctx, user, prefs, in)
	s.sendWhatsApp(ctx, user, in)

	return n
}

// Send routes through the durable queue, falling back to an inline
// dispatch with identical semantics when the broker is unavailable.
func (s *DefaultNotificationService) Send(ctx context.Context, in models.NotificationJobPayload) {
	if s.Queue != nil && s.Queue.Available() {
		task, opts, terr := tasks.NewNotificationTask(in)
		if terr == nil {
			qerr := s.Queue.Enqueue(ctx, task, opts...)
			if qerr == nil {
				return
			}
			utils.GetLogger().Warn("send: enqueue failed, dispatching inline",
				zap.String("userId", in.UserID), zap.Error(qerr))
		}
	}
	s.Dispatch(ctx, in)
}

// sendInApp pushes the notification and an updated unread count to every
// live connection. Real-time only, no retry: quiet hours do not apply,
// and with no live connection the persisted row is the delivery record.
func (s *DefaultNotificationService) sendInApp(ctx context.Context, user *models.User, prefs *models.NotificationPreferences, n *models.Notification) {
	if s.Realtime == nil || !prefs.ChannelEnabled("in_app") {
		return
	}
	s.Realtime.PublishNotification(user.ID, n)

	count, err := s.UnreadCount(ctx, user.ID)
	if err != nil {
		utils.GetLogger().Warn("dispatch: unread count unavailable",
			zap.String("userId", user.ID), zap.Error(err))
		return
	}
	s.Realtime.PublishUnreadCount(user.ID, count)
}

func (s *DefaultNotificationService) sendPush(ctx context.Context, user *models.User, prefs *models.NotificationPreferences, in models.NotificationJobPayload, quiet bool) {
	if !in.Hints.Push || s.Push == nil || !prefs.ChannelEnabled("push") || quiet || user.FCMToken == "" {
		return
	}

	data := map[string]string{
		"category": string(in.Category),
	}
	if in.Link != "" {
		data["link"] = in.Link
	}

	if err := s.Push.Send(ctx, user.FCMToken, in.Title, in.Message, data); err != nil {
		logger := utils.GetLogger()
		if errors.Is(err, ErrDeadToken) {
			// Invalid or unregistered token: clear it so future dispatches
			// do not retry a dead device.
			if clearErr := s.Users.ClearFCMToken(user.ID); clearErr != nil {
				logger.Error("dispatch: failed to clear dead push token",
					zap.String("userId", user.ID), zap.Error(clearErr))
			} else {
				logger.Info("dispatch: cleared dead push token",
					zap.String("userId", user.ID))
			}
			return
		}
		logger.Warn("dispatch: push delivery failed",
			zap.String("userId", user.ID), zap.Error(err))
	}
}

func (s *DefaultNotificationService) sendEmail(ctx context.Context, user *models.User, prefs *models.NotificationPreferences, in models.NotificationJobPayload) {
	if !in.Hints.Email || !prefs.ChannelEnabled("email") || user.Email == "" {
		return
	}

	logger := utils.GetLogger()
	body, err := renderNotificationEmail(user.Name, in)
	if err != nil {
		logger.Warn("dispatch: failed to render email",
			zap.String("userId", user.ID), zap.Error(err))
		return
	}
	payload := models.EmailJobPayload{To: user.Email, Subject: in.Title, Body: body}

	if s.Queue != nil && s.Queue.Available() {
		task, opts, terr := tasks.NewEmailTask(payload)
		if terr == nil {
			if qerr := s.Queue.Enqueue(ctx, task, opts...); qerr == nil {
				return
			} else {
				logger.Warn("dispatch: email enqueue failed, sending inline",
					zap.String("userId", user.ID), zap.Error(qerr))
			}
		}
	}

	if s.Mailer == nil {
		return
	}
	if err := s.Mailer.Send(ctx, payload.To, payload.Subject, payload.Body); err != nil {
		logger.Warn("dispatch: email delivery failed",
			zap.String("userId", user.ID), zap.Error(err))
	}
}

func (s *DefaultNotificationService) sendWhatsApp(ctx context.Context, user *models.User, in models.NotificationJobPayload) {
	if !in.Hints.WhatsApp || s.Messenger == nil || user.PhoneNumber == "" || !s.Messenger.Connected() {
		return
	}
	text := in.Title + "\n" + in.Message
	if err := s.Messenger.SendText(ctx, user.PhoneNumber, text); err != nil {
		utils.GetLogger().Warn("dispatch: whatsapp delivery failed",
			zap.String("userId", user.ID), zap.Error(err))
	}
}
