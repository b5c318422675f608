// File: services/notification/push.go
package notification

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// ErrDeadToken marks a push delivery rejected because the device token is
// invalid or unregistered. The dispatcher reacts by clearing the stored
// token.
var ErrDeadToken = errors.New("push token invalid or unregistered")

// PushSender delivers a push notification to a single device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// FCMPushSender is the production PushSender backed by Firebase Cloud
// Messaging.
type FCMPushSender struct {
	client *messaging.Client
}

func NewFCMPushSender(client *messaging.Client) (*FCMPushSender, error) {
	if client == nil {
		return nil, fmt.Errorf("push sender initialization error: messaging client is nil")
	}
	return &FCMPushSender{client: client}, nil
}

func (p *FCMPushSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := p.client.Send(ctx, msg); err != nil {
		if messaging.IsRegistrationTokenNotRegistered(err) {
			return fmt.Errorf("fcm rejected token: %w", ErrDeadToken)
		}
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}
