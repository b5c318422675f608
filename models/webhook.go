package models

import "time"

// WebhookSubscription is a tenant-owned outbound HTTP endpoint registered
// for a set of business events. The secret signs every delivery; it is
// generated once at creation and never returned by reads.
type WebhookSubscription struct {
	ID            string     `bson:"id" json:"id"`
	UserID        string     `bson:"user_id" json:"userId"`
	Name          string     `bson:"name" json:"name"`
	URL           string     `bson:"url" json:"url"`
	Secret        string     `bson:"secret" json:"-"`
	Events        []string   `bson:"events" json:"events"`
	Active        bool       `bson:"active" json:"active"`
	LastTriggered *time.Time `bson:"last_triggered,omitempty" json:"lastTriggered,omitempty"`
	SuccessCount  int64      `bson:"success_count" json:"successCount"`
	FailureCount  int64      `bson:"failure_count" json:"failureCount"`
	CreatedAt     time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updatedAt"`
}

// SubscribedTo reports whether the subscription listens for the event.
func (w *WebhookSubscription) SubscribedTo(event string) bool {
	for _, e := range w.Events {
		if e == event {
			return true
		}
	}
	return false
}

// WebhookEvent is the canonical delivery body POSTed to subscription URLs.
// Field order is fixed so the signed bytes are stable.
type WebhookEvent struct {
	Event     string `json:"event"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}
