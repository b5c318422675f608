package models

import "time"

// QuietHours is a daily window during which push delivery is suppressed.
// Start and End are wall-clock "HH:MM" strings; the window may wrap
// midnight (Start > End).
type QuietHours struct {
	Enabled bool   `bson:"enabled" json:"enabled"`
	Start   string `bson:"start" json:"start"`
	End     string `bson:"end" json:"end"`
}

// NotificationPreferences is owned one-to-one by a user. A missing record
// is treated as everything enabled with no quiet hours.
type NotificationPreferences struct {
	Enabled    bool            `bson:"enabled" json:"enabled"`
	Channels   map[string]bool `bson:"channels" json:"channels"`     // in_app, push, email
	Categories map[string]bool `bson:"categories" json:"categories"` // system, academy, ...
	QuietHours QuietHours      `bson:"quiet_hours" json:"quietHours"`
}

// DefaultNotificationPreferences returns the all-enabled defaults applied
// when a user has no stored preference record.
func DefaultNotificationPreferences() *NotificationPreferences {
	return &NotificationPreferences{
		Enabled:    true,
		Channels:   map[string]bool{"in_app": true, "push": true, "email": true},
		Categories: map[string]bool{"system": true, "academy": true},
	}
}

// ChannelEnabled reports whether a delivery channel is switched on.
// Channels absent from the map default to enabled.
func (p *NotificationPreferences) ChannelEnabled(channel string) bool {
	if p.Channels == nil {
		return true
	}
	enabled, ok := p.Channels[channel]
	if !ok {
		return true
	}
	return enabled
}

// CategoryEnabled reports whether a preference category is switched on.
// Categories absent from the map default to enabled.
func (p *NotificationPreferences) CategoryEnabled(category string) bool {
	if p.Categories == nil {
		return true
	}
	enabled, ok := p.Categories[category]
	if !ok {
		return true
	}
	return enabled
}

// User carries the delivery-relevant slice of the account record: contact
// addresses, the registered push device token, and notification
// preferences. The rest of the account entity lives with the (external)
// identity service.
type User struct {
	ID          string                   `bson:"id" json:"id"`
	Name        string                   `bson:"name" json:"name"`
	Email       string                   `bson:"email" json:"email"`
	PhoneNumber string                   `bson:"phone_number" json:"phoneNumber"`
	FCMToken    string                   `bson:"fcm_token,omitempty" json:"-"`
	Preferences *NotificationPreferences `bson:"notification_preferences,omitempty" json:"notificationPreferences,omitempty"`
	CreatedAt   time.Time                `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time                `bson:"updated_at" json:"updatedAt"`
}
