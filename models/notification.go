package models

import "time"

// NotificationCategory classifies a notification for preference filtering.
type NotificationCategory string

const (
	CategoryInfo        NotificationCategory = "info"
	CategorySuccess     NotificationCategory = "success"
	CategoryWarning     NotificationCategory = "warning"
	CategoryError       NotificationCategory = "error"
	CategoryCourse      NotificationCategory = "course"
	CategoryCertificate NotificationCategory = "certificate"
)

// PreferenceCategory resolves a notification category to the preference
// bucket it is toggled under (course/certificate belong to academy,
// everything else is a system notification).
func (c NotificationCategory) PreferenceCategory() string {
	switch c {
	case CategoryCourse, CategoryCertificate:
		return "academy"
	default:
		return "system"
	}
}

type Notification struct {
	ID        string               `bson:"id" json:"id"`
	UserID    string               `bson:"user_id" json:"userId"`
	Title     string               `bson:"title" json:"title"`
	Message   string               `bson:"message" json:"message"`
	Category  NotificationCategory `bson:"category" json:"category"`
	Read      bool                 `bson:"read" json:"read"`
	Link      string               `bson:"link,omitempty" json:"link,omitempty"`
	CreatedAt time.Time            `bson:"created_at" json:"createdAt"`
}

// ChannelHints tells the dispatcher which optional channels the caller
// wants attempted. The in-app channel is always attempted.
type ChannelHints struct {
	Push     bool `json:"push"`
	Email    bool `json:"email"`
	WhatsApp bool `json:"whatsapp"`
}
