package userRepo

import "flowdesk/models"

// UserRepository defines the delivery-relevant user data access.
type UserRepository interface {
	// GetByID retrieves a user by their unique ID.
	GetByID(id string) (*models.User, error)
	// Create inserts a new user record.
	Create(user *models.User) error
	// Update modifies an existing user record.
	Update(user *models.User) error
	// UpdatePreferences replaces the user's notification preferences.
	UpdatePreferences(id string, prefs *models.NotificationPreferences) error
	// SetFCMToken stores the push device token registered by a client.
	SetFCMToken(id, token string) error
	// ClearFCMToken removes a dead push token so future dispatches skip it.
	ClearFCMToken(id string) error
}
