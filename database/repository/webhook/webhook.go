package webhookRepo

import (
	"time"

	"flowdesk/models"
)

// WebhookRepository defines webhook subscription data access.
type WebhookRepository interface {
	// Create inserts a new subscription.
	Create(sub *models.WebhookSubscription) error
	// GetByID retrieves a subscription owned by the user.
	GetByID(userID, id string) (*models.WebhookSubscription, error)
	// ListByUser returns all subscriptions of the user.
	ListByUser(userID string) ([]models.WebhookSubscription, error)
	// ListActiveForEvent returns the user's active subscriptions listening
	// for the given event name.
	ListActiveForEvent(userID, event string) ([]models.WebhookSubscription, error)
	// Update modifies name, url, events and active flag; the secret is immutable.
	Update(sub *models.WebhookSubscription) error
	// Delete removes a subscription owned by the user.
	Delete(userID, id string) error
	// RecordDelivery updates the success/failure counters and last-attempt time.
	RecordDelivery(id string, success bool, at time.Time) error
}
