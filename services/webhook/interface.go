package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	webhookRepo "flowdesk/database/repository/webhook"
	"flowdesk/models"
)

// deliveryTimeout bounds every outbound webhook HTTP call.
const deliveryTimeout = 10 * time.Second

// CreateInput carries the caller-settable subscription fields.
type CreateInput struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

// UpdateInput carries the mutable subscription fields. The secret is
// immutable after creation.
type UpdateInput struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Active bool     `json:"active"`
}

// WebhookService owns subscription management and signed delivery.
type WebhookService interface {
	// Create stores a new subscription and returns it together with the
	// generated secret. The secret is never returned by any later read.
	Create(ctx context.Context, userID string, in CreateInput) (*models.WebhookSubscription, string, error)
	List(ctx context.Context, userID string) ([]models.WebhookSubscription, error)
	Update(ctx context.Context, userID, id string, in UpdateInput) (*models.WebhookSubscription, error)
	Delete(ctx context.Context, userID, id string) error

	// Test fires a synthetic event at one subscription and reports
	// whether the endpoint accepted it.
	Test(ctx context.Context, userID, id string) (bool, error)

	// Trigger signs and delivers one event to one subscription. Inactive
	// subscriptions are skipped silently. The outcome is recorded on the
	// subscription's counters; no automatic retry.
	Trigger(ctx context.Context, sub *models.WebhookSubscription, event string, data any) bool

	// TriggerForEvent fans the event out to every matching active
	// subscription of the user, sequentially and independently.
	TriggerForEvent(ctx context.Context, userID, event string, data any)
}

// DefaultWebhookService is the production implementation.
type DefaultWebhookService struct {
	Repo   webhookRepo.WebhookRepository
	Client *http.Client
}

func NewDefaultWebhookService(repo webhookRepo.WebhookRepository) (*DefaultWebhookService, error) {
	if repo == nil {
		return nil, fmt.Errorf("webhook service initialization error: repository is nil")
	}
	return &DefaultWebhookService{
		Repo:   repo,
		Client: &http.Client{Timeout: deliveryTimeout},
	}, nil
}
