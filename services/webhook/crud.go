package webhook

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"

	"flowdesk/models"

	"github.com/google/uuid"
)

// generateSecret produces the signing secret issued once at creation.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate webhook secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func validateTarget(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid webhook url %q", raw)
	}
	return nil
}

// Create stores a new subscription. The returned secret is shown to the
// caller exactly once; reads never include it again.
func (s *DefaultWebhookService) Create(ctx context.Context, userID string, in CreateInput) (*models.WebhookSubscription, string, error) {
	if in.Name == "" {
		return nil, "", fmt.Errorf("webhook name is required")
	}
	if err := validateTarget(in.URL); err != nil {
		return nil, "", err
	}
	if len(in.Events) == 0 {
		return nil, "", fmt.Errorf("at least one subscribed event is required")
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, "", err
	}

	sub := &models.WebhookSubscription{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   in.Name,
		URL:    in.URL,
		Secret: secret,
		Events: in.Events,
		Active: true,
	}
	if err := s.Repo.Create(sub); err != nil {
		return nil, "", err
	}
	return sub, secret, nil
}

// List returns the user's subscriptions. Secrets are excluded by the
// model's JSON encoding.
func (s *DefaultWebhookService) List(ctx context.Context, userID string) ([]models.WebhookSubscription, error) {
	return s.Repo.ListByUser(userID)
}

// Update modifies the mutable fields of a subscription.
func (s *DefaultWebhookService) Update(ctx context.Context, userID, id string, in UpdateInput) (*models.WebhookSubscription, error) {
	if err := validateTarget(in.URL); err != nil {
		return nil, err
	}
	sub, err := s.Repo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	sub.Name = in.Name
	sub.URL = in.URL
	sub.Events = in.Events
	sub.Active = in.Active
	if err := s.Repo.Update(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Delete removes a subscription owned by the user.
func (s *DefaultWebhookService) Delete(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(userID, id)
}

// Test fires a synthetic event at the subscription.
func (s *DefaultWebhookService) Test(ctx context.Context, userID, id string) (bool, error) {
	sub, err := s.Repo.GetByID(userID, id)
	if err != nil {
		return false, err
	}
	data := map[string]string{"message": "flowdesk webhook test delivery"}
	return s.Trigger(ctx, sub, "webhook.test", data), nil
}
