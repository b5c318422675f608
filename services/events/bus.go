// File: services/events/bus.go
package events

import (
	"context"

	"flowdesk/models"
	"flowdesk/services/alert"
	"flowdesk/services/webhook"
	"flowdesk/utils"

	"go.uber.org/zap"
)

// Bus is the entry point business modules call when their data changes.
// One Emit fans out to the user's webhook subscriptions and re-evaluates
// their alert rules against the fresh snapshot.
type Bus struct {
	Webhooks webhook.WebhookService
	Alerts   alert.AlertService
}

func NewBus(webhooks webhook.WebhookService, alerts alert.AlertService) *Bus {
	return &Bus{Webhooks: webhooks, Alerts: alerts}
}

// Emit publishes a business event. Failures in either consumer are
// logged; the emitting module never sees them.
func (b *Bus) Emit(ctx context.Context, userID string, module models.BusinessModule, event string, snapshot map[string]any) {
	utils.GetLogger().Debug("events: emit",
		zap.String("userId", userID),
		zap.String("module", string(module)),
		zap.String("event", event))

	if b.Webhooks != nil {
		b.Webhooks.TriggerForEvent(ctx, userID, event, snapshot)
	}
	if b.Alerts != nil {
		b.Alerts.EvaluateModule(ctx, userID, module, snapshot)
	}
}
