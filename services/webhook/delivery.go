// File: services/webhook/delivery.go
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"flowdesk/models"
	"flowdesk/utils"

	"go.uber.org/zap"
)

// Delivery headers carried on every webhook POST. Receivers verify the
// signature with the secret issued at creation.
const (
	HeaderEvent     = "X-Flowdesk-Event"
	HeaderSignature = "X-Flowdesk-Signature"
)

// signPayload computes the hex HMAC-SHA256 of the canonical body.
func signPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Trigger signs and delivers one event to one subscription. Any non-2xx
// response, network error or timeout counts as a failure; either outcome
// updates the bookkeeping. There is no automatic retry.
func (s *DefaultWebhookService) Trigger(ctx context.Context, sub *models.WebhookSubscription, event string, data any) bool {
	if !sub.Active {
		return false
	}

	logger := utils.GetLogger()

	// Struct marshalling keeps the signed bytes stable.
	body, err := json.Marshal(models.WebhookEvent{
		Event:     event,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		logger.Error("webhook: failed to encode payload",
			zap.String("webhookId", sub.ID), zap.Error(err))
		s.record(sub, false)
		return false
	}

	success := s.deliver(ctx, sub, event, body)
	s.record(sub, success)
	return success
}

func (s *DefaultWebhookService) deliver(ctx context.Context, sub *models.WebhookSubscription, event string, body []byte) bool {
	logger := utils.GetLogger()

	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(body))
	if err != nil {
		logger.Warn("webhook: failed to build request",
			zap.String("webhookId", sub.ID), zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, event)
	req.Header.Set(HeaderSignature, signPayload(sub.Secret, body))

	resp, err := s.Client.Do(req)
	if err != nil {
		logger.Warn("webhook: delivery failed",
			zap.String("webhookId", sub.ID), zap.String("url", sub.URL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("webhook: endpoint rejected delivery",
			zap.String("webhookId", sub.ID), zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}

// record updates the counters and last-attempt timestamp in storage and
// on the in-memory subscription.
func (s *DefaultWebhookService) record(sub *models.WebhookSubscription, success bool) {
	now := time.Now()
	if err := s.Repo.RecordDelivery(sub.ID, success, now); err != nil {
		utils.GetLogger().Error("webhook: failed to record delivery outcome",
			zap.String("webhookId", sub.ID), zap.Error(err))
	}
	sub.LastTriggered = &now
	if success {
		sub.SuccessCount++
	} else {
		sub.FailureCount++
	}
}

// TriggerForEvent fans the event out to every matching active
// subscription. Deliveries run sequentially; one failure never blocks
// the rest.
func (s *DefaultWebhookService) TriggerForEvent(ctx context.Context, userID, event string, data any) {
	subs, err := s.Repo.ListActiveForEvent(userID, event)
	if err != nil {
		utils.GetLogger().Error("webhook: failed to load subscriptions",
			zap.String("userId", userID), zap.String("event", event), zap.Error(err))
		return
	}
	for i := range subs {
		s.Trigger(ctx, &subs[i], event, data)
	}
}
