package alert

import (
	"context"
	"fmt"

	alertRepo "flowdesk/database/repository/alertrule"
	"flowdesk/models"
)

// Notifier is the slice of the notification dispatcher the evaluator
// needs when a rule fires.
type Notifier interface {
	Dispatch(ctx context.Context, in models.NotificationJobPayload) *models.Notification
}

// AlertService owns alert rule management and evaluation against business
// data snapshots.
type AlertService interface {
	CreateRule(ctx context.Context, rule *models.AlertRule) (*models.AlertRule, error)
	ListRules(ctx context.Context, userID string) ([]models.AlertRule, error)
	UpdateRule(ctx context.Context, rule *models.AlertRule) (*models.AlertRule, error)
	ToggleRule(ctx context.Context, userID, id string, enabled bool) error
	DeleteRule(ctx context.Context, userID, id string) error

	// EvaluateModule evaluates every enabled rule of (user, module)
	// against the snapshot. A failure in one rule never aborts the rest.
	EvaluateModule(ctx context.Context, userID string, module models.BusinessModule, snapshot map[string]any)

	// EvaluateRule evaluates a single rule and, on trigger, records the
	// bookkeeping and dispatches the configured notification.
	EvaluateRule(ctx context.Context, rule *models.AlertRule, snapshot map[string]any) (bool, error)
}

// DefaultAlertService is the production implementation.
type DefaultAlertService struct {
	Repo     alertRepo.AlertRuleRepository
	Notifier Notifier
}

func NewDefaultAlertService(repo alertRepo.AlertRuleRepository, notifier Notifier) (*DefaultAlertService, error) {
	if repo == nil || notifier == nil {
		return nil, fmt.Errorf("alert service initialization error: one or more dependencies are nil")
	}
	return &DefaultAlertService{Repo: repo, Notifier: notifier}, nil
}
