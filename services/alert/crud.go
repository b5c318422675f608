package alert

import (
	"context"
	"fmt"

	"flowdesk/models"

	"github.com/google/uuid"
)

func validOperator(op models.ConditionOperator) bool {
	switch op {
	case models.OpEquals, models.OpGreaterThan, models.OpLessThan,
		models.OpContains, models.OpChanged, models.OpReached:
		return true
	}
	return false
}

func validFrequency(f models.TriggerFrequency) bool {
	switch f {
	case models.FrequencyOnce, models.FrequencyAlways,
		models.FrequencyDaily, models.FrequencyWeekly:
		return true
	}
	return false
}

func validateRule(rule *models.AlertRule) error {
	if rule.UserID == "" {
		return fmt.Errorf("rule owner is required")
	}
	if rule.Module == "" {
		return fmt.Errorf("rule module is required")
	}
	if rule.Condition.Field == "" {
		return fmt.Errorf("rule condition field is required")
	}
	if !validOperator(rule.Condition.Operator) {
		return fmt.Errorf("unknown condition operator %q", rule.Condition.Operator)
	}
	if !validFrequency(rule.Frequency) {
		return fmt.Errorf("unknown trigger frequency %q", rule.Frequency)
	}
	return nil
}

// CreateRule validates and stores a new alert rule.
func (s *DefaultAlertService) CreateRule(ctx context.Context, rule *models.AlertRule) (*models.AlertRule, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	rule.ID = uuid.NewString()
	rule.TriggerCount = 0
	rule.LastTriggered = nil
	if err := s.Repo.Create(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ListRules returns all rules of the user.
func (s *DefaultAlertService) ListRules(ctx context.Context, userID string) ([]models.AlertRule, error) {
	return s.Repo.ListByUser(userID)
}

// UpdateRule validates and replaces an existing rule. Trigger bookkeeping
// is preserved from the stored record.
func (s *DefaultAlertService) UpdateRule(ctx context.Context, rule *models.AlertRule) (*models.AlertRule, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	existing, err := s.Repo.GetByID(rule.UserID, rule.ID)
	if err != nil {
		return nil, err
	}
	rule.TriggerCount = existing.TriggerCount
	rule.LastTriggered = existing.LastTriggered
	rule.CreatedAt = existing.CreatedAt
	if err := s.Repo.Update(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ToggleRule enables or disables a rule.
func (s *DefaultAlertService) ToggleRule(ctx context.Context, userID, id string, enabled bool) error {
	return s.Repo.SetEnabled(userID, id, enabled)
}

// DeleteRule removes a rule owned by the user.
func (s *DefaultAlertService) DeleteRule(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(userID, id)
}
