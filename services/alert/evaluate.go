// File: services/alert/evaluate.go
package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flowdesk/models"
	"flowdesk/utils"

	"go.uber.org/zap"
)

// EvaluateModule runs every enabled rule of (user, module) against the
// snapshot. Each rule is isolated: a panic or error inside one evaluation
// is logged and the batch continues.
func (s *DefaultAlertService) EvaluateModule(ctx context.Context, userID string, module models.BusinessModule, snapshot map[string]any) {
	logger := utils.GetLogger()

	rules, err := s.Repo.ListEnabled(userID, module)
	if err != nil {
		logger.Error("alert: failed to load rules",
			zap.String("userId", userID), zap.String("module", string(module)), zap.Error(err))
		return
	}

	for i := range rules {
		rule := rules[i]
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("alert: rule evaluation panicked",
						zap.String("ruleId", rule.ID), zap.Any("panic", r))
				}
			}()
			if _, err := s.EvaluateRule(ctx, &rule, snapshot); err != nil {
				logger.Warn("alert: rule evaluation failed",
					zap.String("ruleId", rule.ID), zap.Error(err))
			}
		}()
	}
}

// EvaluateRule applies the frequency gate and the condition, and on
// trigger records bookkeeping and dispatches the configured notification.
func (s *DefaultAlertService) EvaluateRule(ctx context.Context, rule *models.AlertRule, snapshot map[string]any) (bool, error) {
	if !rule.Enabled {
		return false, nil
	}

	now := time.Now()
	if !frequencyGateOpen(rule, now) {
		return false, nil
	}

	triggered, resolved := conditionMet(rule.Condition, snapshot)
	if !triggered {
		return false, nil
	}

	if err := s.Repo.RecordTrigger(rule.ID, now); err != nil {
		return false, fmt.Errorf("failed to record trigger: %w", err)
	}
	rule.LastTriggered = &now
	rule.TriggerCount++

	s.Notifier.Dispatch(ctx, models.NotificationJobPayload{
		UserID:   rule.UserID,
		Title:    triggerTitle(rule),
		Message:  triggerMessage(rule.Condition, resolved),
		Category: models.CategoryWarning,
		Hints: models.ChannelHints{
			Push:  rule.Channels.Push,
			Email: rule.Channels.Email,
		},
	})

	return true, nil
}

// frequencyGateOpen applies the rule's throttle policy.
func frequencyGateOpen(rule *models.AlertRule, now time.Time) bool {
	switch rule.Frequency {
	case models.FrequencyOnce:
		return rule.TriggerCount == 0
	case models.FrequencyDaily:
		return rule.LastTriggered == nil || now.Sub(*rule.LastTriggered) >= 24*time.Hour
	case models.FrequencyWeekly:
		return rule.LastTriggered == nil || now.Sub(*rule.LastTriggered) >= 7*24*time.Hour
	default: // always
		return true
	}
}

// resolvePath traverses the snapshot by dot notation. A missing segment
// means the field is undefined.
func resolvePath(snapshot map[string]any, path string) (any, bool) {
	var current any = snapshot
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// toNumber normalizes the numeric types a snapshot may carry.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// conditionMet evaluates the operator against the resolved field value.
// Semantics are total: type mismatches evaluate to false, never error.
func conditionMet(cond models.AlertCondition, snapshot map[string]any) (bool, any) {
	resolved, defined := resolvePath(snapshot, cond.Field)

	switch cond.Operator {
	case models.OpChanged:
		// Fires whenever the watched field is present in the snapshot.
		return defined, resolved

	case models.OpEquals:
		if !defined {
			return false, resolved
		}
		return equalValues(cond.Value, resolved), resolved

	case models.OpGreaterThan:
		field, ok := toNumber(resolved)
		operand, okOp := cond.Value.AsNumber()
		return defined && ok && okOp && field > operand, resolved

	case models.OpLessThan:
		field, ok := toNumber(resolved)
		operand, okOp := cond.Value.AsNumber()
		return defined && ok && okOp && field < operand, resolved

	case models.OpContains:
		field, ok := resolved.(string)
		operand, okOp := cond.Value.AsString()
		return defined && ok && okOp && strings.Contains(field, operand), resolved

	case models.OpReached:
		field, ok := toNumber(resolved)
		operand, okOp := cond.Value.AsNumber()
		return defined && ok && okOp && field >= operand, resolved

	default:
		return false, resolved
	}
}

func equalValues(operand models.ConditionValue, resolved any) bool {
	switch operand.Kind {
	case models.ValueNumber:
		field, ok := toNumber(resolved)
		return ok && field == operand.Num
	case models.ValueString:
		field, ok := resolved.(string)
		return ok && field == operand.Str
	case models.ValueBool:
		field, ok := resolved.(bool)
		return ok && field == operand.Bool
	case models.ValueNull:
		return resolved == nil
	default:
		return false
	}
}

func triggerTitle(rule *models.AlertRule) string {
	if rule.Name != "" {
		return rule.Name
	}
	return fmt.Sprintf("Alert on %s", rule.Module)
}

// triggerMessage formats the human-readable trigger description.
func triggerMessage(cond models.AlertCondition, resolved any) string {
	if cond.Operator == models.OpChanged {
		return fmt.Sprintf("%s was updated to: %v", cond.Field, resolved)
	}
	return fmt.Sprintf("%s %s %s. Current value: %v",
		cond.Field, cond.Operator.Human(), cond.Value.Display(), resolved)
}
