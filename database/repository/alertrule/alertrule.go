package alertRepo

import (
	"time"

	"flowdesk/models"
)

// AlertRuleRepository defines alert rule data access.
type AlertRuleRepository interface {
	// Create inserts a new rule.
	Create(rule *models.AlertRule) error
	// GetByID retrieves a rule owned by the user.
	GetByID(userID, id string) (*models.AlertRule, error)
	// ListByUser returns all rules of the user.
	ListByUser(userID string) ([]models.AlertRule, error)
	// ListEnabled returns the user's enabled rules for a business module.
	ListEnabled(userID string, module models.BusinessModule) ([]models.AlertRule, error)
	// Update modifies an existing rule.
	Update(rule *models.AlertRule) error
	// SetEnabled toggles a rule on or off.
	SetEnabled(userID, id string, enabled bool) error
	// Delete removes a rule owned by the user.
	Delete(userID, id string) error
	// RecordTrigger bumps the trigger counter and timestamp after a fire.
	RecordTrigger(id string, at time.Time) error
}
