package models

import "time"

// BusinessModule names a flowdesk module whose records can be watched by
// alert rules.
type BusinessModule string

const (
	ModuleCampaigns BusinessModule = "campaigns"
	ModuleDeals     BusinessModule = "deals"
	ModuleTickets   BusinessModule = "tickets"
	ModulePosts     BusinessModule = "posts"
	ModuleCourses   BusinessModule = "courses"
	ModuleBilling   BusinessModule = "billing"
)

// ConditionOperator is the comparison applied between the watched field
// and the rule's comparison value.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpContains    ConditionOperator = "contains"
	OpChanged     ConditionOperator = "changed"
	OpReached     ConditionOperator = "reached"
)

// Human renders the operator for trigger messages.
func (o ConditionOperator) Human() string {
	switch o {
	case OpEquals:
		return "is equal to"
	case OpGreaterThan:
		return "is greater than"
	case OpLessThan:
		return "is less than"
	case OpContains:
		return "contains"
	case OpReached:
		return "reached"
	default:
		return string(o)
	}
}

// TriggerFrequency gates how often a rule may re-fire.
type TriggerFrequency string

const (
	FrequencyOnce   TriggerFrequency = "once"
	FrequencyAlways TriggerFrequency = "always"
	FrequencyDaily  TriggerFrequency = "daily"
	FrequencyWeekly TriggerFrequency = "weekly"
)

// AlertCondition is the watched field path (dot notation), the operator,
// and the comparison operand.
type AlertCondition struct {
	Field    string            `bson:"field" json:"field"`
	Operator ConditionOperator `bson:"operator" json:"operator"`
	Value    ConditionValue    `bson:"value" json:"value"`
}

// RuleChannels selects which dispatch channels a triggered rule uses.
type RuleChannels struct {
	InApp bool `bson:"in_app" json:"inApp"`
	Push  bool `bson:"push" json:"push"`
	Email bool `bson:"email" json:"email"`
}

type AlertRule struct {
	ID            string           `bson:"id" json:"id"`
	UserID        string           `bson:"user_id" json:"userId"`
	Name          string           `bson:"name" json:"name"`
	Module        BusinessModule   `bson:"module" json:"module"`
	Condition     AlertCondition   `bson:"condition" json:"condition"`
	Frequency     TriggerFrequency `bson:"frequency" json:"frequency"`
	Enabled       bool             `bson:"enabled" json:"enabled"`
	Channels      RuleChannels     `bson:"channels" json:"channels"`
	LastTriggered *time.Time       `bson:"last_triggered,omitempty" json:"lastTriggered,omitempty"`
	TriggerCount  int64            `bson:"trigger_count" json:"triggerCount"`
	CreatedAt     time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time        `bson:"updated_at" json:"updatedAt"`
}
