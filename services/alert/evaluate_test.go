package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"flowdesk/models"
)

type fakeAlertRepo struct {
	rules      []models.AlertRule
	triggered  []string
	listErr    error
	triggerErr error
}

func (f *fakeAlertRepo) Create(rule *models.AlertRule) error { return nil }

func (f *fakeAlertRepo) GetByID(userID, id string) (*models.AlertRule, error) {
	for i := range f.rules {
		if f.rules[i].UserID == userID && f.rules[i].ID == id {
			return &f.rules[i], nil
		}
	}
	return nil, errors.New("rule not found")
}

func (f *fakeAlertRepo) ListByUser(userID string) ([]models.AlertRule, error) {
	return f.rules, nil
}

func (f *fakeAlertRepo) ListEnabled(userID string, module models.BusinessModule) ([]models.AlertRule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.AlertRule
	for _, r := range f.rules {
		if r.Enabled && r.Module == module {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAlertRepo) Update(rule *models.AlertRule) error              { return nil }
func (f *fakeAlertRepo) SetEnabled(userID, id string, enabled bool) error { return nil }
func (f *fakeAlertRepo) Delete(userID, id string) error                   { return nil }

func (f *fakeAlertRepo) RecordTrigger(id string, at time.Time) error {
	if f.triggerErr != nil {
		return f.triggerErr
	}
	f.triggered = append(f.triggered, id)
	return nil
}

type fakeNotifier struct {
	dispatched []models.NotificationJobPayload
	panicOn    string
}

func (f *fakeNotifier) Dispatch(ctx context.Context, in models.NotificationJobPayload) *models.Notification {
	if f.panicOn != "" && in.Title == f.panicOn {
		panic("notifier exploded")
	}
	f.dispatched = append(f.dispatched, in)
	return &models.Notification{ID: "n-1", UserID: in.UserID}
}

func baseRule() *models.AlertRule {
	return &models.AlertRule{
		ID:      "rule-1",
		UserID:  "user-1",
		Name:    "Revenue milestone",
		Module:  models.ModuleDeals,
		Enabled: true,
		Condition: models.AlertCondition{
			Field:    "revenue",
			Operator: models.OpReached,
			Value:    models.NumberValue(100),
		},
		Frequency: models.FrequencyAlways,
		Channels:  models.RuleChannels{InApp: true, Push: true},
	}
}

func TestEvaluateRuleReached(t *testing.T) {
	cases := []struct {
		name    string
		revenue any
		want    bool
	}{
		{"below threshold", 99, false},
		{"exact threshold", 100, true},
		{"above threshold", 150.5, true},
		{"non-numeric field", "lots", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeAlertRepo{}
			notifier := &fakeNotifier{}
			svc := &DefaultAlertService{Repo: repo, Notifier: notifier}

			got, err := svc.EvaluateRule(context.Background(), baseRule(),
				map[string]any{"revenue": tc.revenue})
			if err != nil {
				t.Fatalf("EvaluateRule: %v", err)
			}
			if got != tc.want {
				t.Errorf("triggered = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateRuleOperators(t *testing.T) {
	snapshot := map[string]any{
		"status": "open",
		"count":  7,
		"flags":  map[string]any{"urgent": true},
		"title":  "quarterly revenue report",
	}

	cases := []struct {
		name string
		cond models.AlertCondition
		want bool
	}{
		{"equals string match", models.AlertCondition{Field: "status", Operator: models.OpEquals, Value: models.StringValue("open")}, true},
		{"equals string mismatch", models.AlertCondition{Field: "status", Operator: models.OpEquals, Value: models.StringValue("closed")}, false},
		{"equals number", models.AlertCondition{Field: "count", Operator: models.OpEquals, Value: models.NumberValue(7)}, true},
		{"equals type mismatch", models.AlertCondition{Field: "status", Operator: models.OpEquals, Value: models.NumberValue(7)}, false},
		{"greater_than", models.AlertCondition{Field: "count", Operator: models.OpGreaterThan, Value: models.NumberValue(5)}, true},
		{"less_than", models.AlertCondition{Field: "count", Operator: models.OpLessThan, Value: models.NumberValue(5)}, false},
		{"contains", models.AlertCondition{Field: "title", Operator: models.OpContains, Value: models.StringValue("revenue")}, true},
		{"contains missing substring", models.AlertCondition{Field: "title", Operator: models.OpContains, Value: models.StringValue("loss")}, false},
		{"changed defined", models.AlertCondition{Field: "status", Operator: models.OpChanged}, true},
		{"changed nested", models.AlertCondition{Field: "flags.urgent", Operator: models.OpChanged}, true},
		{"changed undefined", models.AlertCondition{Field: "missing", Operator: models.OpChanged}, false},
		{"nested equals bool", models.AlertCondition{Field: "flags.urgent", Operator: models.OpEquals, Value: models.BoolValue(true)}, true},
		{"undefined field never compares", models.AlertCondition{Field: "missing", Operator: models.OpGreaterThan, Value: models.NumberValue(0)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := baseRule()
			rule.Condition = tc.cond

			svc := &DefaultAlertService{Repo: &fakeAlertRepo{}, Notifier: &fakeNotifier{}}
			got, err := svc.EvaluateRule(context.Background(), rule, snapshot)
			if err != nil {
				t.Fatalf("EvaluateRule: %v", err)
			}
			if got != tc.want {
				t.Errorf("triggered = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFrequencyGates(t *testing.T) {
	hourAgo := time.Now().Add(-time.Hour)
	twoDaysAgo := time.Now().Add(-48 * time.Hour)
	eightDaysAgo := time.Now().Add(-8 * 24 * time.Hour)

	cases := []struct {
		name      string
		frequency models.TriggerFrequency
		count     int64
		last      *time.Time
		want      bool
	}{
		{"once never fired", models.FrequencyOnce, 0, nil, true},
		{"once already fired", models.FrequencyOnce, 1, &hourAgo, false},
		{"daily too recent", models.FrequencyDaily, 3, &hourAgo, false},
		{"daily elapsed", models.FrequencyDaily, 3, &twoDaysAgo, true},
		{"weekly too recent", models.FrequencyWeekly, 1, &twoDaysAgo, false},
		{"weekly elapsed", models.FrequencyWeekly, 1, &eightDaysAgo, true},
		{"always refires", models.FrequencyAlways, 100, &hourAgo, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := baseRule()
			rule.Frequency = tc.frequency
			rule.TriggerCount = tc.count
			rule.LastTriggered = tc.last

			svc := &DefaultAlertService{Repo: &fakeAlertRepo{}, Notifier: &fakeNotifier{}}
			got, err := svc.EvaluateRule(context.Background(), rule,
				map[string]any{"revenue": 500})
			if err != nil {
				t.Fatalf("EvaluateRule: %v", err)
			}
			if got != tc.want {
				t.Errorf("triggered = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateRuleDisabled(t *testing.T) {
	rule := baseRule()
	rule.Enabled = false

	svc := &DefaultAlertService{Repo: &fakeAlertRepo{}, Notifier: &fakeNotifier{}}
	got, err := svc.EvaluateRule(context.Background(), rule,
		map[string]any{"revenue": 500})
	if err != nil {
		t.Fatalf("EvaluateRule: %v", err)
	}
	if got {
		t.Error("disabled rule must never trigger")
	}
}

func TestEvaluateRuleDispatchAndBookkeeping(t *testing.T) {
	repo := &fakeAlertRepo{}
	notifier := &fakeNotifier{}
	svc := &DefaultAlertService{Repo: repo, Notifier: notifier}

	rule := baseRule()
	rule.Channels = models.RuleChannels{InApp: true, Push: true, Email: true}

	triggered, err := svc.EvaluateRule(context.Background(), rule,
		map[string]any{"revenue": 150})
	if err != nil {
		t.Fatalf("EvaluateRule: %v", err)
	}
	if !triggered {
		t.Fatal("expected trigger")
	}
	if len(repo.triggered) != 1 || repo.triggered[0] != "rule-1" {
		t.Errorf("expected trigger recorded for rule-1, got %v", repo.triggered)
	}
	if rule.TriggerCount != 1 || rule.LastTriggered == nil {
		t.Error("expected in-memory bookkeeping updated")
	}

	if len(notifier.dispatched) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(notifier.dispatched))
	}
	got := notifier.dispatched[0]
	if got.Title != "Revenue milestone" {
		t.Errorf("unexpected title %q", got.Title)
	}
	if got.Message != "revenue reached 100. Current value: 150" {
		t.Errorf("unexpected message %q", got.Message)
	}
	if !got.Hints.Push || !got.Hints.Email {
		t.Errorf("expected channel hints from rule config, got %+v", got.Hints)
	}
}

func TestEvaluateRuleChangedMessage(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := &DefaultAlertService{Repo: &fakeAlertRepo{}, Notifier: notifier}

	rule := baseRule()
	rule.Name = ""
	rule.Condition = models.AlertCondition{Field: "status", Operator: models.OpChanged}

	if _, err := svc.EvaluateRule(context.Background(), rule,
		map[string]any{"status": "won"}); err != nil {
		t.Fatalf("EvaluateRule: %v", err)
	}

	got := notifier.dispatched[0]
	if got.Title != "Alert on deals" {
		t.Errorf("unexpected fallback title %q", got.Title)
	}
	if got.Message != "status was updated to: won" {
		t.Errorf("unexpected message %q", got.Message)
	}
}

func TestEvaluateRuleRecordErrorSkipsDispatch(t *testing.T) {
	notifier := &fakeNotifier{}
	repo := &fakeAlertRepo{triggerErr: errors.New("mongo down")}
	svc := &DefaultAlertService{Repo: repo, Notifier: notifier}

	triggered, err := svc.EvaluateRule(context.Background(), baseRule(),
		map[string]any{"revenue": 150})
	if err == nil {
		t.Fatal("expected error when trigger bookkeeping fails")
	}
	if triggered {
		t.Error("expected no trigger reported")
	}
	if len(notifier.dispatched) != 0 {
		t.Error("expected no dispatch when bookkeeping fails")
	}
}

func TestEvaluateModuleIsolatesFailures(t *testing.T) {
	first := *baseRule()
	first.ID = "rule-1"
	first.Name = "boom"

	second := *baseRule()
	second.ID = "rule-2"
	second.Name = "still fires"

	repo := &fakeAlertRepo{rules: []models.AlertRule{first, second}}
	notifier := &fakeNotifier{panicOn: "boom"}
	svc := &DefaultAlertService{Repo: repo, Notifier: notifier}

	svc.EvaluateModule(context.Background(), "user-1", models.ModuleDeals,
		map[string]any{"revenue": 150})

	if len(notifier.dispatched) != 1 || notifier.dispatched[0].Title != "still fires" {
		t.Errorf("expected the second rule to fire despite the first panicking, got %+v",
			notifier.dispatched)
	}
}
