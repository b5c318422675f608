package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"flowdesk/models"
)

type fakeWebhookRepo struct {
	subs     []models.WebhookSubscription
	recorded []bool
}

func (f *fakeWebhookRepo) Create(sub *models.WebhookSubscription) error {
	f.subs = append(f.subs, *sub)
	return nil
}

func (f *fakeWebhookRepo) GetByID(userID, id string) (*models.WebhookSubscription, error) {
	for i := range f.subs {
		if f.subs[i].UserID == userID && f.subs[i].ID == id {
			return &f.subs[i], nil
		}
	}
	return nil, errors.New("webhook not found")
}

func (f *fakeWebhookRepo) ListByUser(userID string) ([]models.WebhookSubscription, error) {
	return f.subs, nil
}

func (f *fakeWebhookRepo) ListActiveForEvent(userID, event string) ([]models.WebhookSubscription, error) {
	var out []models.WebhookSubscription
	for _, sub := range f.subs {
		if sub.UserID == userID && sub.Active && sub.SubscribedTo(event) {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (f *fakeWebhookRepo) Update(sub *models.WebhookSubscription) error { return nil }
func (f *fakeWebhookRepo) Delete(userID, id string) error               { return nil }

func (f *fakeWebhookRepo) RecordDelivery(id string, success bool, at time.Time) error {
	f.recorded = append(f.recorded, success)
	return nil
}

func newTestWebhookService(repo *fakeWebhookRepo) *DefaultWebhookService {
	return &DefaultWebhookService{
		Repo:   repo,
		Client: &http.Client{Timeout: time.Second},
	}
}

func testSub(url string) *models.WebhookSubscription {
	return &models.WebhookSubscription{
		ID:     "wh-1",
		UserID: "user-1",
		Name:   "CRM sync",
		URL:    url,
		Secret: "0123456789abcdef0123456789abcdef",
		Events: []string{"deal.won"},
		Active: true,
	}
}

func TestTriggerSignsAndDelivers(t *testing.T) {
	var gotEvent, gotSig string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEvent = r.Header.Get(HeaderEvent)
		gotSig = r.Header.Get(HeaderSignature)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo := &fakeWebhookRepo{}
	svc := newTestWebhookService(repo)
	sub := testSub(server.URL)

	ok := svc.Trigger(context.Background(), sub, "deal.won", map[string]any{"deal_id": "d-7"})
	if !ok {
		t.Fatal("expected successful delivery")
	}

	if gotEvent != "deal.won" {
		t.Errorf("event header = %q, want deal.won", gotEvent)
	}

	mac := hmac.New(sha256.New, []byte(sub.Secret))
	mac.Write(gotBody)
	if want := hex.EncodeToString(mac.Sum(nil)); gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}

	var payload models.WebhookEvent
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("body not valid JSON: %v", err)
	}
	if payload.Event != "deal.won" || payload.Timestamp == 0 {
		t.Errorf("unexpected payload %+v", payload)
	}

	if sub.SuccessCount != 1 || sub.FailureCount != 0 {
		t.Errorf("counters = %d/%d, want 1/0", sub.SuccessCount, sub.FailureCount)
	}
	if sub.LastTriggered == nil {
		t.Error("expected lastTriggered set")
	}
	if len(repo.recorded) != 1 || !repo.recorded[0] {
		t.Errorf("expected one successful delivery recorded, got %v", repo.recorded)
	}
}

func TestTriggerRecordsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := &fakeWebhookRepo{}
	svc := newTestWebhookService(repo)
	sub := testSub(server.URL)

	if ok := svc.Trigger(context.Background(), sub, "deal.won", nil); ok {
		t.Fatal("expected delivery failure on 500")
	}
	if sub.FailureCount != 1 || sub.SuccessCount != 0 {
		t.Errorf("counters = %d/%d, want 0 success / 1 failure", sub.SuccessCount, sub.FailureCount)
	}
	if sub.LastTriggered == nil {
		t.Error("expected lastTriggered set on failed attempt")
	}
	if len(repo.recorded) != 1 || repo.recorded[0] {
		t.Errorf("expected one failed delivery recorded, got %v", repo.recorded)
	}
}

func TestTriggerSkipsInactive(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	repo := &fakeWebhookRepo{}
	svc := newTestWebhookService(repo)
	sub := testSub(server.URL)
	sub.Active = false

	if ok := svc.Trigger(context.Background(), sub, "deal.won", nil); ok {
		t.Fatal("expected inactive subscription skipped")
	}
	if called {
		t.Error("inactive subscription must not be called")
	}
	if len(repo.recorded) != 0 || sub.FailureCount != 0 {
		t.Error("skip must not touch delivery bookkeeping")
	}
}

func TestTriggerForEventIsolatesFailures(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	broken := *testSub("http://127.0.0.1:1/unreachable")
	broken.ID = "wh-broken"
	healthy := *testSub(server.URL)
	healthy.ID = "wh-healthy"

	repo := &fakeWebhookRepo{subs: []models.WebhookSubscription{broken, healthy}}
	svc := newTestWebhookService(repo)

	svc.TriggerForEvent(context.Background(), "user-1", "deal.won", nil)

	if hits != 1 {
		t.Errorf("expected healthy endpoint hit once despite broken peer, got %d", hits)
	}
	if len(repo.recorded) != 2 {
		t.Errorf("expected both attempts recorded, got %v", repo.recorded)
	}
}

func TestCreateIssuesSecretOnce(t *testing.T) {
	repo := &fakeWebhookRepo{}
	svc := newTestWebhookService(repo)

	sub, secret, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:   "CRM sync",
		URL:    "https://example.com/hook",
		Events: []string{"deal.won"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(secret) != 64 {
		t.Errorf("secret length = %d, want 64 hex chars", len(secret))
	}
	if !sub.Active {
		t.Error("new subscription must default to active")
	}

	encoded, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal subscription: %v", err)
	}
	if strings.Contains(string(encoded), secret) {
		t.Error("secret must never appear in the JSON representation")
	}
}

func TestCreateValidation(t *testing.T) {
	repo := &fakeWebhookRepo{}
	svc := newTestWebhookService(repo)

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing name", CreateInput{URL: "https://example.com", Events: []string{"x"}}},
		{"bad scheme", CreateInput{Name: "n", URL: "ftp://example.com", Events: []string{"x"}}},
		{"no host", CreateInput{Name: "n", URL: "https://", Events: []string{"x"}}},
		{"no events", CreateInput{Name: "n", URL: "https://example.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Create(context.Background(), "user-1", tc.in); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
