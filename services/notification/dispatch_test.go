package notification

import (
	"context"
	"errors"
	"testing"

	"flowdesk/models"

	"github.com/hibiken/asynq"
)

type fakeNotificationRepo struct {
	created   []*models.Notification
	unread    int64
	createErr error
}

func (f *fakeNotificationRepo) Create(n *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, n)
	f.unread++
	return nil
}

func (f *fakeNotificationRepo) ListByUser(userID string, unreadOnly bool, limit int64) ([]models.Notification, error) {
	out := make([]models.Notification, 0, len(f.created))
	for _, n := range f.created {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(userID, id string) error         { return nil }
func (f *fakeNotificationRepo) MarkAllRead(userID string) (int64, error) { return 0, nil }
func (f *fakeNotificationRepo) Delete(userID, id string) error           { return nil }
func (f *fakeNotificationRepo) CountUnread(userID string) (int64, error) {
	return f.unread, nil
}

type fakeUserRepo struct {
	user    *models.User
	cleared int
}

func (f *fakeUserRepo) GetByID(id string) (*models.User, error) {
	if f.user == nil {
		return nil, errors.New("user not found")
	}
	return f.user, nil
}

func (f *fakeUserRepo) Create(user *models.User) error { return nil }
func (f *fakeUserRepo) Update(user *models.User) error { return nil }
func (f *fakeUserRepo) UpdatePreferences(id string, prefs *models.NotificationPreferences) error {
	return nil
}
func (f *fakeUserRepo) SetFCMToken(id, token string) error {
	f.user.FCMToken = token
	return nil
}
func (f *fakeUserRepo) ClearFCMToken(id string) error {
	f.cleared++
	f.user.FCMToken = ""
	return nil
}

type fakeRealtime struct {
	notifications []*models.Notification
	counts        []int64
}

func (f *fakeRealtime) PublishNotification(userID string, n *models.Notification) {
	f.notifications = append(f.notifications, n)
}

func (f *fakeRealtime) PublishUnreadCount(userID string, count int64) {
	f.counts = append(f.counts, count)
}

type fakePush struct {
	sent int
	err  error
}

func (f *fakePush) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	f.sent++
	return f.err
}

type fakeMailer struct {
	sent []models.EmailJobPayload
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.sent = append(f.sent, models.EmailJobPayload{To: to, Subject: subject, Body: body})
	return nil
}

type fakeQueue struct {
	up         bool
	enqueued   []*asynq.Task
	enqueueErr error
}

func (f *fakeQueue) Available() bool { return f.up }

func (f *fakeQueue) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.enqueued = append(f.enqueued, task)
	return nil
}

func testUser(prefs *models.NotificationPreferences) *models.User {
	return &models.User{
		ID:          "user-1",
		Name:        "Ada",
		Email:       "ada@example.com",
		PhoneNumber: "15550100",
		FCMToken:    "device-token",
		Preferences: prefs,
	}
}

func newTestService(user *models.User) (*DefaultNotificationService, *fakeNotificationRepo, *fakeUserRepo, *fakeRealtime, *fakePush, *fakeMailer) {
	repo := &fakeNotificationRepo{}
	users := &fakeUserRepo{user: user}
	realtime := &fakeRealtime{}
	push := &fakePush{}
	mailer := &fakeMailer{}
	svc := &DefaultNotificationService{
		Repo:     repo,
		Users:    users,
		Realtime: realtime,
		Push:     push,
		Mailer:   mailer,
	}
	return svc, repo, users, realtime, push, mailer
}

func TestDispatchMasterToggleOff(t *testing.T) {
	prefs := models.DefaultNotificationPreferences()
	prefs.Enabled = false
	svc, repo, _, realtime, push, mailer := newTestService(testUser(prefs))

	n := svc.Dispatch(context.Background(), models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "Deal won",
		Message:  "Acme signed",
		Category: models.CategorySuccess,
		Hints:    models.ChannelHints{Push: true, Email: true},
	})

	if n == nil {
		t.Fatal("expected notification to be persisted")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 persisted row, got %d", len(repo.created))
	}
	if len(realtime.notifications) != 0 || push.sent != 0 || len(mailer.sent) != 0 {
		t.Error("expected all channel sends suppressed when master toggle is off")
	}
}

func TestDispatchCategoryDisabled(t *testing.T) {
	prefs := models.DefaultNotificationPreferences()
	prefs.Categories["academy"] = false
	svc, repo, _, realtime, push, _ := newTestService(testUser(prefs))

	svc.Dispatch(context.Background(), models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "Course complete",
		Category: models.CategoryCourse,
		Hints:    models.ChannelHints{Push: true},
	})

	if len(repo.created) != 1 {
		t.Fatalf("expected persisted row, got %d", len(repo.created))
	}
	if len(realtime.notifications) != 0 || push.sent != 0 {
		t.Error("expected channel sends suppressed for disabled category")
	}
}

func TestDispatchQuietHoursAndDisabledEmail(t *testing.T) {
	// Quiet window covering the whole day guarantees membership at the
	// current wall clock. Email is disabled by preference.
	prefs := models.DefaultNotificationPreferences()
	prefs.Channels["email"] = false
	prefs.QuietHours = models.QuietHours{Enabled: true, Start: "00:00", End: "23:59"}
	svc, repo, _, realtime, push, mailer := newTestService(testUser(prefs))

	svc.Dispatch(context.Background(), models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "New lesson",
		Category: models.CategoryCourse,
		Hints:    models.ChannelHints{Push: true, Email: true},
	})

	if len(repo.created) != 1 {
		t.Fatalf("expected exactly one persisted row, got %d", len(repo.created))
	}
	if push.sent != 0 {
		t.Errorf("expected quiet hours to suppress push, got %d sends", push.sent)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("expected disabled email preference to suppress email, got %d", len(mailer.sent))
	}
	if len(realtime.notifications) != 1 {
		t.Errorf("expected in-app delivery despite quiet hours, got %d", len(realtime.notifications))
	}
}

func TestDispatchMissingPreferencesDefaultsToEnabled(t *testing.T) {
	svc, repo, _, realtime, push, _ := newTestService(testUser(nil))

	svc.Dispatch(context.Background(), models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "Ticket assigned",
		Category: models.CategoryInfo,
		Hints:    models.ChannelHints{Push: true},
	})

	if len(repo.created) != 1 {
		t.Fatalf("expected persisted row, got %d", len(repo.created))
	}
	if len(realtime.notifications) != 1 {
		t.Errorf("expected in-app delivery, got %d", len(realtime.notifications))
	}
	if push.sent != 1 {
		t.Errorf("expected push delivery with default preferences, got %d", push.sent)
	}
}

func TestDispatchPublishesUnreadCount(t *testing.T) {
	svc, _, _, realtime, _, _ := newTestService(testUser(nil))

	svc.Dispatch(context.Background(), models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "Hello",
		Category: models.CategoryInfo,
	})

	if len(realtime.counts) != 1 || realtime.counts[0] != 1 {
		t.Errorf("expected unread count 1 pushed, got %v", realtime.counts)
	}
}

func TestDispatchClearsDeadPushToken(t *testing.T) {
	svc, _, users, _, push, _ := newTestService(testUser(nil))
	push.err = ErrDeadToken

	svc.Dispatch(context.Background(), models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "Hello",
		Category: models.CategoryInfo,
		Hints:    models.ChannelHints{Push: true},
	})

	if users.cleared != 1 {
		t.Errorf("expected dead token cleared once, got %d", users.cleared)
	}
	if users.user.FCMToken != "" {
		t.Error("expected stored token removed")
	}
}

func TestDispatchPushFailureIsSwallowed(t *testing.T) {
	svc, repo, users, _, push, _ := newTestService(testUser(nil))
	push.err = errors.New("fcm unavailable")

	n := svc.Dispatch(context.Background(), models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "Hello",
		Category: models.CategoryInfo,
		Hints:    models.ChannelHints{Push: true},
	})

	if n == nil || len(repo.created) != 1 {
		t.Fatal("expected dispatch to succeed despite push failure")
	}
	if users.cleared != 0 {
		t.Error("transient push failure must not clear the token")
	}
}

func TestDispatchUnknownUserStillPersists(t *testing.T) {
	svc, repo, _, realtime, push, mailer := newTestService(nil)

	n := svc.Dispatch(context.Background(), models.NotificationJobPayload{
		UserID:   "ghost",
		Title:    "Hello",
		Category: models.CategoryInfo,
		Hints:    models.ChannelHints{Push: true, Email: true},
	})

	if n == nil || len(repo.created) != 1 {
		t.Fatal("expected row persisted for unknown user")
	}
	if push.sent != 0 || len(mailer.sent) != 0 {
		t.Error("expected addressed channels skipped without a user record")
	}
	// In-app still publishes; a live connection is keyed by user id alone.
	if len(realtime.notifications) != 1 {
		t.Errorf("expected in-app publish, got %d", len(realtime.notifications))
	}
}

func TestDispatchEmailRoutesThroughQueue(t *testing.T) {
	svc, _, _, _, _, mailer := newTestService(testUser(nil))
	q := &fakeQueue{up: true}
	svc.Queue = q

	svc.Dispatch(context.Background(), models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "Invoice due",
		Category: models.CategoryWarning,
		Hints:    models.ChannelHints{Email: true},
	})

	if len(q.enqueued) != 1 {
		t.Fatalf("expected 1 enqueued email job, got %d", len(q.enqueued))
	}
	if len(mailer.sent) != 0 {
		t.Error("expected no inline send while the queue is available")
	}
}

func TestDispatchEmailFallsBackInline(t *testing.T) {
	svc, _, _, _, _, mailer := newTestService(testUser(nil))
	svc.Queue = &fakeQueue{up: false}

	svc.Dispatch(context.Background(), models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "Invoice due",
		Category: models.CategoryWarning,
		Hints:    models.ChannelHints{Email: true},
	})

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 inline email send, got %d", len(mailer.sent))
	}
	if mailer.sent[0].To != "ada@example.com" {
		t.Errorf("unexpected recipient %q", mailer.sent[0].To)
	}
}

func TestSendEnqueuesWhenQueueAvailable(t *testing.T) {
	svc, repo, _, _, _, _ := newTestService(testUser(nil))
	q := &fakeQueue{up: true}
	svc.Queue = q

	svc.Send(context.Background(), models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "Hello",
		Category: models.CategoryInfo,
	})

	if len(q.enqueued) != 1 {
		t.Fatalf("expected 1 enqueued dispatch job, got %d", len(q.enqueued))
	}
	if len(repo.created) != 0 {
		t.Error("expected no inline dispatch while the queue is available")
	}
}

func TestSendDispatchesInlineWhenQueueDown(t *testing.T) {
	svc, repo, _, _, _, _ := newTestService(testUser(nil))
	svc.Queue = &fakeQueue{up: false}

	svc.Send(context.Background(), models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "Hello",
		Category: models.CategoryInfo,
	})

	if len(repo.created) != 1 {
		t.Fatalf("expected inline dispatch, got %d rows", len(repo.created))
	}
}

func TestSendDispatchesInlineWhenEnqueueFails(t *testing.T) {
	svc, repo, _, _, _, _ := newTestService(testUser(nil))
	svc.Queue = &fakeQueue{up: true, enqueueErr: errors.New("broker gone")}

	svc.Send(context.Background(), models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "Hello",
		Category: models.CategoryInfo,
	})

	if len(repo.created) != 1 {
		t.Fatalf("expected inline fallback on enqueue failure, got %d rows", len(repo.created))
	}
}
