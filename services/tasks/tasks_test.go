package tasks

import (
	"encoding/json"
	"testing"
	"time"

	"flowdesk/models"
)

func TestNewEmailTask(t *testing.T) {
	task, opts, err := NewEmailTask(models.EmailJobPayload{
		To:      "ada@example.com",
		Subject: "Invoice due",
		Body:    "body",
	})
	if err != nil {
		t.Fatalf("NewEmailTask: %v", err)
	}
	if task.Type() != TypeEmailSend {
		t.Errorf("task type = %q, want %q", task.Type(), TypeEmailSend)
	}
	if len(opts) != 3 {
		t.Errorf("expected queue, retry and retention options, got %d", len(opts))
	}

	var payload models.EmailJobPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.To != "ada@example.com" {
		t.Errorf("recipient = %q", payload.To)
	}
}

func TestNewNotificationTask(t *testing.T) {
	in := models.NotificationJobPayload{
		UserID:   "user-1",
		Title:    "Deal won",
		Category: models.CategorySuccess,
		Hints:    models.ChannelHints{Push: true},
	}
	task, _, err := NewNotificationTask(in)
	if err != nil {
		t.Fatalf("NewNotificationTask: %v", err)
	}
	if task.Type() != TypeNotificationDispatch {
		t.Errorf("task type = %q, want %q", task.Type(), TypeNotificationDispatch)
	}

	var payload models.NotificationJobPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload != in {
		t.Errorf("payload round trip = %+v, want %+v", payload, in)
	}
}

func TestNewPostPublishTaskIsScheduled(t *testing.T) {
	task, opts, err := NewPostPublishTask(models.PostPublishJobPayload{
		PostID: "p-1",
		UserID: "user-1",
		Title:  "Launch",
	}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("NewPostPublishTask: %v", err)
	}
	if task.Type() != TypePostPublish {
		t.Errorf("task type = %q, want %q", task.Type(), TypePostPublish)
	}
	// queue, retry, retention plus the ProcessAt schedule.
	if len(opts) != 4 {
		t.Errorf("expected 4 options, got %d", len(opts))
	}
}

func TestNewReportTask(t *testing.T) {
	task, _, err := NewReportTask(models.ReportJobPayload{
		ReportID: "r-1",
		UserID:   "user-1",
		Kind:     "monthly",
	})
	if err != nil {
		t.Fatalf("NewReportTask: %v", err)
	}
	if task.Type() != TypeReportGenerate {
		t.Errorf("task type = %q, want %q", task.Type(), TypeReportGenerate)
	}
}
