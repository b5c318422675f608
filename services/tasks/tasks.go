package tasks

import (
	"encoding/json"
	"time"

	"flowdesk/models"
	"flowdesk/queue"

	"github.com/hibiken/asynq"
)

// Task type names handled by the queue worker.
const (
	TypeEmailSend            = "email:send"
	TypeNotificationDispatch = "notification:dispatch"
	TypePostPublish          = "post:publish"
	TypeReportGenerate       = "report:generate"
)

// completedRetention bounds how long finished/failed job records are kept
// for observability.
const completedRetention = 24 * time.Hour

func NewEmailTask(payload models.EmailJobPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.Queue(queue.QueueEmail),
		asynq.MaxRetry(3),
		asynq.Retention(completedRetention),
	}
	return asynq.NewTask(TypeEmailSend, b), opts, nil
}

func NewNotificationTask(payload models.NotificationJobPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.Queue(queue.QueueNotification),
		asynq.MaxRetry(3),
		asynq.Retention(completedRetention),
	}
	return asynq.NewTask(TypeNotificationDispatch, b), opts, nil
}

func NewPostPublishTask(payload models.PostPublishJobPayload, publishAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.Queue(queue.QueuePostPublish),
		asynq.MaxRetry(3),
		asynq.Retention(completedRetention),
		asynq.ProcessAt(publishAt),
	}
	return asynq.NewTask(TypePostPublish, b), opts, nil
}

// NewReportTask uses a tighter retry policy than the other job types: two
// attempts total, fixed backoff (see the worker's retry delay function).
func NewReportTask(payload models.ReportJobPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.Queue(queue.QueueReport),
		asynq.MaxRetry(1),
		asynq.Retention(completedRetention),
	}
	return asynq.NewTask(TypeReportGenerate, b), opts, nil
}
