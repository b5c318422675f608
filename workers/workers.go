// File: workers/workers.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flowdesk/config"
	"flowdesk/models"
	"flowdesk/queue"
	"flowdesk/services/notification"
	"flowdesk/services/tasks"
	"flowdesk/services/webhook"
	"flowdesk/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// reportRetryDelay is the fixed pause between report generation
// attempts; everything else keeps asynq's exponential schedule.
const reportRetryDelay = 30 * time.Second

// Worker consumes the durable queues and routes each job back into the
// notification layer.
type Worker struct {
	server   *asynq.Server
	notifier notification.NotificationService
	webhooks webhook.WebhookService
	mailer   *utils.SMTPMailer
}

func NewWorker(notifier notification.NotificationService, webhooks webhook.WebhookService, mailer *utils.SMTPMailer) *Worker {
	redisOpt := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			queue.QueueNotification: 4,
			queue.QueueEmail:        3,
			queue.QueuePostPublish:  2,
			queue.QueueReport:       1,
		},
		RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
			if t.Type() == tasks.TypeReportGenerate {
				return reportRetryDelay
			}
			return asynq.DefaultRetryDelayFunc(n, e, t)
		},
		Logger: asynqLogger{},
	})

	return &Worker{
		server:   server,
		notifier: notifier,
		webhooks: webhooks,
		mailer:   mailer,
	}
}

// Start runs the consumer loop in the background, retrying startup while
// redis is unreachable.
func (w *Worker) Start() {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeEmailSend, w.handleEmail)
	mux.HandleFunc(tasks.TypeNotificationDispatch, w.handleNotification)
	mux.HandleFunc(tasks.TypePostPublish, w.handlePostPublish)
	mux.HandleFunc(tasks.TypeReportGenerate, w.handleReport)

	go func() {
		backoff := 5 * time.Second
		for {
			utils.GetLogger().Info("worker: starting queue consumers")
			if err := w.server.Run(mux); err != nil {
				utils.GetLogger().Error("worker: consumer loop exited",
					zap.Error(err), zap.Duration("retryIn", backoff))
				time.Sleep(backoff)
				if backoff < time.Minute {
					backoff *= 2
				}
				continue
			}
			return
		}
	}()
}

// Shutdown waits for in-flight handlers to finish.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleEmail(ctx context.Context, t *asynq.Task) error {
	var payload models.EmailJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("email job payload: %w", err)
	}
	if w.mailer == nil {
		return fmt.Errorf("smtp is not configured")
	}
	if err := w.mailer.Send(ctx, payload.To, payload.Subject, payload.Body); err != nil {
		return fmt.Errorf("send email to %s: %w", payload.To, err)
	}
	utils.GetLogger().Info("worker: email delivered", zap.String("to", payload.To))
	return nil
}

func (w *Worker) handleNotification(ctx context.Context, t *asynq.Task) error {
	var payload models.NotificationJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("notification job payload: %w", err)
	}
	w.notifier.Dispatch(ctx, payload)
	return nil
}

func (w *Worker) handlePostPublish(ctx context.Context, t *asynq.Task) error {
	var payload models.PostPublishJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("post publish payload: %w", err)
	}

	w.notifier.Dispatch(ctx, models.NotificationJobPayload{
		UserID:   payload.UserID,
		Title:    "Post published",
		Message:  fmt.Sprintf("Your post %q is now live.", payload.Title),
		Category: models.CategorySuccess,
		Link:     "/posts/" + payload.PostID,
		Hints:    models.ChannelHints{Push: true},
	})

	w.webhooks.TriggerForEvent(ctx, payload.UserID, "post.published", map[string]any{
		"post_id": payload.PostID,
		"title":   payload.Title,
	})
	return nil
}

func (w *Worker) handleReport(ctx context.Context, t *asynq.Task) error {
	var payload models.ReportJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("report job payload: %w", err)
	}

	w.notifier.Dispatch(ctx, models.NotificationJobPayload{
		UserID:   payload.UserID,
		Title:    "Report ready",
		Message:  fmt.Sprintf("Your %s report is ready to download.", payload.Kind),
		Category: models.CategoryInfo,
		Link:     "/reports/" + payload.ReportID,
		Hints:    models.ChannelHints{Push: true, Email: true},
	})

	w.webhooks.TriggerForEvent(ctx, payload.UserID, "report.generated", map[string]any{
		"report_id": payload.ReportID,
		"kind":      payload.Kind,
	})
	return nil
}

// asynqLogger adapts the shared zap logger to asynq's interface.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) { utils.GetLogger().Sugar().Debug(args...) }
func (asynqLogger) Info(args ...interface{})  { utils.GetLogger().Sugar().Info(args...) }
func (asynqLogger) Warn(args ...interface{})  { utils.GetLogger().Sugar().Warn(args...) }
func (asynqLogger) Error(args ...interface{}) { utils.GetLogger().Sugar().Error(args...) }
func (asynqLogger) Fatal(args ...interface{}) { utils.GetLogger().Sugar().Fatal(args...) }
