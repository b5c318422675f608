// File: queue/adapter.go
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"flowdesk/config"
	"flowdesk/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// Logical queue names. Each has its own consumer loop in the worker.
const (
	QueueEmail        = "email"
	QueueNotification = "notification"
	QueuePostPublish  = "post_publish"
	QueueReport       = "report"
)

// ErrUnavailable is returned by Enqueue when the broker is down. Callers
// must fall back to performing the job inline.
var ErrUnavailable = errors.New("durable queue unavailable")

// Adapter wraps the asynq client with a live broker-health flag. Enqueue
// fails fast when the broker is unreachable instead of blocking or
// buffering.
type Adapter struct {
	client    *asynq.Client
	probe     *redis.Client
	available atomic.Bool
}

// NewAdapter connects to the broker and starts the health monitor.
func NewAdapter() *Adapter {
	cfg := config.AppConfig
	a := &Adapter{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		}),
		probe: redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		}),
	}

	a.checkHealth()
	go a.monitor()
	return a
}

// Available reports whether the broker is currently reachable.
func (a *Adapter) Available() bool {
	return a.available.Load()
}

// Enqueue submits a task to the broker. It fails fast with ErrUnavailable
// when the broker is down.
func (a *Adapter) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	if !a.available.Load() {
		return ErrUnavailable
	}
	if _, err := a.client.EnqueueContext(ctx, task, opts...); err != nil {
		// A failed enqueue usually means the connection just dropped;
		// flip the flag so subsequent producers fall back immediately.
		a.available.Store(false)
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}
	return nil
}

// Close releases the broker connections.
func (a *Adapter) Close() error {
	if err := a.client.Close(); err != nil {
		return err
	}
	return a.probe.Close()
}

func (a *Adapter) checkHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthy := a.probe.Ping(ctx).Err() == nil
	was := a.available.Swap(healthy)
	if was != healthy {
		logger := utils.GetLogger()
		if healthy {
			logger.Info("queue: broker connection restored")
		} else {
			logger.Warn("queue: broker unreachable, producers will run jobs inline")
		}
	}
}

// monitor pings the broker periodically to detect failures at runtime.
func (a *Adapter) monitor() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		a.checkHealth()
	}
}
