package services

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/huddlehq/huddle/backend/pkg/logger"
)

// Task type names registered with the queue.
const (
	TaskTypeEmail = "email:send"
)

// EmailTask is the payload for a queued outbound email.
type EmailTask struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	HTML    bool   `json:"html"`
}

// TaskQueue abstracts task dispatch so services do not care whether a
// Redis-backed worker pool or an in-process fallback handles delivery.
type TaskQueue interface {
	EnqueueEmail(task EmailTask) error
	Close() error
}

// AsyncQueue dispatches tasks to Redis via asynq. A separate worker
// process (or goroutine) drains the queue.
type AsyncQueue struct {
	client *asynq.Client
}

func NewAsyncQueue(redisAddr, redisPassword string, redisDB int) *AsyncQueue {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	return &AsyncQueue{client: client}
}

func (q *AsyncQueue) EnqueueEmail(task EmailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	info, err := q.client.Enqueue(
		asynq.NewTask(TaskTypeEmail, payload),
		asynq.MaxRetry(3),
		asynq.Queue("default"),
	)
	if err != nil {
		return err
	}
	logger.Debug().Str("task_id", info.ID).Str("to", task.To).Msg("Email task enqueued")
	return nil
}

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue delivers tasks inline. Used when Redis is not configured,
// and in tests.
type SyncQueue struct {
	email *EmailService
}

func NewSyncQueue(email *EmailService) *SyncQueue {
	return &SyncQueue{email: email}
}

func (q *SyncQueue) EnqueueEmail(task EmailTask) error {
	if err := q.email.Deliver(task); err != nil {
		logger.Error().Err(err).Str("to", task.To).Msg("Inline email delivery failed")
		return err
	}
	return nil
}

func (q *SyncQueue) Close() error { return nil }

// HandleEmailTask is the asynq handler for TaskTypeEmail.
func HandleEmailTask(email *EmailService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var task EmailTask
		if err := json.Unmarshal(t.Payload(), &task); err != nil {
			return err
		}
		return email.Deliver(task)
	}
}
