package services

import (
	"github.com/hibiken/asynq"

	"github.com/huddlehq/huddle/backend/pkg/logger"
)

// Worker drains the Redis task queue in-process. Started alongside the
// HTTP server when Redis is configured.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewWorker(redisAddr, redisPassword string, redisDB int, email *EmailService) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(TaskTypeEmail, HandleEmailTask(email))

	return &Worker{server: server, mux: mux}
}

// Start runs the worker loop in a goroutine.
func (w *Worker) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	logger.Info().Msg("Task worker started")
	return nil
}

// Shutdown waits for in-flight tasks to finish.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}
