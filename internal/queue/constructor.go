package queue

import (
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// EnqueueCycle schedules one curation cycle. The unique window makes a
// firing that lands while a cycle is already queued or running a no-op, so
// overlapping firings are skipped rather than stacked.
func EnqueueCycle(asynqClient *asynq.Client, uniqueWindow time.Duration) error {
	task := asynq.NewTask(TaskTypeCurationCycle, nil)

	_, err := asynqClient.Enqueue(task, asynq.Unique(uniqueWindow))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		slog.Info("curation cycle already pending, skipping enqueue")
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("curation cycle enqueued")
	return nil
}
