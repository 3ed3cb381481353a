package queue

import (
	"context"

	"github.com/hibiken/asynq"
)

// HandleCurationCycleTask runs one cycle. Cycle errors are already logged
// and swallowed inside the job; returning nil keeps asynq from retrying a
// failed cycle, since waiting for the next scheduled firing is the accepted
// recovery path.
func (q *Queue) HandleCurationCycleTask(ctx context.Context, task *asynq.Task) error {
	q.cj.RunScheduled()
	return nil
}
