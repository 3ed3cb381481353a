package queue

import (
	job "github.com/tokenpulse/community-api/internal/jobs"
)

const TaskTypeCurationCycle = "curation:cycle"

// Queue executes background tasks. The curation cycle is the only task type;
// the asynq server runs it with concurrency 1 so cycles never overlap.
type Queue struct {
	cj *job.CurationJob
}

func NewQueue(cj *job.CurationJob) *Queue {
	return &Queue{cj: cj}
}
