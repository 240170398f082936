package api

import (
	"context"
	"time"

	"go.uber.org/zap"

	"jd-match/internal/workspace"
)

// TaskKind selects which workflow phase a queued task runs.
type TaskKind string

const (
	TaskExtract TaskKind = "extract"
	TaskRank    TaskKind = "rank"
)

// rankTask represents one queued background run against a job.
type rankTask struct {
	JobID     string
	Kind      TaskKind
	Timestamp time.Time
}

// StartBackgroundWorker initializes the background task worker
func (a *API) StartBackgroundWorker() {
	go a.taskWorker()
	a.log.Info("background worker started")
}

// taskWorker processes extraction and ranking tasks from the queue. Runs
// are serialized; a task queued behind a re-activation of the same job
// simply observes a stale epoch and commits nothing.
func (a *API) taskWorker() {
	for task := range a.taskQueue {
		ctx := context.Background()
		start := time.Now()

		var err error
		switch task.Kind {
		case TaskExtract:
			err = a.runner.RunExtraction(ctx, task.JobID)
		case TaskRank:
			err = a.runner.RunMatchAndRank(ctx, task.JobID)
		}
		if err != nil {
			a.log.Error("background run failed",
				zap.String("job", task.JobID),
				zap.String("kind", string(task.Kind)),
				zap.Error(err))
		}

		// Persist whatever status and requirements the run left behind.
		if job, ok := a.store.JobInfo(task.JobID); ok {
			if saveErr := a.db.SaveJob(ctx, &job); saveErr != nil {
				a.log.Error("failed to persist job state",
					zap.String("job", task.JobID),
					zap.Error(saveErr))
			}
		}

		a.log.Info("background run finished",
			zap.String("job", task.JobID),
			zap.String("kind", string(task.Kind)),
			zap.Duration("took", time.Since(start)))
	}
}

// queueTask adds a run to the background queue. Non-blocking: a full queue
// marks the job errored instead of stalling the request.
func (a *API) queueTask(jobID string, kind TaskKind) bool {
	task := rankTask{
		JobID:     jobID,
		Kind:      kind,
		Timestamp: time.Now(),
	}

	select {
	case a.taskQueue <- task:
		a.log.Info("queued background run",
			zap.String("job", jobID),
			zap.String("kind", string(kind)))
		return true
	default:
		a.log.Warn("task queue full, dropping run",
			zap.String("job", jobID),
			zap.String("kind", string(kind)))
		_ = a.store.TransitionJob(jobID, workspace.StatusError)
		return false
	}
}
