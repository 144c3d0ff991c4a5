// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/common/metrics"
	"provider-matching-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every worker package's Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

type WorkerOptions struct {
	MaxJobsActive int
	Concurrency   int
	Timeout       time.Duration
}

type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. Each job is counted in the
// active gauge and timed into both metric pipelines.
func NewWorker(client zbc.Client, taskType string, opts WorkerOptions, handler JobHandler, obs *observability.Observability, log logger.Logger) *Worker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	step := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler.Handle, obs))
	if opts.MaxJobsActive > 0 {
		step = step.MaxJobsActive(opts.MaxJobsActive)
	}
	if opts.Concurrency > 0 {
		step = step.Concurrency(opts.Concurrency)
	}
	if opts.Timeout > 0 {
		step = step.Timeout(opts.Timeout)
	}

	w := &Worker{
		worker:   step.Open(),
		logger:   log,
		taskType: taskType,
	}
	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": opts.MaxJobsActive,
		"concurrency":   opts.Concurrency,
	})
	return w
}

// Instrument wraps a job handler with the active gauge and duration metrics.
func Instrument(taskType string, handle worker.JobHandler, obs *observability.Observability) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer func() {
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			elapsed := time.Since(start)
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			obs.RecordJobDuration(context.Background(), taskType, elapsed)
		}()
		handle(client, job)
	}
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
