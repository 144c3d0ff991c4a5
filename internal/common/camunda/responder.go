// internal/common/camunda/responder.go
package camunda

import (
	"context"
	"time"

	"provider-matching-workers/internal/common/errors"
	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/common/metrics"
	"provider-matching-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Responder reports job outcomes back to the broker for one task type and
// records them in the job counters. Sends use their own deadline so a job
// whose work timed out can still be failed.
type Responder struct {
	taskType       string
	errors         *errors.ErrorHandler
	obs            *observability.Observability
	retry          *RetryConfig
	requestTimeout time.Duration
	logger         logger.Logger
}

func NewResponder(taskType string, obs *observability.Observability, log logger.Logger) *Responder {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})
	return &Responder{
		taskType:       taskType,
		errors:         errors.NewErrorHandler(log),
		obs:            obs,
		retry:          &RetryConfig{MaxRetries: 2, BaseDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second},
		requestTimeout: 10 * time.Second,
		logger:         log,
	}
}

// Complete sends output as the job's result variables.
func (r *Responder) Complete(client worker.JobClient, job entities.Job, output interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), r.requestTimeout)
	defer cancel()

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		r.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		r.Fail(client, job, errors.NewInternalError(err))
		return
	}

	err = ExecuteWithRetry(ctx, r.retry, "complete-job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
	if err != nil {
		r.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(r.taskType).Inc()
	r.obs.RecordJobProcessed(ctx, r.taskType, "completed")
	r.logger.Info("job completed", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})
}

// Fail hands err to the error handler, which retries or throws a BPMN error
// depending on the error code.
func (r *Responder) Fail(client worker.JobClient, job entities.Job, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.requestTimeout)
	defer cancel()

	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(r.taskType, string(stdErr.Code)).Inc()
	r.obs.RecordJobProcessed(ctx, r.taskType, "failed")
	r.errors.HandleJobError(ctx, client, job, stdErr)
}
