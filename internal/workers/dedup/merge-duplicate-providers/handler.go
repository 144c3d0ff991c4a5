// internal/workers/dedup/merge-duplicate-providers/handler.go
package mergeduplicateproviders

import (
	"context"
	stderrors "errors"

	"provider-matching-workers/internal/common/camunda"
	"provider-matching-workers/internal/common/errors"
	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/common/metrics"
	"provider-matching-workers/internal/common/observability"
	"provider-matching-workers/internal/dedup"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "merge-duplicate-providers"

type Handler struct {
	config      *Config
	coordinator *dedup.Coordinator
	obs         *observability.Observability
	responder   *camunda.Responder
	logger      logger.Logger
}

func NewHandler(config *Config, coordinator *dedup.Coordinator, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		coordinator: coordinator,
		obs:         obs,
		responder:   camunda.NewResponder(TaskType, obs, log),
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := camunda.DecodeVariables(job, h.config.InputSchema, &input); err != nil {
		h.responder.Fail(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.responder.Fail(client, job, err)
		return
	}

	h.responder.Complete(client, job, output)
}

// Execute merges the duplicates into the primary. A merge that saved the
// primary completes the job even when cleanup steps reported errors; those
// are returned in the result.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.PrimaryID == "" {
		return nil, errors.NewInvalidJobInputError("primaryId is required")
	}

	result, err := h.coordinator.Merge(ctx, input.PrimaryID, input.DuplicateIDs)
	if stderrors.Is(err, dedup.ErrPassInProgress) {
		return nil, errors.NewDedupPassInProgressError(err)
	}
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	if !result.Success {
		if dedup.PrimaryMissing(result) {
			return nil, errors.NewProviderNotFoundError(input.PrimaryID)
		}
		return nil, errors.NewMergeWritebackFailedError(input.PrimaryID, result.Errors)
	}

	metrics.DuplicatesMerged.Add(float64(len(result.RemovedIDs)))
	h.obs.RecordMerged(ctx, "job", len(result.RemovedIDs))

	if len(result.Errors) > 0 {
		h.logger.Warn("merge completed with errors", map[string]interface{}{
			"primaryId": result.SurvivingID,
			"errors":    result.Errors,
		})
	}
	return &result, nil
}
