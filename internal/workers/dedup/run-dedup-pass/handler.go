package rundeduppass

import (
	"context"
	stderrors "errors"
	"time"

	"provider-matching-workers/internal/common/camunda"
	"provider-matching-workers/internal/common/errors"
	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/common/metrics"
	"provider-matching-workers/internal/common/observability"
	"provider-matching-workers/internal/dedup"
	"provider-matching-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "run-dedup-pass"
	trigger  = "job"
)

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

	var input struct{}
	if err := camunda.DecodeVariables(job, h.config.InputSchema, &input); err != nil {
		h.responder.Fail(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	report, err := h.Execute(ctx)
	if err != nil {
		h.responder.Fail(client, job, err)
		return
	}

	h.responder.Complete(client, job, report)
}

// Execute runs one full pass. Group-level failures are reported in the
// result; only a pass that could not start fails.
func (h *Handler) Execute(ctx context.Context) (*models.PassReport, error) {
	start := time.Now()

	report, err := h.coordinator.RunPass(ctx)
	switch {
	case stderrors.Is(err, dedup.ErrPassInProgress):
		metrics.ObserveDedupPass(trigger, metrics.PassSkipped, 0)
		return nil, errors.NewDedupPassInProgressError(err)
	case err != nil:
		metrics.ObserveDedupPass(trigger, metrics.PassFailed, time.Since(start))
		return nil, errors.NewProviderStoreUnavailableError("list providers", err)
	}

	metrics.ObserveDedupPass(trigger, metrics.PassOutcome(report.Errors), time.Since(start))
	removed := 0
	for _, m := range report.Merges {
		removed += len(m.RemovedIDs)
	}
	metrics.DuplicatesMerged.Add(float64(removed))
	h.obs.RecordMerged(ctx, trigger, removed)

	return &report, nil
}
