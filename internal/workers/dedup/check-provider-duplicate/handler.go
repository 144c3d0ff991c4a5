package checkproviderduplicate

import (
	"context"
	"strconv"

	"provider-matching-workers/internal/common/camunda"
	"provider-matching-workers/internal/common/errors"
	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/common/metrics"
	"provider-matching-workers/internal/common/observability"
	"provider-matching-workers/internal/dedup"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "check-provider-duplicate"

type Handler struct {
	config    *Config
	engine    *dedup.Engine
	responder *camunda.Responder
	logger    logger.Logger
}

func NewHandler(config *Config, engine *dedup.Engine, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		engine:    engine,
		responder: camunda.NewResponder(TaskType, obs, log),
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

// Execute checks the candidate against every stored provider.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	check, err := h.engine.CheckForDuplicates(ctx, input.Candidate)
	if err != nil {
		return nil, errors.NewProviderStoreUnavailableError("check duplicates", err)
	}

	metrics.DuplicateChecks.WithLabelValues(strconv.FormatBool(check.IsDuplicate)).Inc()
	return &check, nil
}
