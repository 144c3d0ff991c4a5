// internal/workers/matching/match-providers/handler.go
package matchproviders

import (
	"context"
	"fmt"

	"provider-matching-workers/internal/common/camunda"
	"provider-matching-workers/internal/common/errors"
	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/common/metrics"
	"provider-matching-workers/internal/common/observability"
	"provider-matching-workers/internal/matching"
	"provider-matching-workers/internal/storage"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "match-providers"

type Handler struct {
	config     *Config
	engine     *matching.Engine
	candidates storage.CandidateSource
	responder  *camunda.Responder
	logger     logger.Logger
}

func NewHandler(config *Config, engine *matching.Engine, candidates storage.CandidateSource, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		engine:     engine,
		candidates: candidates,
		responder:  camunda.NewResponder(TaskType, obs, log),
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

// Execute ranks the candidates against the requirements.
func (h *Handler) Execute(ctx context.Context, input *Input) (output *Output, err error) {
	candidates := input.Candidates
	if len(candidates) == 0 {
		country := input.Requirements.Location.Country
		candidates, err = h.candidates.ListProvidersByCountry(ctx, country)
		if err != nil {
			return nil, errors.NewProviderStoreUnavailableError("list candidates", err)
		}
		h.logger.Debug("candidates loaded", map[string]interface{}{
			"country": country,
			"count":   len(candidates),
		})
	}

	defer func() {
		if r := recover(); r != nil {
			output, err = nil, errors.NewMatchingFailedError(fmt.Errorf("scoring panicked: %v", r))
		}
	}()

	matches := h.engine.Match(input.Requirements, candidates, input.MaxResults)
	metrics.MatchCandidatesScored.Add(float64(len(candidates)))
	metrics.MatchResultsReturned.Observe(float64(len(matches)))

	explanations := make([]string, 0, len(matches))
	for _, m := range matches {
		explanations = append(explanations, matching.ExplainRecommendation(m))
	}

	return &Output{
		Matches:        matches,
		Explanations:   explanations,
		CandidateCount: len(candidates),
	}, nil
}
