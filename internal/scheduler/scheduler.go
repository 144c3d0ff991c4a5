// Package scheduler runs the deduplication pass on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/common/metrics"
	"provider-matching-workers/internal/common/observability"
	"provider-matching-workers/internal/dedup"
	"provider-matching-workers/internal/models"

	"github.com/robfig/cron/v3"
)

const trigger = "cron"

// PassRunner is satisfied by *dedup.Coordinator.
type PassRunner interface {
	RunPass(ctx context.Context) (models.PassReport, error)
}

type Scheduler struct {
	cron    *cron.Cron
	runner  PassRunner
	timeout time.Duration
	obs     *observability.Observability
	logger  logger.Logger
}

// New builds a scheduler evaluating standard five-field cron specs in UTC.
// Each scheduled pass is bounded by timeout.
func New(runner PassRunner, timeout time.Duration, obs *observability.Observability, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		runner:  runner,
		timeout: timeout,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"component": "dedup-scheduler"}),
	}
}

// Schedule registers the pass under a standard five-field cron expression.
func (s *Scheduler) Schedule(expr string) error {
	_, err := s.cron.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_, _ = s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid dedup schedule %q: %w", expr, err)
	}
	s.logger.Info("dedup pass scheduled", map[string]interface{}{"schedule": expr})
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for a running pass until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out with a pass still running", nil)
	}
}

// RunOnce runs one instrumented pass. A pass rejected because another one
// holds the coordinator is logged and skipped.
func (s *Scheduler) RunOnce(ctx context.Context) (models.PassReport, error) {
	start := time.Now()
	report, err := s.runner.RunPass(ctx)

	switch {
	case errors.Is(err, dedup.ErrPassInProgress):
		metrics.ObserveDedupPass(trigger, metrics.PassSkipped, 0)
		s.logger.Info("scheduled dedup pass skipped, another pass is running", nil)
		return report, err
	case err != nil:
		metrics.ObserveDedupPass(trigger, metrics.PassFailed, time.Since(start))
		s.logger.Error("scheduled dedup pass failed", map[string]interface{}{"error": err})
		return report, err
	}

	outcome := metrics.PassOutcome(report.Errors)
	metrics.ObserveDedupPass(trigger, outcome, time.Since(start))

	removed := 0
	for _, m := range report.Merges {
		removed += len(m.RemovedIDs)
	}
	metrics.DuplicatesMerged.Add(float64(removed))
	s.obs.RecordMerged(ctx, trigger, removed)

	s.logger.Info("scheduled dedup pass finished", map[string]interface{}{
		"passId":          report.PassID,
		"outcome":         outcome,
		"duplicatesFound": report.DuplicatesFound,
		"mergesCompleted": report.MergesCompleted,
		"errors":          len(report.Errors),
		"duration":        time.Since(start).String(),
	})
	return report, nil
}
