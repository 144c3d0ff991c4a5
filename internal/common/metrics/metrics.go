// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	MatchCandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Providers scored against project requirements",
		},
	)

	MatchResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_results_returned",
			Help:    "Matches returned per request after filtering and truncation",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	CandidateCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_cache_lookups_total",
			Help: "Candidate cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	DuplicateChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_checks_total",
			Help: "Duplicate checks by verdict",
		},
		[]string{"duplicate"},
	)

	DedupPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_passes_total",
			Help: "Deduplication passes by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)

	DedupPassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dedup_pass_duration_seconds",
			Help:    "Duration of full deduplication passes",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"trigger"},
	)

	DuplicatesMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_providers_merged_total",
			Help: "Duplicate provider records removed by merges",
		},
	)
)

// Dedup pass outcomes.
const (
	PassCompleted           = "completed"
	PassCompletedWithErrors = "completed_with_errors"
	PassFailed              = "failed"
	PassSkipped             = "skipped"
)

// ObserveDedupPass records one pass attempt. Skipped passes never ran, so
// their duration is not observed.
func ObserveDedupPass(trigger, outcome string, elapsed time.Duration) {
	DedupPasses.WithLabelValues(trigger, outcome).Inc()
	if outcome != PassSkipped {
		DedupPassDuration.WithLabelValues(trigger).Observe(elapsed.Seconds())
	}
}

// PassOutcome classifies a finished pass by its error list.
func PassOutcome(errs []string) string {
	if len(errs) > 0 {
		return PassCompletedWithErrors
	}
	return PassCompleted
}
