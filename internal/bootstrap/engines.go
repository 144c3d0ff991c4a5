package bootstrap

import (
	"fmt"
	"time"

	"provider-matching-workers/internal/common/config"
	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/dedup"
	"provider-matching-workers/internal/matching"
	"provider-matching-workers/internal/storage"
)

// MatchingConfig overlays configured tunables on the engine defaults. Zero
// values keep the default; weights are replaced as a set.
func MatchingConfig(cfg config.MatchingConfig) (matching.Config, error) {
	out := matching.DefaultConfig()

	if cfg.Weights.IsSet() {
		w := cfg.Weights
		out.Weights = matching.Weights{
			Location:  w.Location,
			Services:  w.Services,
			Industry:  w.Industry,
			Budget:    w.Budget,
			Timeline:  w.Timeline,
			Quality:   w.Quality,
			StandType: w.StandType,
		}
	}
	if cfg.MinScore != 0 {
		out.MinScore = cfg.MinScore
	}
	if cfg.DefaultMaxResults != 0 {
		out.DefaultMaxResults = cfg.DefaultMaxResults
	}
	if cfg.DefaultProjectMinimum != 0 {
		out.DefaultProjectMinimum = cfg.DefaultProjectMinimum
	}
	for size, multiplier := range cfg.SizeMultipliers {
		out.SizeMultipliers[size] = multiplier
	}

	if err := out.Validate(); err != nil {
		return matching.Config{}, fmt.Errorf("matching config: %w", err)
	}
	return out, nil
}

// DedupConfig overlays configured thresholds and signal points on the engine
// defaults.
func DedupConfig(cfg config.DedupConfig) (dedup.Config, error) {
	out := dedup.DefaultConfig()

	if cfg.Threshold != 0 {
		out.Threshold = cfg.Threshold
	}
	if cfg.FuzzyNameThreshold != 0 {
		out.FuzzyNameThreshold = cfg.FuzzyNameThreshold
	}
	if cfg.AddressThreshold != 0 {
		out.AddressThreshold = cfg.AddressThreshold
	}
	if err := out.ApplyPointOverrides(cfg.Points); err != nil {
		return dedup.Config{}, fmt.Errorf("dedup config: %w", err)
	}

	if err := out.Validate(); err != nil {
		return dedup.Config{}, fmt.Errorf("dedup config: %w", err)
	}
	return out, nil
}

// Engines bundles the two engines and the coordinator every dedup entry point
// shares.
type Engines struct {
	Matching    *matching.Engine
	Dedup       *dedup.Engine
	Coordinator *dedup.Coordinator
}

func NewEngines(cfg *config.Config, store storage.Store, log logger.Logger) (*Engines, error) {
	mcfg, err := MatchingConfig(cfg.Matching)
	if err != nil {
		return nil, err
	}
	matcher, err := matching.NewEngine(mcfg, log)
	if err != nil {
		return nil, err
	}

	dcfg, err := DedupConfig(cfg.Dedup)
	if err != nil {
		return nil, err
	}
	deduper, err := dedup.NewEngine(dcfg, store, log)
	if err != nil {
		return nil, err
	}

	return &Engines{
		Matching:    matcher,
		Dedup:       deduper,
		Coordinator: dedup.NewCoordinator(deduper),
	}, nil
}

// CandidateTTL converts the configured cache TTL in seconds.
func CandidateTTL(cfg config.CacheConfig) time.Duration {
	return time.Duration(cfg.CandidateTTL) * time.Second
}
