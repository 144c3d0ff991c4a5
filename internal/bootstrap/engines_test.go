package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provider-matching-workers/internal/common/config"
	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/matching"
	"provider-matching-workers/internal/storage"
)

func TestMatchingConfig_ZeroKeepsDefaults(t *testing.T) {
	got, err := MatchingConfig(config.MatchingConfig{})
	require.NoError(t, err)
	assert.Equal(t, matching.DefaultConfig(), got)
}

func TestMatchingConfig_Overrides(t *testing.T) {
	got, err := MatchingConfig(config.MatchingConfig{
		Weights:           config.MatchingWeights{Location: 1},
		MinScore:          0.5,
		DefaultMaxResults: 3,
		SizeMultipliers:   map[string]float64{"12x12": 4},
	})
	require.NoError(t, err)

	assert.Equal(t, matching.Weights{Location: 1}, got.Weights)
	assert.Equal(t, 0.5, got.MinScore)
	assert.Equal(t, 3, got.DefaultMaxResults)
	assert.Equal(t, 4.0, got.SizeMultipliers["12x12"])
	assert.Equal(t, 1.0, got.SizeMultipliers["3x3"])
	assert.Equal(t, 5000.0, got.DefaultProjectMinimum)
}

func TestMatchingConfig_Invalid(t *testing.T) {
	_, err := MatchingConfig(config.MatchingConfig{MinScore: 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matching config")
}

func TestDedupConfig(t *testing.T) {
	got, err := DedupConfig(config.DedupConfig{
		Threshold: 100,
		Points:    map[string]int{"Phone": 90},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, got.Threshold)
	assert.Equal(t, 90, got.Points.Phone)
	assert.Equal(t, 0.8, got.FuzzyNameThreshold)

	_, err = DedupConfig(config.DedupConfig{Points: map[string]int{"fax": 10}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fax")

	_, err = DedupConfig(config.DedupConfig{AddressThreshold: 2})
	require.Error(t, err)
}

func TestNewEngines(t *testing.T) {
	engines, err := NewEngines(&config.Config{}, storage.NewMemoryStore(), logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.NotNil(t, engines.Matching)
	assert.Same(t, engines.Dedup, engines.Coordinator.Engine())

	_, err = NewEngines(&config.Config{Dedup: config.DedupConfig{Points: map[string]int{"fax": 1}}},
		storage.NewMemoryStore(), logger.NewTestLogger(t))
	require.Error(t, err)
}

func TestRetryWithBackoff(t *testing.T) {
	log := logger.NewTestLogger(t)

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		}, 5, time.Millisecond, log, "op")
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			return errors.New("down")
		}, 3, time.Millisecond, log, "op")
		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Contains(t, err.Error(), "op failed after 3 attempts: down")
	})

	t.Run("stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RetryWithBackoff(ctx, func() error { return errors.New("down") }, 5, time.Hour, log, "op")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
