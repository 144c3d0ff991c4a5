// internal/workers/matching/match-providers/handler_test.go
package matchproviders

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"provider-matching-workers/internal/common/errors"
	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/matching"
	"provider-matching-workers/internal/models"
	"provider-matching-workers/internal/storage"
	"provider-matching-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

var fixedNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type failingSource struct{ err error }

func (f failingSource) ListProvidersByCountry(ctx context.Context, country string) ([]models.ProviderProfile, error) {
	return nil, f.err
}

func newTestHandler(t *testing.T, source storage.CandidateSource) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	engine, err := matching.NewEngine(matching.DefaultConfig(), log,
		matching.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return NewHandler(LoadConfig(registry.Default()), engine, source, nil, log)
}

func daysFromNow(days int) models.Date {
	return models.NewDate(fixedNow.AddDate(0, 0, days))
}

func createRequirements() models.ProjectRequirements {
	return models.ProjectRequirements{
		Location:         models.RequirementLocation{Country: "Germany", City: "Berlin"},
		Budget:           models.Budget{Min: models.Float(8000), Max: models.Float(20000), Currency: "EUR"},
		Timeline:         models.Timeline{EventDate: daysFromNow(90)},
		StandSpec:        models.StandSpec{Size: "6x6", Type: "custom"},
		Industry:         "technology",
		RequiredServices: []string{"design", "construction"},
	}
}

func createProvider(id, city, country string) models.ProviderProfile {
	return models.ProviderProfile{
		ID:           id,
		Name:         "Stands " + city,
		Location:     models.Location{Country: country, City: city},
		Services:     []string{"Stand design", "Stand construction"},
		Industries:   []string{"Technology"},
		Portfolio:    models.Portfolio{StandTypes: []string{"custom"}},
		Ratings:      models.Ratings{Overall: 4.6},
		Pricing:      models.Pricing{ProjectMinimum: models.Float(10000), Currency: "EUR"},
		Availability: models.Availability{NextAvailable: daysFromNow(-1)},
	}
}

// ==========================
// Config Tests
// ==========================

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(registry.Default())
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.NotEmpty(t, cfg.InputSchema)

	empty := LoadConfig(&registry.ActivityRegistry{})
	assert.Equal(t, 30*time.Second, empty.Timeout)
	assert.Nil(t, empty.InputSchema)
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_WithCandidates(t *testing.T) {
	h := newTestHandler(t, failingSource{err: stderrors.New("must not be called")})

	output, err := h.Execute(context.Background(), &Input{
		Requirements: createRequirements(),
		Candidates: []models.ProviderProfile{
			createProvider("munich", "Munich", "Germany"),
			createProvider("berlin", "Berlin", "Germany"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, output.CandidateCount)
	require.Len(t, output.Matches, 2)
	assert.Equal(t, "berlin", output.Matches[0].ProviderID)
	assert.Equal(t, "munich", output.Matches[1].ProviderID)

	require.Len(t, output.Explanations, 2)
	assert.Contains(t, output.Explanations[0], "Stands Berlin is a high confidence match")
	assert.Contains(t, output.Explanations[0], "1. Local provider in Berlin\n")
}

func TestHandler_Execute_LoadsCandidatesByCountry(t *testing.T) {
	store := storage.NewMemoryStore()
	store.PutProvider(createProvider("berlin", "Berlin", "Germany"))
	store.PutProvider(createProvider("paris", "Paris", "France"))
	h := newTestHandler(t, store)

	output, err := h.Execute(context.Background(), &Input{
		Requirements: createRequirements(),
		MaxResults:   5,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, output.CandidateCount)
	require.Len(t, output.Matches, 1)
	assert.Equal(t, "berlin", output.Matches[0].ProviderID)
}

func TestHandler_Execute_MaxResults(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())

	output, err := h.Execute(context.Background(), &Input{
		Requirements: createRequirements(),
		Candidates: []models.ProviderProfile{
			createProvider("a", "Berlin", "Germany"),
			createProvider("b", "Berlin", "Germany"),
			createProvider("c", "Berlin", "Germany"),
		},
		MaxResults: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, output.CandidateCount)
	assert.Len(t, output.Matches, 2)
	assert.Len(t, output.Explanations, 2)
}

func TestHandler_Execute_NoCandidates(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())

	output, err := h.Execute(context.Background(), &Input{Requirements: createRequirements()})
	require.NoError(t, err)

	assert.Equal(t, 0, output.CandidateCount)
	assert.NotNil(t, output.Matches)
	assert.Empty(t, output.Matches)
	assert.NotNil(t, output.Explanations)
}

func TestHandler_Execute_SourceFailure(t *testing.T) {
	cause := stderrors.New("connection refused")
	h := newTestHandler(t, failingSource{err: cause})

	_, err := h.Execute(context.Background(), &Input{Requirements: createRequirements()})
	require.Error(t, err)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeProviderStoreUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "connection refused")
	assert.ErrorIs(t, err, cause)
}
