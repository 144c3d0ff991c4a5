package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/models"
	"provider-matching-workers/internal/storage"
)

// ==========================
// Test Helpers
// ==========================

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, store storage.Store) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), store, logger.NewTestLogger(t),
		WithClock(func() time.Time { return fixedNow }),
		WithPassIDs(func() string { return "pass-1" }),
	)
	require.NoError(t, err)
	return e
}

func provider(id, name string) models.ProviderProfile {
	return models.ProviderProfile{ID: id, Name: name}
}

func seed(store *storage.MemoryStore, providers ...models.ProviderProfile) {
	for _, p := range providers {
		store.PutProvider(p)
	}
}

// ==========================
// Compare
// ==========================

func TestEngine_Compare(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStore())

	tests := []struct {
		name           string
		candidate      models.ProviderProfile
		existing       models.ProviderProfile
		wantDuplicate  bool
		wantConfidence int
		wantReason     string
	}{
		{
			name:           "normalised name and phone",
			candidate:      models.ProviderProfile{ID: "new", Name: "Expo Design GmbH", Phone: "+49 30 1234567"},
			existing:       models.ProviderProfile{ID: "old", Name: "EXPO DESIGN GMBH", Phone: "+49-30-123 4567"},
			wantDuplicate:  true,
			wantConfidence: 130,
			wantReason:     "Company name match, Phone match",
		},
		{
			name:           "website only",
			candidate:      models.ProviderProfile{ID: "new", Name: "Alpha Stands", Website: "https://www.alpha.de/"},
			existing:       models.ProviderProfile{ID: "old", Name: "Omega Booths", Website: "alpha.de"},
			wantDuplicate:  false,
			wantConfidence: 70,
			wantReason:     "Website match",
		},
		{
			name:           "gmb place id alone",
			candidate:      models.ProviderProfile{ID: "new", Name: "Alpha Stands", GMBPlaceID: "ChIJ123"},
			existing:       models.ProviderProfile{ID: "old", Name: "Omega Booths", GMBPlaceID: "ChIJ123"},
			wantDuplicate:  true,
			wantConfidence: 90,
			wantReason:     "GMB Place ID match",
		},
		{
			name:           "email ignores case",
			candidate:      models.ProviderProfile{ID: "new", Name: "Alpha Stands", Email: "Info@Alpha.de"},
			existing:       models.ProviderProfile{ID: "old", Name: "Omega Booths", Email: "info@alpha.de"},
			wantDuplicate:  true,
			wantConfidence: 80,
			wantReason:     "Email match",
		},
		{
			name:           "registration number alone",
			candidate:      models.ProviderProfile{ID: "new", Name: "Alpha Stands", RegistrationNumber: "HRB 1234"},
			existing:       models.ProviderProfile{ID: "old", Name: "Omega Booths", RegistrationNumber: "HRB 1234"},
			wantDuplicate:  true,
			wantConfidence: 85,
			wantReason:     "Registration number match",
		},
		{
			name:           "similar name and address stay below threshold",
			candidate:      models.ProviderProfile{ID: "new", Name: "Expo Design GmbH", Location: models.Location{Address: "Messedamm 22", City: "Berlin", Country: "Germany"}},
			existing:       models.ProviderProfile{ID: "old", Name: "Expo Designs GmbH", Location: models.Location{Address: "Messedamm 22", City: "Berlin", Country: "Germany"}},
			wantDuplicate:  false,
			wantConfidence: 70,
			wantReason:     "Similar company name, Address similarity",
		},
		{
			name:           "missing values never match",
			candidate:      models.ProviderProfile{ID: "new", Name: "", Phone: "n/a"},
			existing:       models.ProviderProfile{ID: "old", Name: "", Phone: "unknown"},
			wantDuplicate:  false,
			wantConfidence: 0,
			wantReason:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := e.Compare(tt.candidate, tt.existing)

			assert.Equal(t, tt.wantDuplicate, check.IsDuplicate)
			assert.Equal(t, tt.wantConfidence, check.Confidence)
			assert.Equal(t, tt.wantReason, check.MatchReason)
			if tt.wantDuplicate {
				assert.Equal(t, tt.existing.ID, check.ExistingProviderID)
			} else {
				assert.Empty(t, check.ExistingProviderID)
			}
		})
	}
}

func TestEngine_Compare_ThresholdIsInclusive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Points.Address = 15
	e, err := NewEngine(cfg, storage.NewMemoryStore(), logger.NewNoOpLogger())
	require.NoError(t, err)

	loc := models.Location{Address: "Messedamm 22", City: "Berlin", Country: "Germany"}
	check := e.Compare(
		models.ProviderProfile{ID: "a", Name: "Expo Design", Location: loc},
		models.ProviderProfile{ID: "b", Name: "expo design", Location: loc},
	)

	assert.Equal(t, 75, check.Confidence)
	assert.True(t, check.IsDuplicate)
}

// Compare reports the second argument's id, so the same pair compared in the
// other order names the other record.
func TestEngine_Compare_ReportsExistingSide(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStore())
	a := models.ProviderProfile{ID: "a", Name: "Alpha Stands", Email: "info@alpha.de"}
	b := models.ProviderProfile{ID: "b", Name: "Alpha Stands Ltd", Email: "info@alpha.de"}

	ab := e.Compare(a, b)
	ba := e.Compare(b, a)

	assert.Equal(t, "b", ab.ExistingProviderID)
	assert.Equal(t, "a", ba.ExistingProviderID)
	assert.Equal(t, ab.Confidence, ba.Confidence)
}

// ==========================
// CheckForDuplicates
// ==========================

func TestEngine_CheckForDuplicates(t *testing.T) {
	store := storage.NewMemoryStore()
	seed(store,
		models.ProviderProfile{ID: "p1", Name: "Omega Booths", Email: "sales@omega.com"},
		models.ProviderProfile{ID: "p2", Name: "Alpha Stands", Email: "info@alpha.de"},
		models.ProviderProfile{ID: "p3", Name: "Alpha Stands", Phone: "+49 30 555", Email: "info@alpha.de"},
	)
	e := newTestEngine(t, store)

	check, err := e.CheckForDuplicates(context.Background(), models.ProviderProfile{Name: "Alpha Stands", Phone: "0049 30 555", Email: "INFO@alpha.de"})
	require.NoError(t, err)
	assert.True(t, check.IsDuplicate)
	assert.Equal(t, "p2", check.ExistingProviderID, "first duplicate in store order wins")
	assert.Equal(t, 140, check.Confidence)

	check, err = e.CheckForDuplicates(context.Background(), models.ProviderProfile{Name: "Brand New Builders"})
	require.NoError(t, err)
	assert.False(t, check.IsDuplicate)
	assert.Empty(t, check.ExistingProviderID)
	assert.Zero(t, check.Confidence)
}

func TestEngine_CheckForDuplicates_SkipsOwnRecord(t *testing.T) {
	store := storage.NewMemoryStore()
	p := models.ProviderProfile{ID: "p1", Name: "Alpha Stands", Email: "info@alpha.de"}
	seed(store, p)
	e := newTestEngine(t, store)

	check, err := e.CheckForDuplicates(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, check.IsDuplicate)
}

func TestEngine_CheckForDuplicates_StoreError(t *testing.T) {
	store := storage.NewMemoryStore()
	store.FailOn(storage.OpListProviders, "", errors.New("connection reset"))
	e := newTestEngine(t, store)

	_, err := e.CheckForDuplicates(context.Background(), provider("x", "Alpha"))
	assert.Error(t, err)
}

// ==========================
// Grouping
// ==========================

func TestEngine_FindDuplicateGroups(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStore())

	providers := []models.ProviderProfile{
		{ID: "a", Name: "Alpha Stands", Email: "info@alpha.de", Website: "https://alpha.de"},
		{ID: "x", Name: "Xylo Expo"},
		{ID: "b", Name: "Alpha Stands GmbH", Email: "info@alpha.de", Phone: "+49 1"},
		{ID: "c", Name: "Gamma", Phone: "+49 1"},
		{ID: "d", Name: "alpha stands", Website: "alpha.de"},
	}

	groups := e.FindDuplicateGroups(providers)

	// c shares only a phone with b, which stays below the threshold
	require.Len(t, groups, 1)
	assert.Equal(t, "a", groups[0].PrimaryID)
	assert.Equal(t, []string{"b", "d"}, groups[0].DuplicateIDs)
}

func TestEngine_FindDuplicateGroups_Disjoint(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStore())

	providers := []models.ProviderProfile{
		{ID: "a1", Name: "Alpha", GMBPlaceID: "g-a"},
		{ID: "b1", Name: "Beta", GMBPlaceID: "g-b"},
		{ID: "a2", Name: "Alpha Two", GMBPlaceID: "g-a"},
		{ID: "b2", Name: "Beta Two", GMBPlaceID: "g-b"},
		{ID: "a3", Name: "Alpha Three", GMBPlaceID: "g-a"},
	}

	groups := e.FindDuplicateGroups(providers)

	require.Len(t, groups, 2)
	assert.Equal(t, models.DuplicateGroup{PrimaryID: "a1", DuplicateIDs: []string{"a2", "a3"}}, groups[0])
	assert.Equal(t, models.DuplicateGroup{PrimaryID: "b1", DuplicateIDs: []string{"b2"}}, groups[1])

	seen := map[string]bool{}
	for _, g := range groups {
		for _, id := range append([]string{g.PrimaryID}, g.DuplicateIDs...) {
			assert.False(t, seen[id], "provider %s appears in two groups", id)
			seen[id] = true
		}
	}
}

func TestEngine_FindDuplicateGroups_Chained(t *testing.T) {
	berlin := models.Location{Country: "Germany", City: "Berlin", Address: "Messedamm 22"}

	tests := []struct {
		name      string
		providers []models.ProviderProfile
		want      []models.DuplicateGroup
	}{
		{
			name: "duplicate of a member",
			providers: []models.ProviderProfile{
				{ID: "a", Name: "Xenon Displays", Phone: "+49 30 111"},
				{ID: "b", Name: "Xenon Displays", Phone: "+49 30 111", Email: "hello@xenon.de"},
				{ID: "c", Name: "Yotta Booths", Email: "hello@xenon.de"},
			},
			want: []models.DuplicateGroup{{PrimaryID: "a", DuplicateIDs: []string{"b", "c"}}},
		},
		{
			name: "member found before its link",
			providers: []models.ProviderProfile{
				{ID: "a", Name: "Xenon Displays", Phone: "+49 30 111"},
				{ID: "c", Name: "Yotta Booths", Email: "hello@xenon.de"},
				{ID: "b", Name: "Xenon Displays", Phone: "+49 30 111", Email: "hello@xenon.de"},
			},
			want: []models.DuplicateGroup{{PrimaryID: "a", DuplicateIDs: []string{"c", "b"}}},
		},
		{
			name: "duplicate of the merged view only",
			providers: []models.ProviderProfile{
				{ID: "a", Name: "Xenon Displays", Location: berlin, GMBPlaceID: "g-x"},
				{ID: "b", Name: "Xenon Stands", Phone: "+49 30 111", GMBPlaceID: "g-x"},
				{ID: "x", Name: "Zeta Events", Location: berlin, Phone: "+49 30 111"},
			},
			want: []models.DuplicateGroup{{PrimaryID: "a", DuplicateIDs: []string{"b", "x"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, storage.NewMemoryStore())
			assert.Equal(t, tt.want, e.FindDuplicateGroups(tt.providers))
		})
	}
}

// ==========================
// Full pass
// ==========================

func TestEngine_FindAndMergeAllDuplicates_ChainedIsIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	seed(store,
		models.ProviderProfile{ID: "a", Name: "Xenon Displays", Phone: "+49 30 111"},
		models.ProviderProfile{ID: "b", Name: "Xenon Displays", Phone: "+49 30 111", Email: "hello@xenon.de"},
		models.ProviderProfile{ID: "c", Name: "Yotta Booths", Email: "hello@xenon.de"},
		models.ProviderProfile{ID: "solo", Name: "Solo Stands"},
	)
	e := newTestEngine(t, store)
	ctx := context.Background()

	first, err := e.FindAndMergeAllDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.DuplicatesFound)
	assert.Equal(t, []models.DuplicateGroup{{PrimaryID: "a", DuplicateIDs: []string{"b", "c"}}}, first.Groups)

	remaining, err := store.ListProviders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "solo"}, providerIDs(remaining))

	second, err := e.FindAndMergeAllDuplicates(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.DuplicatesFound)
	assert.Empty(t, second.Groups)
}

func TestEngine_FindAndMergeAllDuplicates(t *testing.T) {
	store := storage.NewMemoryStore()
	seed(store,
		models.ProviderProfile{ID: "a1", Name: "Alpha", GMBPlaceID: "g-a", Services: []string{"design"}},
		models.ProviderProfile{ID: "b1", Name: "Beta", Email: "hi@beta.com"},
		models.ProviderProfile{ID: "a2", Name: "Alpha Two", GMBPlaceID: "g-a", Services: []string{"build"}},
		models.ProviderProfile{ID: "b2", Name: "Beta Events", Email: "HI@beta.com"},
		models.ProviderProfile{ID: "solo", Name: "Solo Stands"},
	)
	store.PutLead(models.Lead{ID: "lead-1", AssignedProviders: []string{"a2", "b2", "a1"}})
	store.PutLead(models.Lead{ID: "lead-2", AssignedProviders: []string{"solo"}})
	e := newTestEngine(t, store)
	ctx := context.Background()

	report, err := e.FindAndMergeAllDuplicates(ctx)
	require.NoError(t, err)

	assert.Equal(t, "pass-1", report.PassID)
	assert.Equal(t, 2, report.DuplicatesFound)
	assert.Equal(t, 2, report.MergesCompleted)
	assert.Empty(t, report.Errors)
	require.Len(t, report.Merges, 2)
	assert.Equal(t, []string{"a2"}, report.Merges[0].RemovedIDs)
	assert.Equal(t, []string{"b2"}, report.Merges[1].RemovedIDs)

	remaining, err := store.ListProviders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b1", "solo"}, providerIDs(remaining))
	assert.Equal(t, []string{"design", "build"}, remaining[0].Services)

	leads, err := store.ListLeads(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b1"}, leads[0].AssignedProviders)
	assert.Equal(t, []string{"solo"}, leads[1].AssignedProviders)

	second, err := e.FindAndMergeAllDuplicates(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.DuplicatesFound)
	assert.Zero(t, second.MergesCompleted)
	assert.Empty(t, second.Groups)
}

func TestEngine_FindAndMergeAllDuplicates_ReportsGroupFailures(t *testing.T) {
	store := storage.NewMemoryStore()
	seed(store,
		models.ProviderProfile{ID: "a1", Name: "Alpha", GMBPlaceID: "g-a"},
		models.ProviderProfile{ID: "a2", Name: "Alpha Two", GMBPlaceID: "g-a"},
		models.ProviderProfile{ID: "b1", Name: "Beta", GMBPlaceID: "g-b"},
		models.ProviderProfile{ID: "b2", Name: "Beta Two", GMBPlaceID: "g-b"},
	)
	store.FailOn(storage.OpUpdateProvider, "a1", errors.New("write conflict"))
	store.FailOn(storage.OpDeleteProvider, "b2", errors.New("locked"))
	e := newTestEngine(t, store)

	report, err := e.FindAndMergeAllDuplicates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.DuplicatesFound)
	assert.Equal(t, 1, report.MergesCompleted)
	require.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "failed to merge group a1")
	assert.Contains(t, report.Errors[0], "write conflict")
	assert.Contains(t, report.Errors[1], "group b1")
	assert.Contains(t, report.Errors[1], "locked")
}

func TestEngine_FindAndMergeAllDuplicates_ListFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	store.FailOn(storage.OpListProviders, "", errors.New("timeout"))
	e := newTestEngine(t, store)

	_, err := e.FindAndMergeAllDuplicates(context.Background())
	assert.Error(t, err)
}

func TestEngine_FindAndMergeAllDuplicates_CancelledContext(t *testing.T) {
	store := storage.NewMemoryStore()
	seed(store,
		models.ProviderProfile{ID: "a1", Name: "Alpha", GMBPlaceID: "g-a"},
		models.ProviderProfile{ID: "a2", Name: "Alpha Two", GMBPlaceID: "g-a"},
	)
	e := newTestEngine(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.FindAndMergeAllDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.DuplicatesFound)
	assert.Zero(t, report.MergesCompleted)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "interrupted")
}

func providerIDs(providers []models.ProviderProfile) []string {
	out := make([]string, len(providers))
	for i, p := range providers {
		out[i] = p.ID
	}
	return out
}

// ==========================
// Configuration
// ==========================

func TestConfig_ApplyPointOverrides(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyPointOverrides(map[string]int{"email": 95, "GMB_PLACE_ID": 100}))
	assert.Equal(t, 95, cfg.Points.Email)
	assert.Equal(t, 100, cfg.Points.GMBPlaceID)

	err := cfg.ApplyPointOverrides(map[string]int{"fax": 10})
	assert.ErrorContains(t, err, "fax")
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = 0
	_, err := NewEngine(cfg, storage.NewMemoryStore(), logger.NewNoOpLogger())
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.FuzzyNameThreshold = 1.5
	_, err = NewEngine(cfg, storage.NewMemoryStore(), logger.NewNoOpLogger())
	assert.Error(t, err)
}
