package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_ExportsThroughRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	o, err := NewWithRegisterer("provider-matching-test", reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Shutdown(context.Background()) })

	ctx := context.Background()
	o.RecordJobProcessed(ctx, "match-providers", "completed")
	o.RecordJobProcessed(ctx, "match-providers", "completed")
	o.RecordJobDuration(ctx, "match-providers", 120*time.Millisecond)
	o.RecordMerged(ctx, "cron", 3)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "jobs_processed")
	assert.Contains(t, joined, "jobs_duration")
	assert.Contains(t, joined, "providers_merged")
}

func TestObservability_NilIsNoOp(t *testing.T) {
	var o *Observability
	ctx := context.Background()

	assert.NotPanics(t, func() {
		o.RecordJobProcessed(ctx, "run-dedup-pass", "failed")
		o.RecordJobDuration(ctx, "run-dedup-pass", time.Second)
		o.RecordMerged(ctx, "job", 1)
	})
	assert.NoError(t, o.Shutdown(ctx))
}
