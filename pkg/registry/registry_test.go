package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg := Default()

	require.NoError(t, reg.Validate())
	for _, taskType := range []string{"match-providers", "check-provider-duplicate", "merge-duplicate-providers", "run-dedup-pass"} {
		a, ok := reg.Find(taskType)
		require.True(t, ok, taskType)
		assert.NotEmpty(t, a.InputSchema, taskType)
		assert.NotEmpty(t, a.ErrorCodes, taskType)
	}

	_, ok := reg.Find("send-email")
	assert.False(t, ok)
}

func TestActivity_TimeoutDuration(t *testing.T) {
	assert.Equal(t, 2*time.Minute, Activity{Timeout: "2m"}.TimeoutDuration(time.Second))
	assert.Equal(t, time.Second, Activity{}.TimeoutDuration(time.Second))
	assert.Equal(t, time.Second, Activity{Timeout: "soon"}.TimeoutDuration(time.Second))
	assert.Equal(t, time.Second, Activity{Timeout: "-5s"}.TimeoutDuration(time.Second))
}

func TestActivityRegistry_Validate(t *testing.T) {
	valid := func() Activity {
		return Activity{ID: "a", DisplayName: "A", TaskType: "a", Category: "c", Timeout: "5s"}
	}

	tests := []struct {
		name    string
		mutate  func(r *ActivityRegistry)
		wantErr string
	}{
		{"valid", func(r *ActivityRegistry) {}, ""},
		{"empty", func(r *ActivityRegistry) { r.Activities = nil }, "no activities"},
		{"missing task type", func(r *ActivityRegistry) { r.Activities[0].TaskType = "" }, "taskType"},
		{"duplicate id", func(r *ActivityRegistry) {
			dup := valid()
			dup.TaskType = "b"
			r.Activities = append(r.Activities, dup)
		}, "duplicate activity ID"},
		{"duplicate task type", func(r *ActivityRegistry) {
			dup := valid()
			dup.ID = "b"
			r.Activities = append(r.Activities, dup)
		}, "duplicate task type"},
		{"bad timeout", func(r *ActivityRegistry) { r.Activities[0].Timeout = "ten" }, "invalid timeout"},
		{"bad schema", func(r *ActivityRegistry) {
			r.Activities[0].InputSchema = map[string]interface{}{"type": 42}
		}, "invalid input schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: []Activity{valid()}}
			tt.mutate(reg)

			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	reg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Len(t, reg.Activities, 4)

	path := filepath.Join(t.TempDir(), "registry.json")
	custom := Default()
	custom.Activities = custom.Activities[:1]
	custom.Activities[0].Timeout = "45s"
	require.NoError(t, custom.Save(path))

	reg, err = LoadOrDefault(path)
	require.NoError(t, err)
	require.Len(t, reg.Activities, 1)
	assert.Equal(t, 45*time.Second, reg.Activities[0].TimeoutDuration(0))

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = LoadOrDefault(path)
	assert.Error(t, err)

	_, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
