package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantZero bool
		want     time.Time
	}{
		{name: "rfc3339", input: `"2026-03-01T09:00:00Z"`, want: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		{name: "date only", input: `"2026-03-01"`, want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "null", input: `null`, wantZero: true},
		{name: "empty string", input: `""`, wantZero: true},
		{name: "garbage", input: `"next spring"`, wantZero: true},
		{name: "number", input: `1712345678`, wantZero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			if tt.wantZero {
				assert.True(t, d.IsZero())
				return
			}
			assert.True(t, tt.want.Equal(d.Time))
		})
	}
}

func TestDate_MalformedDoesNotFailDocument(t *testing.T) {
	raw := `{"location":{"country":"Germany","city":"Berlin"},"timeline":{"eventDate":"soon"},"industry":"tech"}`

	var req ProjectRequirements
	require.NoError(t, json.Unmarshal([]byte(raw), &req))

	assert.Equal(t, "Berlin", req.Location.City)
	assert.True(t, req.Timeline.EventDate.IsZero())
}

func TestDate_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewDate(time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2026-05-04T00:00:00Z"`, string(data))

	data, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestPricing_KnownMinimum(t *testing.T) {
	_, ok := Pricing{}.KnownMinimum()
	assert.False(t, ok)

	_, ok = Pricing{ProjectMinimum: Float(0)}.KnownMinimum()
	assert.False(t, ok)

	v, ok := Pricing{ProjectMinimum: Float(8000)}.KnownMinimum()
	assert.True(t, ok)
	assert.Equal(t, 8000.0, v)
}
