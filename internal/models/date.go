// internal/models/date.go
package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Date is a calendar instant decoded leniently from JSON. Empty, null and
// unparseable values decode to the zero Date instead of failing the whole
// document.
type Date struct {
	time.Time
}

// NewDate wraps t.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// ParseDate parses s with the accepted layouts.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, true
		}
	}
	return Date{}, false
}

func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// numbers, objects and other shapes are not dates
		*d = Date{}
		return nil
	}
	parsed, _ := ParseDate(s)
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.UTC().Format(time.RFC3339))
}
