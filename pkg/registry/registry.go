// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed activities.json
var defaultRegistry []byte

// Default returns the registry compiled into the binary.
func Default() *ActivityRegistry {
	var reg ActivityRegistry
	if err := json.Unmarshal(defaultRegistry, &reg); err != nil {
		panic(fmt.Sprintf("embedded activity registry is malformed: %v", err))
	}
	return &reg
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// LoadOrDefault reads path when set and falls back to the embedded registry.
func LoadOrDefault(path string) (*ActivityRegistry, error) {
	if path == "" {
		return Default(), nil
	}
	reg, err := LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

// Find returns the activity subscribed to taskType.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Validate checks required fields, uniqueness of ids and task types, timeouts
// and that every input schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, a := range r.Activities {
		switch {
		case a.ID == "":
			return fmt.Errorf("activity missing required field: id")
		case a.DisplayName == "":
			return fmt.Errorf("activity %s missing required field: displayName", a.ID)
		case a.TaskType == "":
			return fmt.Errorf("activity %s missing required field: taskType", a.ID)
		case a.Category == "":
			return fmt.Errorf("activity %s missing required field: category", a.ID)
		}

		if ids[a.ID] {
			return fmt.Errorf("duplicate activity ID: %s", a.ID)
		}
		ids[a.ID] = true
		if taskTypes[a.TaskType] {
			return fmt.Errorf("duplicate task type: %s", a.TaskType)
		}
		taskTypes[a.TaskType] = true

		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				return fmt.Errorf("activity %s has invalid timeout %q: %w", a.ID, a.Timeout, err)
			}
		}
		if len(a.InputSchema) > 0 {
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema)); err != nil {
				return fmt.Errorf("activity %s has invalid input schema: %w", a.ID, err)
			}
		}
	}
	return nil
}

// Save writes the registry as indented JSON.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
