// pkg/registry/schema.go
package registry

import "time"

type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one job worker: the task type it subscribes to, the JSON
// schema its variables must satisfy and its failure contract.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema,omitempty"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows,omitempty"`
	Tags                 []string               `json:"tags,omitempty"`
}

// TimeoutDuration parses Timeout, returning fallback when it is empty or
// malformed.
func (a Activity) TimeoutDuration(fallback time.Duration) time.Duration {
	if a.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
