package checkproviderduplicate

import (
	"time"

	"provider-matching-workers/pkg/registry"
)

type Config struct {
	Timeout     time.Duration
	InputSchema map[string]interface{}
}

func LoadConfig(reg *registry.ActivityRegistry) *Config {
	cfg := &Config{Timeout: 30 * time.Second}
	if activity, ok := reg.Find(TaskType); ok {
		cfg.Timeout = activity.TimeoutDuration(cfg.Timeout)
		cfg.InputSchema = activity.InputSchema
	}
	return cfg
}
