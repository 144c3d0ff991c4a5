// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Logging   LoggingConfig           `mapstructure:"logging"`
	Matching  MatchingConfig          `mapstructure:"matching"`
	Dedup     DedupConfig             `mapstructure:"dedup"`
	Scheduler SchedulerConfig         `mapstructure:"scheduler"`
	Cache     CacheConfig             `mapstructure:"cache"`
	Registry  RegistryConfig          `mapstructure:"registry"`
	Server    ServerConfig            `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	Insecure       bool   `mapstructure:"insecure"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ElasticsearchConfig is optional. With no address the provider search index
// is not kept in sync.
type ElasticsearchConfig struct {
	Addresses     []string `mapstructure:"addresses"`
	Username      string   `mapstructure:"username"`
	Password      string   `mapstructure:"password"`
	URL           string   `mapstructure:"url"`
	ProviderIndex string   `mapstructure:"provider_index"`
}

// Enabled reports whether any address is configured.
func (e ElasticsearchConfig) Enabled() bool {
	return e.URL != "" || len(e.Addresses) > 0
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// --- Domain Configuration ---

// MatchingConfig overrides matching engine tunables. Zero values keep the
// engine defaults.
type MatchingConfig struct {
	Weights               MatchingWeights    `mapstructure:"weights"`
	MinScore              float64            `mapstructure:"min_score"`
	DefaultMaxResults     int                `mapstructure:"default_max_results"`
	DefaultProjectMinimum float64            `mapstructure:"default_project_minimum"`
	SizeMultipliers       map[string]float64 `mapstructure:"size_multipliers"`
}

type MatchingWeights struct {
	Location  float64 `mapstructure:"location"`
	Services  float64 `mapstructure:"services"`
	Industry  float64 `mapstructure:"industry"`
	Budget    float64 `mapstructure:"budget"`
	Timeline  float64 `mapstructure:"timeline"`
	Quality   float64 `mapstructure:"quality"`
	StandType float64 `mapstructure:"stand_type"`
}

// IsSet reports whether any weight was configured. Weights are overridden as
// a set, never individually.
func (w MatchingWeights) IsSet() bool {
	return w.Location != 0 || w.Services != 0 || w.Industry != 0 || w.Budget != 0 ||
		w.Timeline != 0 || w.Quality != 0 || w.StandType != 0
}

// DedupConfig overrides deduplication scoring. Zero values keep the engine
// defaults.
type DedupConfig struct {
	Threshold          int            `mapstructure:"threshold"`
	FuzzyNameThreshold float64        `mapstructure:"fuzzy_name_threshold"`
	AddressThreshold   float64        `mapstructure:"address_threshold"`
	Points             map[string]int `mapstructure:"points"`
}

type SchedulerConfig struct {
	DedupEnabled bool   `mapstructure:"dedup_enabled"`
	DedupCron    string `mapstructure:"dedup_cron"`
}

type CacheConfig struct {
	CandidateTTL int `mapstructure:"candidate_ttl"` // seconds
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}
