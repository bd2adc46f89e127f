package application

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-heat/infrastructure/units"
)

// EngineConfig is the root configuration of the heat result engine.
// Fields omitted from YAML keep the values of DefaultEngineConfig.
type EngineConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning.
	Version string `yaml:"version" validate:"required,semver"`
	// Aggregation controls how judge scores are reduced per wave.
	Aggregation units.AggregationConfig `yaml:"aggregation"`
	// Strategies configures ranking strategies per heat type.
	Strategies []StrategyConfig `yaml:"strategies" validate:"max=50,dive"`
	// Service controls the preliminary results service.
	Service ServiceConfig `yaml:"service"`
	// Store configures the heat store.
	Store StoreConfig `yaml:"store"`
	// Logging configures the process logger.
	Logging LoggingConfig `yaml:"logging"`
}

// StrategyConfig configures the ranking strategy of one heat type.
type StrategyConfig struct {
	// HeatType is the heat format tag the entry applies to.
	HeatType string `yaml:"heat_type" validate:"required,min=1,max=50"`
	// Base names an existing heat type whose strategy the new heat type
	// reuses. Leave empty to configure HeatType itself.
	Base string `yaml:"base,omitempty" validate:"omitempty,min=1,max=50"`
	// Parameters contains strategy-specific settings, such as best_waves
	// for standard heats.
	Parameters yaml.Node `yaml:"parameters,omitempty"`
}

// Params decodes the entry's parameters into a map. Empty parameters
// yield an empty map.
func (c StrategyConfig) Params() (map[string]any, error) {
	params := make(map[string]any)
	if c.Parameters.Kind == 0 {
		return params, nil
	}
	if err := c.Parameters.Decode(&params); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}
	return params, nil
}

// ServiceConfig controls concurrency of the preliminary results service.
type ServiceConfig struct {
	// MaxConcurrentHeats bounds how many heats are computed at once when
	// several heats are requested together.
	MaxConcurrentHeats int `yaml:"max_concurrent_heats" validate:"min=1,max=256"`
}

// StoreConfig configures access to the heat store.
type StoreConfig struct {
	// DSN is the PostgreSQL connection string. It may be left empty when
	// results are computed from fixture files.
	DSN string `yaml:"dsn"`
	// RateLimit throttles store reads. A zero rate disables throttling.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	// Retry controls retries of transient store failures.
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig describes exponential backoff for store reads.
type RetryConfig struct {
	// MaxAttempts is the number of retries after the first call. Zero
	// disables retrying.
	MaxAttempts int           `yaml:"max_attempts" validate:"min=0,max=10"`
	BaseDelay   time.Duration `yaml:"base_delay" validate:"min=0"`
	MaxDelay    time.Duration `yaml:"max_delay" validate:"min=0,gtefield=BaseDelay"`
}

// RateLimitConfig describes a token bucket.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate. Zero disables the limiter.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0,max=100000"`
	// Burst is the bucket size.
	Burst int `yaml:"burst" validate:"min=0,max=100000"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// DefaultEngineConfig returns the configuration used when no file is
// given.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Version:     "1.0.0",
		Aggregation: units.DefaultAggregationConfig(),
		Service: ServiceConfig{
			MaxConcurrentHeats: 8,
		},
		Store: StoreConfig{
			Retry: RetryConfig{
				MaxAttempts: 2,
				BaseDelay:   100 * time.Millisecond,
				MaxDelay:    2 * time.Second,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
