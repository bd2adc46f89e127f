package ports

import (
	"time"

	"github.com/ahrav/go-heat/internal/domain"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus, OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like incomplete waves or errors.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like result set sizes.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// StrategyFactory builds a ranking strategy from loosely typed parameters,
// typically decoded from YAML configuration.
type StrategyFactory func(params map[string]any) (domain.RankingStrategy, error)

// StrategyRegistry resolves heat format tags to ranking strategies.
type StrategyRegistry interface {
	// Strategy returns the ranking strategy registered for the heat type.
	// It returns an error wrapping domain.ErrUnknownHeatType when no
	// strategy is registered.
	Strategy(heatType domain.HeatType) (domain.RankingStrategy, error)

	// Register installs a factory for a heat type tag.
	Register(heatType domain.HeatType, factory StrategyFactory) error

	// SupportedTypes returns the registered heat type tags.
	SupportedTypes() []domain.HeatType
}
