// Package middleware provides cross-cutting concerns for the heat result
// engine: metrics, tracing and store throttling.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-heat/internal/application"
	"github.com/ahrav/go-heat/internal/ports"
)

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. Engine metrics get dedicated series; anything else lands in
// the generic operation series.
type PrometheusMetrics struct {
	computeLatency   *prometheus.HistogramVec
	incompleteWaves  *prometheus.CounterVec
	resultsPerHeat   *prometheus.HistogramVec
	operationLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	gauges           *prometheus.GaugeVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// A nil reg selects the global default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		computeLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "heat_compute_duration_seconds",
				Help:    "Time spent computing preliminary results for one heat.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"heat_type"},
		),
		incompleteWaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heat_incomplete_waves_total",
				Help: "Waves skipped because not every assigned judge scored them.",
			},
			[]string{"heat_type"},
		),
		resultsPerHeat: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "heat_results_per_heat",
				Help:    "Number of ranked surfers per computed heat.",
				Buckets: prometheus.LinearBuckets(0, 2, 8),
			},
			[]string{"heat_type"},
		),
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "heat_operation_duration_seconds",
				Help:    "Execution time of engine operations such as pipeline stages.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "unit"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heat_operations_total",
				Help: "Total number of engine operations by status.",
			},
			[]string{"operation", "status", "unit"},
		),
		gauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "heat_engine_state",
				Help: "Current state values reported by the engine.",
			},
			[]string{"metric", "unit"},
		),
	}
}

func unitLabel(labels map[string]string) string {
	if unit := labels["unit"]; unit != "" {
		return unit
	}
	return "unknown"
}

func heatTypeLabel(labels map[string]string) string {
	if ht := labels["heat_type"]; ht != "" {
		return ht
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	if operation == application.MetricComputeLatency {
		pm.computeLatency.WithLabelValues(heatTypeLabel(labels)).Observe(duration.Seconds())
		return
	}
	pm.operationLatency.WithLabelValues(operation, unitLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	switch metric {
	case application.MetricIncompleteWaves:
		pm.incompleteWaves.WithLabelValues(heatTypeLabel(labels)).Add(value)
	case application.MetricComputeErrors:
		pm.operationCounter.WithLabelValues(application.MetricComputeLatency, "error", heatTypeLabel(labels)).Add(value)
	default:
		status := labels["status"]
		if status == "" {
			status = "success"
		}
		pm.operationCounter.WithLabelValues(metric, status, unitLabel(labels)).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, labels map[string]string) {
	pm.gauges.WithLabelValues(metric, unitLabel(labels)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface. Values other
// than result counts are routed to the generic operation histogram.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	if metric == application.MetricResults {
		pm.resultsPerHeat.WithLabelValues(heatTypeLabel(labels)).Observe(value)
		return
	}
	pm.operationLatency.WithLabelValues(metric, unitLabel(labels)).Observe(value)
}
