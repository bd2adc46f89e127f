package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-heat/internal/application"
)

func newTestMetrics(t *testing.T) (*PrometheusMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewPrometheusMetrics(reg), reg
}

func TestNewPrometheusMetrics(t *testing.T) {
	pm, reg := newTestMetrics(t)

	assert.NotNil(t, pm.computeLatency)
	assert.NotNil(t, pm.incompleteWaves)
	assert.NotNil(t, pm.resultsPerHeat)
	assert.NotNil(t, pm.operationLatency)
	assert.NotNil(t, pm.operationCounter)
	assert.NotNil(t, pm.gauges)

	assert.Panics(t, func() { NewPrometheusMetrics(reg) }, "duplicate registration must fail loudly")
}

func TestPrometheusMetrics_EngineSeries(t *testing.T) {
	pm, reg := newTestMetrics(t)
	labels := map[string]string{"heat_type": "standard"}

	pm.RecordLatency(application.MetricComputeLatency, 2*time.Millisecond, labels)
	pm.RecordCounter(application.MetricIncompleteWaves, 3, labels)
	pm.RecordCounter(application.MetricIncompleteWaves, 1, labels)
	pm.RecordHistogram(application.MetricResults, 4, labels)
	pm.RecordCounter(application.MetricComputeErrors, 1, map[string]string{"heat_type": "knockout"})

	assert.InDelta(t, 4.0, testutil.ToFloat64(pm.incompleteWaves.WithLabelValues("standard")), 1e-9)
	assert.InDelta(t, 1.0,
		testutil.ToFloat64(pm.operationCounter.WithLabelValues(application.MetricComputeLatency, "error", "knockout")), 1e-9)

	count, err := testutil.GatherAndCount(reg, "heat_compute_duration_seconds", "heat_results_per_heat")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPrometheusMetrics_GenericSeries(t *testing.T) {
	tests := []struct {
		name       string
		labels     map[string]string
		wantUnit   string
		wantStatus string
	}{
		{name: "unit and status", labels: map[string]string{"unit": "rank_call", "status": "error"}, wantUnit: "rank_call", wantStatus: "error"},
		{name: "defaults", labels: nil, wantUnit: "unknown", wantStatus: "success"},
		{name: "empty unit", labels: map[string]string{"unit": ""}, wantUnit: "unknown", wantStatus: "success"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm, _ := newTestMetrics(t)

			pm.RecordCounter("unit.execute", 2, tt.labels)
			pm.RecordGauge("heats_in_flight", 5, tt.labels)
			pm.RecordLatency("unit.execute", time.Millisecond, tt.labels)

			assert.InDelta(t, 2.0,
				testutil.ToFloat64(pm.operationCounter.WithLabelValues("unit.execute", tt.wantStatus, tt.wantUnit)), 1e-9)
			assert.InDelta(t, 5.0,
				testutil.ToFloat64(pm.gauges.WithLabelValues("heats_in_flight", tt.wantUnit)), 1e-9)
		})
	}
}
