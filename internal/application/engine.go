// Package application wires the scoring stages into the heat result
// engine and exposes the services that load heat data and compute
// preliminary results.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-heat/infrastructure/units"
	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/logging"
	"github.com/ahrav/go-heat/internal/ports"
)

// Metric names reported by the engine.
const (
	MetricComputeLatency  = "engine.compute"
	MetricIncompleteWaves = "engine.incomplete_waves"
	MetricResults         = "engine.results"
	MetricComputeErrors   = "engine.errors"
)

// ComputeResults produces the preliminary results of one heat with the
// default aggregation rules.
//
// Scores are filtered to the judges in judges, aggregated per wave,
// ranked by strategy and compared against persisted. The output is
// ordered by place and then surfer ID. Irregular input never fails; it
// only makes the output smaller.
func ComputeResults(
	heatID int,
	judges []int,
	scores []domain.Score,
	persisted []domain.Result,
	strategy domain.RankingStrategy,
) []domain.Result {
	return computeResults(units.DefaultAggregationConfig(), heatID, judges, scores, persisted, strategy)
}

func computeResults(
	config units.AggregationConfig,
	heatID int,
	judges []int,
	scores []domain.Score,
	persisted []domain.Result,
	strategy domain.RankingStrategy,
) []domain.Result {
	roster := domain.NewRoster(judges...)
	grouped := units.GroupScores(roster, scores)
	waveScores, _ := units.AggregateWaves(grouped, roster, config)
	return units.MarkPublished(strategy.Rank(heatID, waveScores), persisted)
}

// HeatInput carries everything the engine needs to compute one heat.
type HeatInput struct {
	HeatID    int
	HeatType  domain.HeatType
	JudgeIDs  []int
	Scores    []domain.Score
	Persisted []domain.Result
}

// EngineStats summarizes one computation.
type EngineStats struct {
	// Groups is the number of (surfer, wave) groups after roster filtering.
	Groups int
	// IncompleteWaves lists the groups that lacked full judge coverage.
	IncompleteWaves []domain.WaveKey
	// Results is the number of ranked surfers.
	Results int
	// Duration is the wall time spent in the pipeline.
	Duration time.Duration
}

// Engine computes heat results by running the scoring stages as a unit
// pipeline over a domain.State. It produces the same output as
// ComputeResults for the same configuration.
//
// Engine is safe for concurrent use.
type Engine struct {
	aggregation units.AggregationConfig
	registry    ports.StrategyRegistry
	metrics     ports.MetricsCollector
	wrap        func(ports.Unit) ports.Unit
	logger      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMetrics reports computation metrics to collector.
func WithMetrics(collector ports.MetricsCollector) EngineOption {
	return func(e *Engine) { e.metrics = collector }
}

// WithAggregation overrides the default trimming rules.
func WithAggregation(config units.AggregationConfig) EngineOption {
	return func(e *Engine) { e.aggregation = config }
}

// WithUnitWrapper decorates every pipeline stage with wrap, for example to
// trace each stage.
func WithUnitWrapper(wrap func(ports.Unit) ports.Unit) EngineOption {
	return func(e *Engine) { e.wrap = wrap }
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine that resolves strategies through registry.
func NewEngine(registry ports.StrategyRegistry, opts ...EngineOption) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("strategy registry cannot be nil")
	}

	e := &Engine{
		aggregation: units.DefaultAggregationConfig(),
		registry:    registry,
		logger:      logging.New("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := validate.Struct(e.aggregation); err != nil {
		return nil, fmt.Errorf("invalid aggregation config: %w", err)
	}
	return e, nil
}

// NewEngineFromConfig builds the strategy registry described by config
// and an engine that uses it.
func NewEngineFromConfig(config EngineConfig, opts ...EngineOption) (*Engine, error) {
	registry := NewStrategyRegistry()
	if err := registry.Apply(config.Strategies); err != nil {
		return nil, fmt.Errorf("failed to configure strategies: %w", err)
	}
	return NewEngine(registry, append([]EngineOption{WithAggregation(config.Aggregation)}, opts...)...)
}

// Registry returns the engine's strategy registry.
func (e *Engine) Registry() ports.StrategyRegistry { return e.registry }

// Compute runs the scoring pipeline for one heat. It fails only when the
// heat type has no registered strategy, when ctx is done, or when a stage
// reports an error.
func (e *Engine) Compute(ctx context.Context, in HeatInput) ([]domain.Result, EngineStats, error) {
	start := time.Now()
	labels := map[string]string{"heat_type": string(in.HeatType)}

	results, stats, err := e.compute(ctx, in)
	stats.Duration = time.Since(start)

	if e.metrics != nil {
		e.metrics.RecordLatency(MetricComputeLatency, stats.Duration, labels)
		if err != nil {
			e.metrics.RecordCounter(MetricComputeErrors, 1, labels)
		} else {
			e.metrics.RecordCounter(MetricIncompleteWaves, float64(len(stats.IncompleteWaves)), labels)
			e.metrics.RecordHistogram(MetricResults, float64(stats.Results), labels)
		}
	}
	return results, stats, err
}

func (e *Engine) compute(ctx context.Context, in HeatInput) ([]domain.Result, EngineStats, error) {
	pipeline, err := e.buildPipeline(in.HeatType)
	if err != nil {
		return nil, EngineStats{}, err
	}

	executionID := uuid.NewString()
	logger := e.logger.With(
		slog.Int("heat_id", in.HeatID),
		slog.String("heat_type", string(in.HeatType)),
		slog.String("execution_id", executionID),
	)
	ctx = logging.WithLogger(ctx, logger)

	state := domain.NewState()
	state = domain.With(state, domain.KeyExecutionID, executionID)
	state = domain.With(state, domain.KeyHeatID, in.HeatID)
	state = domain.With(state, domain.KeyHeatType, in.HeatType)
	state = domain.With(state, domain.KeyRoster, domain.NewRoster(in.JudgeIDs...))
	state = domain.With(state, domain.KeyScores, in.Scores)
	state = domain.With(state, domain.KeyPersistedResults, in.Persisted)

	out, err := pipeline.Execute(ctx, state)
	if err != nil {
		logger.ErrorContext(ctx, "heat computation failed", slog.Any("error", err))
		return nil, EngineStats{}, err
	}

	grouped, _ := domain.Get(out, domain.KeyGroupedScores)
	incomplete, _ := domain.Get(out, domain.KeyIncompleteWaves)
	results, _ := domain.Get(out, domain.KeyResults)
	if results == nil {
		results = []domain.Result{}
	}

	stats := EngineStats{
		Groups:          len(grouped),
		IncompleteWaves: incomplete,
		Results:         len(results),
	}
	logger.DebugContext(ctx, "heat computed",
		slog.Int("groups", stats.Groups),
		slog.Int("incomplete_waves", len(stats.IncompleteWaves)),
		slog.Int("results", stats.Results),
	)
	return results, stats, nil
}

// buildPipeline assembles the four scoring stages for a heat type.
func (e *Engine) buildPipeline(heatType domain.HeatType) (*Pipeline, error) {
	strategy, err := e.registry.Strategy(heatType)
	if err != nil {
		return nil, err
	}

	grouping, err := units.NewGroupingUnit("group_scores")
	if err != nil {
		return nil, err
	}
	aggregation, err := units.NewWaveAggregationUnit("aggregate_waves", e.aggregation)
	if err != nil {
		return nil, err
	}
	ranking, err := units.NewRankingUnit("rank_"+string(strategy.HeatType()), strategy)
	if err != nil {
		return nil, err
	}
	publish, err := units.NewPublishDiffUnit("mark_published")
	if err != nil {
		return nil, err
	}

	pipeline := NewPipeline("heat_results")
	for _, u := range []ports.Unit{grouping, aggregation, ranking, publish} {
		if e.wrap != nil {
			u = e.wrap(u)
		}
		if err := pipeline.Add(u); err != nil {
			return nil, err
		}
	}
	return pipeline, nil
}
