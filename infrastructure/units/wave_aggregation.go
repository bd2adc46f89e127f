package units

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/logging"
	"github.com/ahrav/go-heat/internal/ports"
)

var _ ports.Unit = (*WaveAggregationUnit)(nil)

// AggregationConfig controls outlier trimming when a wave's judge scores
// are reduced to a single value.
type AggregationConfig struct {
	// MinJudgesForDrop is the roster size that must be exceeded before
	// extreme scores are dropped.
	//
	// Default: 4 (trimming starts with five judges)
	MinJudgesForDrop int `yaml:"min_judges_for_drop" json:"min_judges_for_drop" validate:"min=0,max=100"`

	// DropScores is the number of lowest and, independently, highest
	// scores removed before averaging.
	//
	// Default: 1
	DropScores int `yaml:"drop_scores" json:"drop_scores" validate:"min=0,max=10"`
}

// DefaultAggregationConfig returns the trimming rules used by competition
// judging: drop the best and worst score once more than four judges rate
// the wave.
func DefaultAggregationConfig() AggregationConfig {
	return AggregationConfig{
		MinJudgesForDrop: 4,
		DropScores:       1,
	}
}

// AggregateWave reduces one surfer's judge scores for one wave into a
// single score.
//
// The wave is only scoreable when every roster judge submitted exactly one
// score; otherwise the boolean is false and callers must treat the wave
// as not yet judged. A missed score is replaced by the mean of the rated
// scores so trimming always works on a full-roster sample. When every
// judge missed the wave there is nothing to aggregate.
func AggregateWave(
	key domain.WaveKey,
	scores []domain.Score,
	roster domain.Roster,
	config AggregationConfig,
) (domain.WaveScore, bool) {
	if !coversRoster(scores, roster) {
		return domain.WaveScore{}, false
	}

	values := make([]float64, 0, len(scores))
	for _, s := range scores {
		if !s.Missed {
			values = append(values, s.Score)
		}
	}
	if len(values) == 0 {
		return domain.WaveScore{}, false
	}

	substitute := mean(values)
	for range len(scores) - len(values) {
		values = append(values, substitute)
	}
	slices.Sort(values)

	drop := config.DropScores
	score := mean(values)
	if roster.Len() > config.MinJudgesForDrop && len(values) > 2*drop {
		score = mean(values[drop : len(values)-drop])
	}

	return domain.WaveScore{
		SurferID: key.SurferID,
		Wave:     key.Wave,
		Score:    score,
	}, true
}

// coversRoster reports whether the judges behind scores are exactly the
// roster: same members and one score per judge.
func coversRoster(scores []domain.Score, roster domain.Roster) bool {
	if len(scores) != roster.Len() {
		return false
	}
	seen := make(map[int]struct{}, len(scores))
	for _, s := range scores {
		if !roster.Contains(s.JudgeID) {
			return false
		}
		seen[s.JudgeID] = struct{}{}
	}
	return len(seen) == roster.Len()
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// AggregateWaves aggregates every group and splits the outcome into
// scoreable waves and waves still waiting for judges. Both slices are
// ordered by surfer and then wave.
func AggregateWaves(
	grouped map[domain.WaveKey][]domain.Score,
	roster domain.Roster,
	config AggregationConfig,
) ([]domain.WaveScore, []domain.WaveKey) {
	keys := slices.SortedFunc(maps.Keys(grouped), compareWaveKeys)

	waveScores := make([]domain.WaveScore, 0, len(keys))
	var incomplete []domain.WaveKey
	for _, key := range keys {
		ws, ok := AggregateWave(key, grouped[key], roster, config)
		if !ok {
			incomplete = append(incomplete, key)
			continue
		}
		waveScores = append(waveScores, ws)
	}
	return waveScores, incomplete
}

func compareWaveKeys(a, b domain.WaveKey) int {
	if c := cmp.Compare(a.SurferID, b.SurferID); c != 0 {
		return c
	}
	return cmp.Compare(a.Wave, b.Wave)
}

// WaveAggregationUnit is the pipeline stage wrapping AggregateWaves.
//
// State Requirements:
//   - domain.KeyGroupedScores
//   - domain.KeyRoster
//
// State Updates:
//   - domain.KeyWaveScores
//   - domain.KeyIncompleteWaves
type WaveAggregationUnit struct {
	name   string
	config AggregationConfig
}

// NewWaveAggregationUnit creates an aggregation stage. It returns an error
// if the name is empty or the configuration is invalid.
func NewWaveAggregationUnit(name string, config AggregationConfig) (*WaveAggregationUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &WaveAggregationUnit{name: name, config: config}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *WaveAggregationUnit) Name() string { return u.name }

// Config returns the unit's trimming rules.
func (u *WaveAggregationUnit) Config() AggregationConfig { return u.config }

// Execute aggregates every grouped wave. Waves without full judge coverage
// are logged at debug level and recorded under domain.KeyIncompleteWaves.
func (u *WaveAggregationUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	grouped, err := getInput(state, domain.KeyGroupedScores, u.name)
	if err != nil {
		return state, err
	}
	roster, err := getInput(state, domain.KeyRoster, u.name)
	if err != nil {
		return state, err
	}

	waveScores, incomplete := AggregateWaves(grouped, roster, u.config)

	logger := logging.FromContext(ctx)
	for _, key := range incomplete {
		logger.DebugContext(ctx, "wave not scoreable yet",
			slog.String("unit", u.name),
			slog.Int("surfer_id", key.SurferID),
			slog.Int("wave", key.Wave),
		)
	}

	state = domain.With(state, domain.KeyWaveScores, waveScores)
	return domain.With(state, domain.KeyIncompleteWaves, incomplete), nil
}

// Validate checks if the unit is properly configured.
func (u *WaveAggregationUnit) Validate() error {
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML parameters into the unit's config.
// Fields absent from the YAML keep their current values.
func (u *WaveAggregationUnit) UnmarshalParameters(params yaml.Node) error {
	config := u.config
	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}
	u.config = config
	return nil
}
