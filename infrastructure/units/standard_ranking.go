package units

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-heat/internal/domain"
)

var _ domain.RankingStrategy = (*StandardRanking)(nil)

// StandardRanking ranks conventional elimination heats. A surfer's total
// is the sum of their best waves; the remaining waves, best first, break
// ties.
//
// The strategy is stateless and thread-safe.
type StandardRanking struct {
	config StandardConfig
}

// StandardConfig defines the configuration parameters for StandardRanking.
type StandardConfig struct {
	// BestWaves is the number of top waves counted towards the total.
	//
	// Default: 2
	BestWaves int `yaml:"best_waves" json:"best_waves" validate:"min=1,max=20"`
}

// DefaultStandardConfig returns the best-two-waves rule.
func DefaultStandardConfig() StandardConfig {
	return StandardConfig{BestWaves: 2}
}

// NewStandardRanking creates a StandardRanking with the given configuration.
// It returns an error if the configuration is invalid.
func NewStandardRanking(config StandardConfig) (*StandardRanking, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &StandardRanking{config: config}, nil
}

// HeatType implements domain.RankingStrategy.
func (s *StandardRanking) HeatType() domain.HeatType { return domain.HeatTypeStandard }

// Config returns the strategy's configuration.
func (s *StandardRanking) Config() StandardConfig { return s.config }

// Rank implements domain.RankingStrategy.
//
// Algorithm:
//  1. Group wave scores by surfer, ordered by wave for presentation
//  2. Sort each surfer's scores descending
//  3. Sum the best BestWaves scores into the total
//  4. Append the remaining scores as the tie-break tail
//  5. Order surfers by [total, tail...] and assign shared places
func (s *StandardRanking) Rank(heatID int, waveScores []domain.WaveScore) []domain.Result {
	bySurfer := wavesBySurfer(waveScores)

	entries := make([]rankEntry, 0, len(bySurfer))
	for _, surferID := range slices.Sorted(maps.Keys(bySurfer)) {
		waves := bySurfer[surferID]
		values := make([]float64, len(waves))
		for i, ws := range waves {
			values[i] = ws.Score
		}
		slices.SortFunc(values, func(a, b float64) int { return cmp.Compare(b, a) })

		n := min(s.config.BestWaves, len(values))
		var total float64
		for _, v := range values[:n] {
			total += v
		}

		vector := make([]float64, 0, 1+len(values)-n)
		vector = append(vector, total)
		vector = append(vector, values[n:]...)

		entries = append(entries, rankEntry{
			surferID: surferID,
			total:    total,
			vector:   vector,
			waves:    waves,
		})
	}

	return placeEntries(heatID, entries)
}

// UnmarshalParameters deserializes YAML parameters into the strategy's
// config. Fields absent from the YAML keep their current values.
func (s *StandardRanking) UnmarshalParameters(params yaml.Node) error {
	config := s.config
	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}
	s.config = config
	return nil
}

// CreateStandardRanking is a factory function that creates a StandardRanking
// from a configuration map, for use with the strategy registry.
func CreateStandardRanking(config map[string]any) (domain.RankingStrategy, error) {
	standardConfig := DefaultStandardConfig()
	if val, ok := intParam(config, "best_waves"); ok {
		standardConfig.BestWaves = val
	}
	return NewStandardRanking(standardConfig)
}
