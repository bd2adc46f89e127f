package units

import (
	"context"
	"fmt"

	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/ports"
)

var _ ports.Unit = (*RankingUnit)(nil)

// RankingUnit is the pipeline stage that applies a ranking strategy.
//
// State Requirements:
//   - domain.KeyHeatID
//   - domain.KeyWaveScores
//
// State Updates:
//   - domain.KeyResults
type RankingUnit struct {
	name     string
	strategy domain.RankingStrategy
}

// NewRankingUnit creates a ranking stage around strategy.
func NewRankingUnit(name string, strategy domain.RankingStrategy) (*RankingUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if strategy == nil {
		return nil, ErrNilStrategy
	}
	return &RankingUnit{name: name, strategy: strategy}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *RankingUnit) Name() string { return u.name }

// Strategy returns the wrapped ranking strategy.
func (u *RankingUnit) Strategy() domain.RankingStrategy { return u.strategy }

// Execute ranks the aggregated wave scores held in state.
func (u *RankingUnit) Execute(_ context.Context, state domain.State) (domain.State, error) {
	heatID, err := getInput(state, domain.KeyHeatID, u.name)
	if err != nil {
		return state, err
	}
	waveScores, err := getInput(state, domain.KeyWaveScores, u.name)
	if err != nil {
		return state, err
	}
	return domain.With(state, domain.KeyResults, u.strategy.Rank(heatID, waveScores)), nil
}

// Validate checks that a strategy is present and, when the strategy
// carries configuration, that the configuration is valid.
func (u *RankingUnit) Validate() error {
	if u.strategy == nil {
		return ErrNilStrategy
	}
	if s, ok := u.strategy.(*StandardRanking); ok {
		if err := validate.Struct(s.config); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return nil
}
