package units

import (
	"context"

	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/ports"
)

var _ ports.Unit = (*GroupingUnit)(nil)

// GroupScores keeps the scores submitted by roster judges and groups them
// by surfer and wave. Scores from judges that are no longer assigned are
// dropped. An empty roster yields an empty grouping.
func GroupScores(roster domain.Roster, scores []domain.Score) map[domain.WaveKey][]domain.Score {
	grouped := make(map[domain.WaveKey][]domain.Score)
	if roster.Len() == 0 {
		return grouped
	}
	for _, s := range scores {
		if !roster.Contains(s.JudgeID) {
			continue
		}
		key := domain.WaveKey{SurferID: s.SurferID, Wave: s.Wave}
		grouped[key] = append(grouped[key], s)
	}
	return grouped
}

// GroupingUnit is the pipeline stage wrapping GroupScores.
//
// State Requirements:
//   - domain.KeyRoster
//   - domain.KeyScores
//
// State Updates:
//   - domain.KeyGroupedScores
type GroupingUnit struct {
	name string
}

// NewGroupingUnit creates a grouping stage with the given name.
func NewGroupingUnit(name string) (*GroupingUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	return &GroupingUnit{name: name}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *GroupingUnit) Name() string { return u.name }

// Execute groups the state's raw scores by surfer and wave.
func (u *GroupingUnit) Execute(_ context.Context, state domain.State) (domain.State, error) {
	roster, err := getInput(state, domain.KeyRoster, u.name)
	if err != nil {
		return state, err
	}
	scores, err := getInput(state, domain.KeyScores, u.name)
	if err != nil {
		return state, err
	}
	return domain.With(state, domain.KeyGroupedScores, GroupScores(roster, scores)), nil
}

// Validate reports no error; the unit has no configuration.
func (u *GroupingUnit) Validate() error { return nil }
