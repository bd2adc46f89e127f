package units

import (
	"context"

	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/ports"
)

var _ ports.Unit = (*PublishDiffUnit)(nil)

// MarkPublished flags the fresh values that already agree with the
// persisted ones. A result is published when the persisted result for the
// same surfer has an equal total; a wave score is published when the
// persisted wave score for the same surfer and wave is equal. Both use
// domain.Epsilon. The returned slice is a copy; neither input is modified.
func MarkPublished(fresh, persisted []domain.Result) []domain.Result {
	totals := make(map[int]float64, len(persisted))
	waves := make(map[domain.WaveKey]float64)
	for _, r := range persisted {
		totals[r.SurferID] = r.TotalScore
		for _, ws := range r.WaveScores {
			waves[domain.WaveKey{SurferID: ws.SurferID, Wave: ws.Wave}] = ws.Score
		}
	}

	out := domain.CloneResults(fresh)
	for i := range out {
		r := &out[i]
		total, ok := totals[r.SurferID]
		r.Published = ok && domain.FloatEqual(total, r.TotalScore)
		for j := range r.WaveScores {
			ws := &r.WaveScores[j]
			key := domain.WaveKey{SurferID: ws.SurferID, Wave: ws.Wave}
			score, ok := waves[key]
			ws.Published = ok && domain.FloatEqual(score, ws.Score)
		}
	}
	return out
}

// PublishDiffUnit is the pipeline stage wrapping MarkPublished. A state
// without persisted results is treated as a heat with nothing published.
//
// State Requirements:
//   - domain.KeyResults
//   - domain.KeyPersistedResults (optional)
//
// State Updates:
//   - domain.KeyResults
type PublishDiffUnit struct {
	name string
}

// NewPublishDiffUnit creates a publish diff stage.
func NewPublishDiffUnit(name string) (*PublishDiffUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	return &PublishDiffUnit{name: name}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *PublishDiffUnit) Name() string { return u.name }

// Execute marks the state's results against the persisted results.
func (u *PublishDiffUnit) Execute(_ context.Context, state domain.State) (domain.State, error) {
	results, err := getInput(state, domain.KeyResults, u.name)
	if err != nil {
		return state, err
	}
	persisted, _ := domain.Get(state, domain.KeyPersistedResults)
	return domain.With(state, domain.KeyResults, MarkPublished(results, persisted)), nil
}

// Validate reports no error; the unit has no configuration.
func (u *PublishDiffUnit) Validate() error { return nil }
