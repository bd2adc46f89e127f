package units

import (
	"maps"
	"slices"

	"github.com/ahrav/go-heat/internal/domain"
)

var _ domain.RankingStrategy = (*CallRanking)(nil)

// CallRanking ranks call (RSL) heats, where surfers share waves and are
// compared wave by wave. A surfer's total is the number of waves on which
// they posted the best score; several surfers can win the same wave.
//
// The strategy is stateless and thread-safe.
type CallRanking struct{}

// NewCallRanking creates a CallRanking.
func NewCallRanking() *CallRanking { return &CallRanking{} }

// HeatType implements domain.RankingStrategy.
func (c *CallRanking) HeatType() domain.HeatType { return domain.HeatTypeCall }

// Rank implements domain.RankingStrategy. Every surfer with at least one
// aggregated wave appears in the output, including surfers with no wins.
func (c *CallRanking) Rank(heatID int, waveScores []domain.WaveScore) []domain.Result {
	best := make(map[int]float64)
	for _, ws := range waveScores {
		if cur, ok := best[ws.Wave]; !ok || ws.Score > cur {
			best[ws.Wave] = ws.Score
		}
	}

	wins := make(map[int]float64)
	for _, ws := range waveScores {
		if _, ok := wins[ws.SurferID]; !ok {
			wins[ws.SurferID] = 0
		}
		if domain.FloatEqual(ws.Score, best[ws.Wave]) {
			wins[ws.SurferID]++
		}
	}

	bySurfer := wavesBySurfer(waveScores)
	entries := make([]rankEntry, 0, len(wins))
	for _, surferID := range slices.Sorted(maps.Keys(wins)) {
		count := wins[surferID]
		entries = append(entries, rankEntry{
			surferID: surferID,
			total:    count,
			vector:   []float64{count},
			waves:    bySurfer[surferID],
		})
	}

	return placeEntries(heatID, entries)
}

// CreateCallRanking is a factory function for the strategy registry.
// Call heats take no parameters.
func CreateCallRanking(map[string]any) (domain.RankingStrategy, error) {
	return NewCallRanking(), nil
}
