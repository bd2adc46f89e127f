package domain

import "slices"

// WaveScore is a surfer's resolved score for one wave, aggregated across
// all assigned judges.
type WaveScore struct {
	SurferID int     `json:"surfer_id" yaml:"surfer_id"`
	Wave     int     `json:"wave" yaml:"wave"`
	Score    float64 `json:"score" yaml:"score"`

	// Published reports that a persisted wave score with the same value
	// already exists. It is derived on every computation.
	Published bool `json:"published" yaml:"published"`
}

// Result is one surfer's standing in a heat.
type Result struct {
	HeatID   int `json:"heat_id" yaml:"heat_id"`
	SurferID int `json:"surfer_id" yaml:"surfer_id"`

	// TotalScore is strategy dependent: the best-waves sum for standard
	// heats and the number of won waves for call heats.
	TotalScore float64 `json:"total_score" yaml:"total_score"`

	// Place is the zero-based rank. Tied surfers share a place and the
	// next distinct surfer takes its index.
	Place int `json:"place" yaml:"place"`

	// WaveScores holds the surfer's aggregated waves in wave order.
	WaveScores []WaveScore `json:"wave_scores" yaml:"wave_scores"`

	// Published reports that a persisted result with the same total
	// already exists.
	Published bool `json:"published" yaml:"published"`
}

// Clone returns a copy of the result that shares no memory with r.
func (r Result) Clone() Result {
	out := r
	out.WaveScores = slices.Clone(r.WaveScores)
	if out.WaveScores == nil {
		out.WaveScores = []WaveScore{}
	}
	return out
}

// CloneResults deep-copies a result list.
func CloneResults(results []Result) []Result {
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = r.Clone()
	}
	return out
}
