package domain

import "slices"

// Score is one judge's rating of one surfer on one wave of a heat.
// Scores are read-only inputs owned by the persistence layer.
type Score struct {
	// SurferID identifies the surfer that rode the wave.
	SurferID int `json:"surfer_id" yaml:"surfer_id"`

	// JudgeID identifies the judge that submitted the rating.
	JudgeID int `json:"judge_id" yaml:"judge_id"`

	// HeatID identifies the heat the wave belongs to.
	HeatID int `json:"heat_id" yaml:"heat_id"`

	// Wave is the index of the wave within the heat.
	Wave int `json:"wave" yaml:"wave"`

	// Score is the judge's rating. It carries no meaning when Missed is set.
	Score float64 `json:"score" yaml:"score"`

	// Interference records an interference call on the wave.
	Interference bool `json:"interference" yaml:"interference"`

	// Missed reports that the judge did not witness the wave.
	Missed bool `json:"missed" yaml:"missed"`
}

// WaveKey identifies a single surfer's ride on a single wave.
type WaveKey struct {
	SurferID int
	Wave     int
}

// Roster is the set of judge IDs currently assigned to a heat.
// Only membership matters; the zero value is an empty roster.
type Roster map[int]struct{}

// NewRoster builds a roster from a list of judge IDs. Duplicate IDs
// collapse into a single member.
func NewRoster(judgeIDs ...int) Roster {
	r := make(Roster, len(judgeIDs))
	for _, id := range judgeIDs {
		r[id] = struct{}{}
	}
	return r
}

// Contains reports whether the judge is assigned to the heat.
func (r Roster) Contains(judgeID int) bool {
	_, ok := r[judgeID]
	return ok
}

// Len returns the number of assigned judges.
func (r Roster) Len() int { return len(r) }

// IDs returns the assigned judge IDs in ascending order.
func (r Roster) IDs() []int {
	ids := make([]int, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
