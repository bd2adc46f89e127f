package domain

// RankingStrategy turns a heat's aggregated wave scores into ranked
// results. Implementations are pure: the same input always yields the
// same, identically ordered output, and the input is never modified.
type RankingStrategy interface {
	// Rank produces one Result per surfer that has at least one
	// aggregated wave score, ordered by place and then by surfer ID.
	// Places are assigned and Published is left false.
	//
	// Example:
	//
	//	results := strategy.Rank(heatID, waveScores)
	Rank(heatID int, waveScores []WaveScore) []Result

	// HeatType returns the heat format this strategy ranks.
	HeatType() HeatType
}
