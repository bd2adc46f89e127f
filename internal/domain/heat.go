package domain

// HeatType is the format tag of a heat. It selects the ranking strategy.
type HeatType string

const (
	// HeatTypeStandard ranks surfers by the sum of their best waves.
	HeatTypeStandard HeatType = "standard"

	// HeatTypeCall ranks surfers by the number of waves on which they
	// posted the best score (RSL format).
	HeatTypeCall HeatType = "call"
)

// String returns the string representation of the heat type.
func (t HeatType) String() string { return string(t) }

// Heat carries the heat attributes the engine's callers need.
type Heat struct {
	ID            int      `json:"id" yaml:"id"`
	CategoryID    int      `json:"category_id" yaml:"category_id"`
	Name          string   `json:"name" yaml:"name"`
	Round         int      `json:"round" yaml:"round"`
	NumberInRound int      `json:"number_in_round" yaml:"number_in_round"`
	NumberOfWaves int      `json:"number_of_waves" yaml:"number_of_waves"`
	Type          HeatType `json:"heat_type" yaml:"heat_type"`
}
