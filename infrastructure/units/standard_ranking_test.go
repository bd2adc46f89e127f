package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-heat/internal/domain"
)

// waves builds a surfer's wave scores in the given order, wave indices
// starting at 0.
func waves(surferID int, scores ...float64) []domain.WaveScore {
	out := make([]domain.WaveScore, len(scores))
	for i, s := range scores {
		out[i] = domain.WaveScore{SurferID: surferID, Wave: i, Score: s}
	}
	return out
}

func concat(groups ...[]domain.WaveScore) []domain.WaveScore {
	var out []domain.WaveScore
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

type placing struct {
	SurferID int
	Total    float64
	Place    int
}

func placings(results []domain.Result) []placing {
	out := make([]placing, len(results))
	for i, r := range results {
		out[i] = placing{SurferID: r.SurferID, Total: r.TotalScore, Place: r.Place}
	}
	return out
}

func TestStandardRanking_Rank(t *testing.T) {
	tests := []struct {
		name       string
		waveScores []domain.WaveScore
		want       []placing
	}{
		{
			name:       "best two waves sum",
			waveScores: concat(waves(1, 5, 9, 2), waves(2, 7, 6)),
			want: []placing{
				{SurferID: 1, Total: 14, Place: 0},
				{SurferID: 2, Total: 13, Place: 1},
			},
		},
		{
			name:       "third wave breaks a tied total",
			waveScores: concat(waves(1, 9, 6, 5), waves(2, 8, 7, 6)),
			want: []placing{
				{SurferID: 2, Total: 15, Place: 0},
				{SurferID: 1, Total: 15, Place: 1},
			},
		},
		{
			name:       "identical vectors share a place",
			waveScores: concat(waves(3, 6, 6), waves(2, 7, 8), waves(1, 8, 7), waves(4, 5, 5)),
			want: []placing{
				{SurferID: 1, Total: 15, Place: 0},
				{SurferID: 2, Total: 15, Place: 0},
				{SurferID: 3, Total: 12, Place: 2},
				{SurferID: 4, Total: 10, Place: 3},
			},
		},
		{
			name:       "values within tolerance are equal",
			waveScores: concat(waves(1, 7.000001), waves(2, 7)),
			want: []placing{
				{SurferID: 1, Total: 7.000001, Place: 0},
				{SurferID: 2, Total: 7, Place: 0},
			},
		},
		{
			name:       "extra wave beats a shorter vector",
			waveScores: concat(waves(1, 8, 7), waves(2, 8, 7, 1)),
			want: []placing{
				{SurferID: 2, Total: 15, Place: 0},
				{SurferID: 1, Total: 15, Place: 1},
			},
		},
		{
			name:       "single wave",
			waveScores: waves(5, 4.5),
			want:       []placing{{SurferID: 5, Total: 4.5, Place: 0}},
		},
		{
			name:       "no waves",
			waveScores: nil,
			want:       []placing{},
		},
	}

	ranking, err := NewStandardRanking(DefaultStandardConfig())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := ranking.Rank(42, tt.waveScores)
			require.NotNil(t, results)
			assert.Equal(t, tt.want, placings(results))
			for _, r := range results {
				assert.Equal(t, 42, r.HeatID)
			}
		})
	}
}

func TestStandardRanking_WaveOrderAndInputs(t *testing.T) {
	input := []domain.WaveScore{
		{SurferID: 1, Wave: 2, Score: 3},
		{SurferID: 1, Wave: 0, Score: 9},
		{SurferID: 1, Wave: 1, Score: 5},
	}
	before := append([]domain.WaveScore(nil), input...)

	ranking, err := NewStandardRanking(DefaultStandardConfig())
	require.NoError(t, err)
	results := ranking.Rank(1, input)

	require.Len(t, results, 1)
	assert.Equal(t, []int{0, 1, 2}, []int{
		results[0].WaveScores[0].Wave,
		results[0].WaveScores[1].Wave,
		results[0].WaveScores[2].Wave,
	})
	assert.InDelta(t, 14.0, results[0].TotalScore, 1e-9)
	assert.Equal(t, before, input, "input must not be reordered")
}

func TestStandardRanking_Deterministic(t *testing.T) {
	input := concat(waves(4, 5, 5), waves(3, 5, 5), waves(2, 5, 5), waves(1, 5, 5))
	ranking, err := NewStandardRanking(DefaultStandardConfig())
	require.NoError(t, err)

	first := ranking.Rank(1, input)
	for range 20 {
		assert.Equal(t, first, ranking.Rank(1, input))
	}
	assert.Equal(t, []placing{
		{SurferID: 1, Total: 10, Place: 0},
		{SurferID: 2, Total: 10, Place: 0},
		{SurferID: 3, Total: 10, Place: 0},
		{SurferID: 4, Total: 10, Place: 0},
	}, placings(first))
}

// Totals within Epsilon of a neighbour but not of each other make the
// tolerance comparison cyclic: 1 beats 2, 2 beats 3 and 3 beats 1.
func TestStandardRanking_CyclicTiesAreStable(t *testing.T) {
	ranking, err := NewStandardRanking(DefaultStandardConfig())
	require.NoError(t, err)

	a := waves(1, 5, 5, 4.9)
	b := waves(2, 5.000004, 5.000004, 3)
	c := waves(3, 5.000008, 5.000008, 1)
	orders := [][]domain.WaveScore{
		concat(a, b, c), concat(c, b, a), concat(b, a, c), concat(c, a, b),
	}

	want := placings(ranking.Rank(1, orders[0]))
	for range 200 {
		for _, input := range orders {
			assert.Equal(t, want, placings(ranking.Rank(1, input)))
		}
	}
}

func TestStandardRanking_BestWavesConfig(t *testing.T) {
	ranking, err := NewStandardRanking(StandardConfig{BestWaves: 1})
	require.NoError(t, err)

	results := ranking.Rank(1, concat(waves(1, 9, 1), waves(2, 8, 8)))

	assert.Equal(t, []placing{
		{SurferID: 1, Total: 9, Place: 0},
		{SurferID: 2, Total: 8, Place: 1},
	}, placings(results))
}

func TestNewStandardRanking_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  StandardConfig
		wantErr bool
	}{
		{name: "default", config: DefaultStandardConfig()},
		{name: "upper bound", config: StandardConfig{BestWaves: 20}},
		{name: "zero", config: StandardConfig{BestWaves: 0}, wantErr: true},
		{name: "too many", config: StandardConfig{BestWaves: 21}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStandardRanking(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCreateStandardRanking(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]any
		want    int
		wantErr bool
	}{
		{name: "nil config uses defaults", config: nil, want: 2},
		{name: "int parameter", config: map[string]any{"best_waves": 3}, want: 3},
		{name: "float parameter from json", config: map[string]any{"best_waves": 4.0}, want: 4},
		{name: "wrong type is ignored", config: map[string]any{"best_waves": "three"}, want: 2},
		{name: "invalid value", config: map[string]any{"best_waves": 0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := CreateStandardRanking(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			standard, ok := strategy.(*StandardRanking)
			require.True(t, ok)
			assert.Equal(t, tt.want, standard.Config().BestWaves)
			assert.Equal(t, domain.HeatTypeStandard, standard.HeatType())
		})
	}
}

func TestStandardRanking_UnmarshalParameters(t *testing.T) {
	ranking, err := NewStandardRanking(DefaultStandardConfig())
	require.NoError(t, err)

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("best_waves: 3\n"), &node))
	require.NoError(t, ranking.UnmarshalParameters(*node.Content[0]))
	assert.Equal(t, 3, ranking.Config().BestWaves)

	require.NoError(t, yaml.Unmarshal([]byte("best_waves: 0\n"), &node))
	assert.Error(t, ranking.UnmarshalParameters(*node.Content[0]))
	assert.Equal(t, 3, ranking.Config().BestWaves)
}
