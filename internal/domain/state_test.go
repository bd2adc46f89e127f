package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewState verifies that a new State instance is initialized correctly.
func TestNewState(t *testing.T) {
	state := NewState()

	assert.NotNil(t, state.data, "NewState() should initialize the data map.")
	assert.Empty(t, state.data, "NewState() should create an empty state.")
}

// TestState_Get covers typed retrieval for the keys the scoring pipeline uses.
func TestState_Get(t *testing.T) {
	tests := []struct {
		name   string
		setup  func() State
		assert func(t *testing.T, state State)
	}{
		{
			name: "get existing heat id",
			setup: func() State {
				return With(NewState(), KeyHeatID, 7)
			},
			assert: func(t *testing.T, state State) {
				got, ok := Get(state, KeyHeatID)
				assert.True(t, ok, "Get() should find an existing key.")
				assert.Equal(t, 7, got)
			},
		},
		{
			name: "get non-existent key",
			setup: func() State {
				return NewState()
			},
			assert: func(t *testing.T, state State) {
				_, ok := Get(state, KeyScores)
				assert.False(t, ok, "Get() should not find a non-existent key.")
			},
		},
		{
			name: "get roster",
			setup: func() State {
				return With(NewState(), KeyRoster, NewRoster(1, 2, 3))
			},
			assert: func(t *testing.T, state State) {
				got, ok := Get(state, KeyRoster)
				require.True(t, ok)
				assert.Equal(t, []int{1, 2, 3}, got.IDs())
			},
		},
		{
			name: "get grouped scores",
			setup: func() State {
				grouped := map[WaveKey][]Score{
					{SurferID: 1, Wave: 0}: {{SurferID: 1, JudgeID: 2, Score: 5.5}},
				}
				return With(NewState(), KeyGroupedScores, grouped)
			},
			assert: func(t *testing.T, state State) {
				got, ok := Get(state, KeyGroupedScores)
				require.True(t, ok)
				require.Len(t, got[WaveKey{SurferID: 1, Wave: 0}], 1)
				assert.Equal(t, 5.5, got[WaveKey{SurferID: 1, Wave: 0}][0].Score)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.setup()
			tt.assert(t, state)
		})
	}
}

// TestState_With verifies copy-on-write semantics.
func TestState_With(t *testing.T) {
	original := NewState()

	updated := With(original, KeyHeatID, 1)

	_, ok := Get(original, KeyHeatID)
	assert.False(t, ok, "With() should not modify the original state.")

	updated2 := With(updated, KeyHeatID, 2)

	v, _ := Get(updated, KeyHeatID)
	assert.Equal(t, 1, v, "With() should not modify the previous state when updating.")

	v2, _ := Get(updated2, KeyHeatID)
	assert.Equal(t, 2, v2)
}

// TestState_DeepCopyIsolation ensures slices stored in State cannot be
// mutated through the caller's reference or through a value read back.
func TestState_DeepCopyIsolation(t *testing.T) {
	results := []Result{{
		SurferID:   1,
		TotalScore: 12.5,
		WaveScores: []WaveScore{{SurferID: 1, Wave: 0, Score: 6.25}},
	}}
	state := With(NewState(), KeyResults, results)

	results[0].TotalScore = 0
	results[0].WaveScores[0].Score = 0

	got, ok := Get(state, KeyResults)
	require.True(t, ok)
	assert.Equal(t, 12.5, got[0].TotalScore, "stored value must not follow caller mutations")
	assert.Equal(t, 6.25, got[0].WaveScores[0].Score)

	got[0].WaveScores[0].Published = true
	again, _ := Get(state, KeyResults)
	assert.False(t, again[0].WaveScores[0].Published, "values read back must be copies")
}

func TestState_Keys(t *testing.T) {
	state := With(NewState(), KeyHeatID, 3)
	state = With(state, KeyHeatType, HeatTypeCall)

	assert.ElementsMatch(t, []string{"heat_id", "heat_type"}, state.Keys())
	assert.Empty(t, NewState().Keys())
}

func TestState_CloneRosterAndGroups(t *testing.T) {
	roster := NewRoster(1, 2)
	grouped := map[WaveKey][]Score{{SurferID: 1}: {{JudgeID: 1, Score: 4}}}
	state := With(NewState(), KeyRoster, roster)
	state = With(state, KeyGroupedScores, grouped)

	roster[3] = struct{}{}
	grouped[WaveKey{SurferID: 1}][0].Score = 0

	gotRoster, _ := Get(state, KeyRoster)
	assert.Equal(t, 2, gotRoster.Len())
	gotGroups, _ := Get(state, KeyGroupedScores)
	assert.Equal(t, 4.0, gotGroups[WaveKey{SurferID: 1}][0].Score)
}

func TestState_CloneOtherSlices(t *testing.T) {
	key := NewKey[[]string]("test.names")
	names := []string{"a", "b"}
	state := With(NewState(), key, names)
	names[0] = "z"

	got, ok := Get(state, key)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	_, ok = Get(state, NewKey[int]("test.names"))
	assert.False(t, ok, "a value of another type is not returned")
}
