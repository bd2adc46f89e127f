// Package domain holds the value types of heat scoring: raw judge scores,
// rosters, aggregated wave scores, ranked results, and the State that
// carries them between pipeline stages. It has no dependencies outside the
// standard library.
package domain

import (
	"maps"
	"reflect"
	"slices"
)

// Key names a State entry and fixes the type stored under it.
type Key[T any] struct{ name string }

// NewKey returns a key for callers outside this package, such as tests
// that thread their own values through a pipeline.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the key's string name.
func (k Key[T]) Name() string { return k.name }

// Keys read and written by the scoring stages.
var (
	// KeyHeatID stores the identifier of the heat being computed.
	KeyHeatID = Key[int]{"heat_id"}

	// KeyHeatType stores the format tag of the heat.
	KeyHeatType = Key[HeatType]{"heat_type"}

	// KeyRoster stores the judges currently assigned to the heat.
	KeyRoster = Key[Roster]{"roster"}

	// KeyScores stores the raw judge scores for the heat.
	KeyScores = Key[[]Score]{"scores"}

	// KeyGroupedScores stores roster-filtered scores grouped by surfer
	// and wave.
	KeyGroupedScores = Key[map[WaveKey][]Score]{"grouped_scores"}

	// KeyWaveScores stores the aggregated wave scores that passed the
	// judge coverage check, ordered by surfer and wave.
	KeyWaveScores = Key[[]WaveScore]{"wave_scores"}

	// KeyIncompleteWaves stores the (surfer, wave) pairs that could not be
	// aggregated yet.
	KeyIncompleteWaves = Key[[]WaveKey]{"incomplete_waves"}

	// KeyResults stores the ranked results.
	KeyResults = Key[[]Result]{"results"}

	// KeyPersistedResults stores the results previously published for the
	// heat, used for publish diffing.
	KeyPersistedResults = Key[[]Result]{"persisted_results"}

	// KeyExecutionID stores a unique identifier for this computation,
	// useful for log and trace correlation.
	KeyExecutionID = Key[string]{"execution.execution_id"}
)

// clone copies the reference types the pipeline stores so a State never
// shares backing arrays or maps with its callers. Scores, wave scores and
// keys hold only value fields, so copying one level is enough for them;
// results carry a nested slice and are cloned per element. Other slices and
// maps are copied one level deep; everything else is stored as is.
func clone(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case Roster:
		return maps.Clone(v)
	case []Score:
		return slices.Clone(v)
	case []WaveScore:
		return slices.Clone(v)
	case []WaveKey:
		return slices.Clone(v)
	case []Result:
		if v == nil {
			return v
		}
		return CloneResults(v)
	case map[WaveKey][]Score:
		out := make(map[WaveKey][]Score, len(v))
		for k, group := range v {
			out[k] = slices.Clone(group)
		}
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return value
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return value
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out.Interface()
	default:
		return value
	}
}

// State is the immutable bag of values a heat computation passes from
// stage to stage. Writes return a new State; values are copied on the way
// in and on the way out, so no stage can reach into another's data.
// A State is safe to share between goroutines.
type State struct {
	data map[string]any
}

// NewState returns an empty State.
func NewState() State {
	return State{data: make(map[string]any)}
}

// Get returns a copy of the value stored under key. The boolean is false
// when the key is absent or holds a value of another type.
//
//	scores, ok := Get(state, KeyScores)
func Get[T any](s State, key Key[T]) (T, bool) {
	value, exists := s.data[key.name]
	if !exists {
		var zero T
		return zero, false
	}
	val, ok := clone(value).(T)
	return val, ok
}

// With returns a State equal to s with value stored under key. s itself is
// left unchanged.
//
//	next := With(state, KeyHeatID, 42)
func With[T any](s State, key Key[T], value T) State {
	data := maps.Clone(s.data)
	data[key.name] = clone(value)
	return State{data: data}
}

// Keys returns the names of the stored entries in no particular order.
func (s State) Keys() []string {
	return slices.Collect(maps.Keys(s.data))
}
