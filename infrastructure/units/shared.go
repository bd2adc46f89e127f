// Package units provides the scoring stages of the heat result engine.
// Each stage is available both as a pure function and as a ports.Unit
// that reads from and writes to the pipeline's domain.State.
package units

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-heat/internal/domain"
)

// Common errors returned by scoring units.
var (
	// ErrEmptyUnitName is returned when attempting to create a unit with an empty name.
	ErrEmptyUnitName = errors.New("unit name cannot be empty")

	// ErrNilStrategy is returned when a ranking unit is built without a strategy.
	ErrNilStrategy = errors.New("ranking strategy cannot be nil")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// getInput fetches a mandatory input from the state or reports which key
// was missing.
func getInput[T any](state domain.State, key domain.Key[T], unit string) (T, error) {
	v, ok := domain.Get(state, key)
	if !ok {
		return v, fmt.Errorf("unit %s: %w", unit,
			domain.NewStateError(key.Name(), "Get", domain.ErrKeyNotFound))
	}
	return v, nil
}

// intParam reads an integer parameter from a loosely typed config map.
// YAML and JSON decoders disagree on numeric types, so both int and
// float64 are accepted.
func intParam(config map[string]any, key string) (int, bool) {
	switch v := config[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
