// Package ports declares the interfaces the heat engine depends on: the
// pipeline stage contract, the read-only heat store, metrics collection
// and the strategy registry.
package ports

import (
	"context"

	"github.com/ahrav/go-heat/internal/domain"
)

// Unit is one stage of the scoring pipeline: grouping, wave aggregation,
// ranking or publish diffing. Implementations must be safe for concurrent
// use; they keep no per-heat state between calls.
type Unit interface {
	// Name identifies the stage in logs, spans and metrics. It must be
	// unique within a pipeline.
	Name() string

	// Execute reads its inputs from state and returns a State carrying its
	// outputs. A missing input is an error wrapping domain.ErrKeyNotFound.
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// Validate reports a configuration problem, or nil.
	Validate() error
}
