package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/ports"
)

// ErrNilUnit is returned when a nil unit is added to a pipeline.
var ErrNilUnit = errors.New("cannot add nil unit to pipeline")

// Pipeline is a sequential execution container that processes units in
// strict order, where each unit's output state becomes the input for the
// next unit in the sequence.
type Pipeline struct {
	// id names the pipeline in error messages.
	id string
	// units contains the ordered stages.
	units []ports.Unit
	// names tracks unit names for O(1) duplicate detection.
	names map[string]struct{}
	// mu guards units during concurrent Add and Execute calls.
	mu sync.RWMutex
}

// NewPipeline creates an empty pipeline with the given identifier.
func NewPipeline(id string) *Pipeline {
	return &Pipeline{
		id:    id,
		units: make([]ports.Unit, 0),
		names: make(map[string]struct{}),
	}
}

// Execute runs every unit in order, passing each unit's output state to
// the next unit. Execute checks for context cancellation between units
// and returns the last good state alongside any error. Errors carry the
// name of the failing unit.
func (p *Pipeline) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	p.mu.RLock()
	units := make([]ports.Unit, len(p.units))
	copy(units, p.units)
	p.mu.RUnlock()

	current := state
	for _, unit := range units {
		select {
		case <-ctx.Done():
			return current, ctx.Err()
		default:
		}

		next, err := unit.Execute(ctx, current)
		if err != nil {
			return current, fmt.Errorf("pipeline %s: execution failed at %s: %w", p.id, unit.Name(), err)
		}
		current = next
	}

	return current, nil
}

// ID returns the pipeline identifier.
func (p *Pipeline) ID() string { return p.id }

// Add appends a unit to the end of the pipeline. It returns an error if
// the unit is nil or a unit with the same name was already added.
// Add is safe for concurrent use with Execute.
func (p *Pipeline) Add(unit ports.Unit) error {
	if unit == nil {
		return ErrNilUnit
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	name := unit.Name()
	if _, exists := p.names[name]; exists {
		return fmt.Errorf("unit with name %s already exists in pipeline", name)
	}

	p.units = append(p.units, unit)
	p.names[name] = struct{}{}
	return nil
}

// Units returns a copy of the pipeline's ordered units.
func (p *Pipeline) Units() []ports.Unit {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]ports.Unit, len(p.units))
	copy(out, p.units)
	return out
}

// Validate validates every unit in the pipeline and reports the first
// failure.
func (p *Pipeline) Validate() error {
	for _, unit := range p.Units() {
		if err := unit.Validate(); err != nil {
			return fmt.Errorf("pipeline %s: unit %s: %w", p.id, unit.Name(), err)
		}
	}
	return nil
}
