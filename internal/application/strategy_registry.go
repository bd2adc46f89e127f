package application

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-heat/infrastructure/units"
	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.StrategyRegistry = (*DefaultStrategyRegistry)(nil)

// maxSuggestionDistance bounds how far an unknown tag may be from a
// registered one before no suggestion is offered.
const maxSuggestionDistance = 3

// DefaultStrategyRegistry resolves heat format tags to ranking strategies.
// Tags are matched case-insensitively and may be aliases of a registered
// tag, such as "rsl" for call heats.
type DefaultStrategyRegistry struct {
	// factories maps normalized heat type tags to strategy factories.
	factories map[domain.HeatType]ports.StrategyFactory
	// params holds per-type parameters passed to the factory.
	params map[domain.HeatType]map[string]any
	// aliases maps alternative tags to registered tags.
	aliases map[string]domain.HeatType
	mu      sync.RWMutex
}

// NewStrategyRegistry creates a registry with the standard and call
// strategies registered, and "rsl" as an alias of call.
func NewStrategyRegistry() *DefaultStrategyRegistry {
	r := &DefaultStrategyRegistry{
		factories: make(map[domain.HeatType]ports.StrategyFactory),
		params:    make(map[domain.HeatType]map[string]any),
		aliases:   make(map[string]domain.HeatType),
	}

	r.factories[domain.HeatTypeStandard] = units.CreateStandardRanking
	r.factories[domain.HeatTypeCall] = units.CreateCallRanking
	r.aliases["rsl"] = domain.HeatTypeCall

	return r
}

// normalize folds case and trims whitespace. A new caser is created per
// call since cases.Caser is not safe for concurrent use.
func normalize(tag string) string {
	return cases.Fold().String(strings.TrimSpace(tag))
}

// Resolve maps a raw heat format tag onto a registered heat type. Unknown
// tags produce an error wrapping domain.ErrUnknownHeatType, with the
// closest registered tag suggested when one is near enough.
func (r *DefaultStrategyRegistry) Resolve(tag string) (domain.HeatType, error) {
	key := normalize(tag)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if alias, ok := r.aliases[key]; ok {
		return alias, nil
	}
	if _, ok := r.factories[domain.HeatType(key)]; ok {
		return domain.HeatType(key), nil
	}

	if suggestion := r.suggestLocked(key); suggestion != "" {
		return "", fmt.Errorf("%w: %q (did you mean %q?)", domain.ErrUnknownHeatType, tag, suggestion)
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownHeatType, tag)
}

// suggestLocked returns the registered tag or alias closest to key.
// Callers must hold r.mu.
func (r *DefaultStrategyRegistry) suggestLocked(key string) string {
	if key == "" {
		return ""
	}
	candidates := make([]string, 0, len(r.factories)+len(r.aliases))
	for t := range r.factories {
		candidates = append(candidates, string(t))
	}
	candidates = append(candidates, slices.Collect(maps.Keys(r.aliases))...)
	slices.Sort(candidates)

	best, bestDistance := "", maxSuggestionDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(key, c); d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best
}

// Strategy builds the ranking strategy for a heat type. Configured
// parameters for the type are passed to its factory.
func (r *DefaultStrategyRegistry) Strategy(heatType domain.HeatType) (domain.RankingStrategy, error) {
	resolved, err := r.Resolve(string(heatType))
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	factory := r.factories[resolved]
	params := maps.Clone(r.params[resolved])
	r.mu.RUnlock()

	if params == nil {
		params = make(map[string]any)
	}

	strategy, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create strategy for heat type %s: %w", resolved, err)
	}
	return strategy, nil
}

// Register installs a factory for a heat type tag, replacing any existing
// registration. The tag is stored case-folded.
func (r *DefaultStrategyRegistry) Register(heatType domain.HeatType, factory ports.StrategyFactory) error {
	key := domain.HeatType(normalize(string(heatType)))
	if key == "" {
		return fmt.Errorf("heat type cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[key] = factory
	return nil
}

// RegisterAlias makes alias resolve to an already registered heat type.
func (r *DefaultStrategyRegistry) RegisterAlias(alias string, heatType domain.HeatType) error {
	key := normalize(alias)
	target := domain.HeatType(normalize(string(heatType)))
	if key == "" {
		return fmt.Errorf("alias cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[target]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownHeatType, heatType)
	}
	r.aliases[key] = target
	return nil
}

// Configure sets the parameters passed to the factory of a registered
// heat type. The parameters are checked by building the strategy once.
func (r *DefaultStrategyRegistry) Configure(heatType domain.HeatType, params map[string]any) error {
	resolved, err := r.Resolve(string(heatType))
	if err != nil {
		return err
	}

	r.mu.RLock()
	factory := r.factories[resolved]
	r.mu.RUnlock()

	if _, err := factory(maps.Clone(params)); err != nil {
		return fmt.Errorf("%w: parameters for heat type %s: %w", domain.ErrInvalidConfiguration, resolved, err)
	}

	r.mu.Lock()
	r.params[resolved] = maps.Clone(params)
	r.mu.Unlock()
	return nil
}

// SupportedTypes returns the registered heat types in sorted order.
// Aliases are not included.
func (r *DefaultStrategyRegistry) SupportedTypes() []domain.HeatType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.factories))
}

// Apply registers and configures strategies from configuration. An entry
// with a base strategy registers a new heat type built by the base
// type's factory; an entry without one configures an existing type.
func (r *DefaultStrategyRegistry) Apply(configs []StrategyConfig) error {
	for _, sc := range configs {
		if sc.Base != "" {
			base, err := r.Resolve(sc.Base)
			if err != nil {
				return fmt.Errorf("strategy %s: %w", sc.HeatType, err)
			}
			r.mu.RLock()
			factory := r.factories[base]
			r.mu.RUnlock()
			if err := r.Register(domain.HeatType(sc.HeatType), factory); err != nil {
				return fmt.Errorf("strategy %s: %w", sc.HeatType, err)
			}
		}

		params, err := sc.Params()
		if err != nil {
			return fmt.Errorf("strategy %s: %w", sc.HeatType, err)
		}
		if err := r.Configure(domain.HeatType(sc.HeatType), params); err != nil {
			return fmt.Errorf("strategy %s: %w", sc.HeatType, err)
		}
	}
	return nil
}
