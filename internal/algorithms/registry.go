package algorithms

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/linalg"
)

// Registry manages the factories for all pluggable solver components.
type Registry struct {
	eigs        map[string]EigsFactory
	reciprocals map[string]ReciprocalFactory
	states      map[string]InitialStateFactory
	mu          sync.RWMutex
	log         zerolog.Logger
}

// NewRegistry creates an empty component registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		eigs:        make(map[string]EigsFactory),
		reciprocals: make(map[string]ReciprocalFactory),
		states:      make(map[string]InitialStateFactory),
		log:         log.With().Str("component", "algorithm_registry").Logger(),
	}
}

// RegisterEigs registers an eigenvalue estimator factory.
func (r *Registry) RegisterEigs(name string, factory EigsFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.eigs[name] = factory
	r.log.Debug().Str("name", name).Msg("Registered eigenvalue estimator")
}

// RegisterReciprocal registers a reciprocal rotator factory.
func (r *Registry) RegisterReciprocal(name string, factory ReciprocalFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reciprocals[name] = factory
	r.log.Debug().Str("name", name).Msg("Registered reciprocal rotator")
}

// RegisterInitialState registers an initial state preparer factory.
func (r *Registry) RegisterInitialState(name string, factory InitialStateFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[name] = factory
	r.log.Debug().Str("name", name).Msg("Registered initial state preparer")
}

// Eigs retrieves an eigenvalue estimator factory by name.
func (r *Registry) Eigs(name string) (EigsFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.eigs[name]
	if !ok {
		return nil, fmt.Errorf("eigenvalue estimator not found: %s", name)
	}
	return factory, nil
}

// Reciprocal retrieves a reciprocal rotator factory by name.
func (r *Registry) Reciprocal(name string) (ReciprocalFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.reciprocals[name]
	if !ok {
		return nil, fmt.Errorf("reciprocal rotator not found: %s", name)
	}
	return factory, nil
}

// InitialState retrieves an initial state preparer factory by name.
func (r *Registry) InitialState(name string) (InitialStateFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.states[name]
	if !ok {
		return nil, fmt.Errorf("initial state preparer not found: %s", name)
	}
	return factory, nil
}

// EigsNames returns the registered estimator names, sorted.
func (r *Registry) EigsNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.eigs)
}

// ReciprocalNames returns the registered rotator names, sorted.
func (r *Registry) ReciprocalNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.reciprocals)
}

// InitialStateNames returns the registered preparer names, sorted.
func (r *Registry) InitialStateNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.states)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewPopulatedRegistry creates a registry with all built-in components
// registered under their canonical names.
func NewPopulatedRegistry(log zerolog.Logger) *Registry {
	registry := NewRegistry(log)

	registry.RegisterEigs("qpe", func(matrix linalg.Matrix, params map[string]any) (EigenvalueEstimator, error) {
		return NewQPE(matrix, params, log)
	})
	registry.RegisterReciprocal("lookup", func(profile EigsProfile, params map[string]any) (Reciprocal, error) {
		return NewLookup(profile, params, log)
	})
	registry.RegisterReciprocal("longdivision", func(profile EigsProfile, params map[string]any) (Reciprocal, error) {
		return NewLongDivision(profile, params, log)
	})
	registry.RegisterInitialState("custom", func(numQubits int, amplitudes []complex128, params map[string]any) (InitialState, error) {
		return NewCustom(numQubits, amplitudes, params)
	})

	log.Info().
		Int("estimators", len(registry.eigs)).
		Int("rotators", len(registry.reciprocals)).
		Int("preparers", len(registry.states)).
		Msg("Algorithm registry initialized")

	return registry
}
