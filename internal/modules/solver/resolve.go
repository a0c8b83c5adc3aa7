package solver

import (
	"fmt"

	"github.com/aristath/qsolve/internal/algorithms"
)

// Default component names used when a request leaves a role unspecified.
const (
	DefaultEigs         = "qpe"
	DefaultReciprocal   = "lookup"
	DefaultInitialState = "custom"
)

// components holds the constructed pluggable parts of one pipeline.
type components struct {
	eigs    algorithms.EigenvalueEstimator
	state   algorithms.InitialState
	rotator algorithms.Reciprocal
	profile algorithms.EigsProfile
}

// resolveComponents looks up and constructs the estimator, preparer and
// rotator for one solve. The estimator comes first so its profile can be
// threaded into the rotator factory.
func (s *Service) resolveComponents(sys *LinearSystem, req *Request) (*components, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("resolve: %w: component registry not configured", ErrMissingDependency)
	}

	eigsSpec := specOrDefault(req.Eigs, DefaultEigs)
	eigsFactory, err := s.registry.Eigs(eigsSpec.Name)
	if err != nil {
		return nil, fmt.Errorf("resolve estimator: %w: %w", ErrConfiguration, err)
	}
	eigs, err := eigsFactory(sys.Matrix, eigsSpec.Params)
	if err != nil {
		return nil, fmt.Errorf("resolve estimator %q: %w: %w", eigsSpec.Name, ErrConfiguration, err)
	}
	numInput, _ := eigs.RegisterSizes()
	if numInput != sys.NumQubits {
		return nil, fmt.Errorf("resolve estimator %q: %w: estimator spans %d qubits, system needs %d",
			eigsSpec.Name, ErrConfiguration, numInput, sys.NumQubits)
	}

	stateSpec := specOrDefault(req.InitialState, DefaultInitialState)
	stateFactory, err := s.registry.InitialState(stateSpec.Name)
	if err != nil {
		return nil, fmt.Errorf("resolve preparer: %w: %w", ErrConfiguration, err)
	}
	state, err := stateFactory(sys.NumQubits, sys.Vector, stateSpec.Params)
	if err != nil {
		return nil, fmt.Errorf("resolve preparer %q: %w: %w", stateSpec.Name, ErrConfiguration, err)
	}

	profile := eigs.Profile()

	rotSpec := specOrDefault(req.Reciprocal, DefaultReciprocal)
	rotFactory, err := s.registry.Reciprocal(rotSpec.Name)
	if err != nil {
		return nil, fmt.Errorf("resolve rotator: %w: %w", ErrConfiguration, err)
	}
	rotator, err := rotFactory(profile, rotSpec.Params)
	if err != nil {
		return nil, fmt.Errorf("resolve rotator %q: %w: %w", rotSpec.Name, ErrConfiguration, err)
	}

	return &components{eigs: eigs, state: state, rotator: rotator, profile: profile}, nil
}

// specOrDefault fills in the default component name when a request leaves
// the role unset, keeping any parameters that were supplied.
func specOrDefault(spec *ComponentSpec, defaultName string) ComponentSpec {
	out := ComponentSpec{Name: defaultName}
	if spec != nil {
		if spec.Name != "" {
			out.Name = spec.Name
		}
		out.Params = spec.Params
	}
	return out
}
