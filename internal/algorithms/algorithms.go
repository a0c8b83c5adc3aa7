// Package algorithms provides the pluggable components the solver pipeline
// is assembled from: eigenvalue estimators, reciprocal rotators and initial
// state preparers. Components are constructed through factories looked up in
// a Registry, so callers select implementations by name and pass parameters
// as loosely typed maps.
package algorithms

import (
	"github.com/aristath/qsolve/internal/linalg"
	"github.com/aristath/qsolve/internal/quantum"
)

// EigsProfile captures the tuning an eigenvalue estimator settled on.
// Reciprocal rotators derive their eigenvalue grid from it, so the resolver
// threads the profile from the estimator into the rotator factory.
type EigsProfile struct {
	NumAncillae   int
	EvoTime       float64
	NegativeEvals bool
}

// ExtractionLayout describes how a rotator arranges the solution amplitudes
// in the final statevector, which decides how the decoder reads them back.
type ExtractionLayout int

const (
	// LayoutBlock means the solution occupies one contiguous block of the
	// flagged half of the statevector.
	LayoutBlock ExtractionLayout = iota
	// LayoutStrided means the solution is spread across the flagged half
	// and must be folded together with a stride of the input dimension.
	LayoutStrided
)

func (l ExtractionLayout) String() string {
	switch l {
	case LayoutBlock:
		return "block"
	case LayoutStrided:
		return "strided"
	default:
		return "unknown"
	}
}

// EigenvalueEstimator writes an eigenvalue estimate of the system matrix
// into a fresh ancilla register, conditioned on the input register.
type EigenvalueEstimator interface {
	// RegisterSizes reports the input and ancilla register widths.
	RegisterSizes() (numInput, numAncilla int)

	// Profile reports the settings the rotator needs to invert eigenvalues.
	Profile() EigsProfile

	// ConstructCircuit builds the forward estimation circuit on the given
	// input register. The circuit is memoized so the inverse can be derived.
	ConstructCircuit(io *quantum.Register) (*quantum.Circuit, error)

	// ConstructInverse uncomputes the forward circuit. It fails if the
	// forward circuit has not been constructed yet.
	ConstructInverse() (*quantum.Circuit, error)

	// OutputRegister returns the ancilla register holding the estimate,
	// available after ConstructCircuit.
	OutputRegister() *quantum.Register
}

// Reciprocal rotates a fresh flag qubit by the inverse of the eigenvalue
// estimate held in the given register.
type Reciprocal interface {
	// ConstructCircuit builds the rotation circuit on the eigenvalue
	// register, allocating the flag register and any working registers.
	ConstructCircuit(eig *quantum.Register) (*quantum.Circuit, error)

	// FlagRegister returns the single qubit register marking success,
	// available after ConstructCircuit.
	FlagRegister() *quantum.Register

	// Layout reports how solution amplitudes end up arranged.
	Layout() ExtractionLayout
}

// InitialState loads a normalized amplitude vector into the input register.
type InitialState interface {
	ConstructCircuit(io *quantum.Register) (*quantum.Circuit, error)
}

// Factories build components from runtime parameters. Parameter maps come
// straight from API requests, so values may arrive as float64 even for
// integer settings.
type (
	EigsFactory         func(matrix linalg.Matrix, params map[string]any) (EigenvalueEstimator, error)
	ReciprocalFactory   func(profile EigsProfile, params map[string]any) (Reciprocal, error)
	InitialStateFactory func(numQubits int, amplitudes []complex128, params map[string]any) (InitialState, error)
)
