// Package solver orchestrates the quantum linear system pipeline: it
// normalizes the input system, resolves pluggable components, assembles the
// circuit, runs it on a backend and decodes the solution estimate.
package solver

import (
	"github.com/aristath/qsolve/internal/linalg"
)

// Solve modes.
const (
	// ModeCircuit assembles the pipeline and reports its structure without
	// executing anything.
	ModeCircuit = "circuit"

	// ModeEvaluate assembles, executes and decodes the pipeline.
	ModeEvaluate = "evaluate"
)

// ComponentSpec selects a pluggable component by registry name, with
// optional parameters passed through to its factory.
type ComponentSpec struct {
	Name   string                 `json:"name"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// Request describes one linear system solve.
type Request struct {
	Matrix [][]complex128
	Vector []complex128
	Mode   string

	Eigs         *ComponentSpec
	Reciprocal   *ComponentSpec
	InitialState *ComponentSpec
}

// LinearSystem is a normalized solve input: square, power-of-two dimension,
// embedding already applied.
type LinearSystem struct {
	Matrix    linalg.Matrix
	Vector    []complex128
	NumQubits int
}

// RegisterSummary describes one register of the assembled circuit, in wire
// order.
type RegisterSummary struct {
	Name string `json:"name"`
	Size int    `json:"size"`
	Kind string `json:"kind"`
}

// Register summary kinds.
const (
	RegisterKindQuantum   = "quantum"
	RegisterKindClassical = "classical"
)

// ComponentCatalog lists the resolvable component names per role together
// with the defaults used when a request leaves a role unset.
type ComponentCatalog struct {
	Eigs                []string `json:"eigs"`
	Reciprocals         []string `json:"reciprocals"`
	InitialStates       []string `json:"initial_states"`
	DefaultEigs         string   `json:"default_eigs"`
	DefaultReciprocal   string   `json:"default_reciprocal"`
	DefaultInitialState string   `json:"default_initial_state"`
}

// Result is the outcome of one solve. Circuit mode fills the structural
// fields only; evaluate mode adds the decoded estimate and its comparison
// against the classical solution.
type Result struct {
	RequestID string
	Mode      string
	Backend   string

	CircuitName    string
	Registers      []RegisterSummary
	CircuitWidth   int
	CircuitDepth   int
	OperationCount int

	// Inputs after normalization, so padded when the raw system was not a
	// power of two.
	InputMatrix [][]complex128
	InputVector []complex128

	ClassicalEigenvalues []float64
	ClassicalSolution    []complex128

	// SuccessProbability is the squared norm of the flagged amplitudes on
	// exact backends. Sampling backends report per-setting probabilities
	// instead, parallel to BasisSettings.
	SuccessProbability   *float64
	BasisSettings        []string
	SettingProbabilities []float64

	// EstimatedSolution is the decoded, normalized solution direction.
	// Solution is the same estimate rescaled back into solution units.
	EstimatedSolution []complex128
	Fidelity          *float64
	Solution          []complex128
}
