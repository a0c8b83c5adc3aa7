package solver

import "errors"

// Sentinel errors classifying solve failures. Pipeline stages wrap these
// together with the underlying cause, so callers can branch on the kind
// with errors.Is while the full chain stays intact for logs.
var (
	// ErrMissingDependency marks a required input or collaborator that was
	// not supplied.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrDimensionMismatch marks inputs whose shapes cannot form a solvable
	// system.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrConfiguration marks component selections or parameters that cannot
	// produce a runnable pipeline.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrBackendExecution marks failures while running circuits or decoding
	// their outputs.
	ErrBackendExecution = errors.New("backend execution failed")
)
