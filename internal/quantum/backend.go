package quantum

import (
	"context"
	"fmt"
)

// Backend executes circuits. Implementations must be safe for concurrent
// Execute calls; the tomography path dispatches variants from a worker pool.
type Backend interface {
	// Name identifies the backend in logs and results.
	Name() string
	// SupportsStatevector reports whether Execute yields exact amplitudes.
	// Backends without statevector support yield shot counts instead.
	SupportsStatevector() bool
	// Execute runs the given circuits and returns their results keyed by
	// circuit name.
	Execute(ctx context.Context, circuits ...*Circuit) (*Result, error)
}

// Result holds per-circuit outputs of one Execute call.
type Result struct {
	backendName  string
	shots        int
	statevectors map[string][]complex128
	counts       map[string]map[string]int
}

// BackendName returns the producing backend's name.
func (r *Result) BackendName() string { return r.backendName }

// Shots returns the shot count used, zero for exact backends.
func (r *Result) Shots() int { return r.shots }

// Statevector returns the final amplitudes of the named circuit. Only
// exact backends populate statevectors.
func (r *Result) Statevector(name string) ([]complex128, error) {
	sv, ok := r.statevectors[name]
	if !ok {
		return nil, fmt.Errorf("no statevector for circuit %q from backend %s", name, r.backendName)
	}
	return sv, nil
}

// Counts returns the measurement counts of the named circuit. Keys are
// bitstrings over all classical bits, most significant first, so the last
// character is classical bit 0.
func (r *Result) Counts(name string) (map[string]int, error) {
	c, ok := r.counts[name]
	if !ok {
		return nil, fmt.Errorf("no counts for circuit %q from backend %s", name, r.backendName)
	}
	return c, nil
}
