package quantum

import (
	"fmt"
	"math/bits"
)

// State is a statevector over n qubits, 2^n complex amplitudes.
type State struct {
	n    int
	amps []complex128
}

// NewState returns the all-zeros state |0...0⟩.
func NewState(n int) *State {
	amps := make([]complex128, 1<<n)
	amps[0] = 1
	return &State{n: n, amps: amps}
}

// NumQubits returns the qubit count.
func (s *State) NumQubits() int { return s.n }

// Amplitudes returns the backing amplitude slice. Callers that hold onto
// the result across further gate applications must copy it.
func (s *State) Amplitudes() []complex128 { return s.amps }

// Probabilities returns |amplitude|² per basis state.
func (s *State) Probabilities() []float64 {
	probs := make([]float64, len(s.amps))
	for i, a := range s.amps {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return probs
}

// Apply multiplies the state by a k-qubit unitary acting on the given
// global qubit indices. targets[0] is the least significant bit of the
// gate's local index. The amplitudes touched by one application are the
// 2^k-element groups that agree on every non-target bit.
func (s *State) Apply(matrix []complex128, targets []int) error {
	k := len(targets)
	dim := 1 << k
	if len(matrix) != dim*dim {
		return fmt.Errorf("apply: matrix has %d entries, want %d for %d qubits", len(matrix), dim*dim, k)
	}

	targetMask := 0
	for _, t := range targets {
		if t < 0 || t >= s.n {
			return fmt.Errorf("apply: qubit index %d out of range [0,%d)", t, s.n)
		}
		targetMask |= 1 << t
	}
	if bits.OnesCount(uint(targetMask)) != k {
		return fmt.Errorf("apply: duplicate target qubits")
	}

	// patterns[j] sets the target bits according to local index j.
	patterns := make([]int, dim)
	for j := 1; j < dim; j++ {
		p := 0
		for b := 0; b < k; b++ {
			if j>>b&1 == 1 {
				p |= 1 << targets[b]
			}
		}
		patterns[j] = p
	}

	sub := make([]complex128, dim)
	total := 1 << s.n
	for base := 0; base < total; base++ {
		if base&targetMask != 0 {
			continue
		}
		for j := 0; j < dim; j++ {
			sub[j] = s.amps[base|patterns[j]]
		}
		for j := 0; j < dim; j++ {
			var acc complex128
			row := matrix[j*dim : (j+1)*dim]
			for l := 0; l < dim; l++ {
				acc += row[l] * sub[l]
			}
			s.amps[base|patterns[j]] = acc
		}
	}
	return nil
}

// runGates applies every gate of the circuit in order and collects the
// measurement operations. Measurements must be terminal: a gate following
// a measurement is rejected, since the simulators sample from the final
// distribution.
func runGates(c *Circuit) (*State, []Operation, error) {
	st := NewState(c.NumQubits())
	var measures []Operation

	for _, op := range c.Operations() {
		switch op.Kind {
		case OpMeasure:
			measures = append(measures, op)
		case OpGate:
			if len(measures) > 0 {
				return nil, nil, fmt.Errorf("circuit %s: gate %q after measurement, measurements must be terminal", c.Name, op.Name)
			}
			idxs := make([]int, len(op.Targets))
			for i, t := range op.Targets {
				idx, err := c.QubitIndex(t)
				if err != nil {
					return nil, nil, fmt.Errorf("circuit %s: %w", c.Name, err)
				}
				idxs[i] = idx
			}
			if err := st.Apply(op.Matrix, idxs); err != nil {
				return nil, nil, fmt.Errorf("circuit %s, gate %q: %w", c.Name, op.Name, err)
			}
		}
	}
	return st, measures, nil
}
