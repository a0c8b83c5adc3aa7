package algorithms

import (
	"fmt"

	"github.com/aristath/qsolve/internal/linalg"
	"github.com/aristath/qsolve/internal/quantum"
)

// orthogonalResidualTol decides when a candidate basis vector is considered
// linearly dependent during unitary completion.
const orthogonalResidualTol = 1e-9

// Custom prepares the input register in an arbitrary amplitude vector. The
// vector is normalized and completed to a full unitary whose first column is
// the target state, so applying it to |0...0⟩ loads the state exactly.
type Custom struct {
	numQubits  int
	amplitudes []complex128
}

// NewCustom creates a state preparer for the given amplitudes. The vector
// must have 2^numQubits entries and a nonzero norm.
func NewCustom(numQubits int, amplitudes []complex128, _ map[string]any) (*Custom, error) {
	if numQubits < 1 {
		return nil, fmt.Errorf("state needs at least 1 qubit, got %d", numQubits)
	}
	dim := 1 << numQubits
	if len(amplitudes) != dim {
		return nil, fmt.Errorf("amplitude vector has %d entries, want %d", len(amplitudes), dim)
	}
	if linalg.Norm2(amplitudes) == 0 {
		return nil, fmt.Errorf("amplitude vector is zero")
	}

	return &Custom{
		numQubits:  numQubits,
		amplitudes: linalg.Normalize(amplitudes),
	}, nil
}

// ConstructCircuit builds the preparation circuit on the input register.
func (s *Custom) ConstructCircuit(io *quantum.Register) (*quantum.Circuit, error) {
	if io == nil || io.Size != s.numQubits {
		return nil, fmt.Errorf("input register must have %d qubits", s.numQubits)
	}

	u, err := completeUnitary(s.amplitudes)
	if err != nil {
		return nil, err
	}

	c := quantum.NewCircuit("initialize", io)
	targets := make([]quantum.QubitRef, io.Size)
	for i := range targets {
		targets[i] = io.Bit(i)
	}
	if err := c.Gate("initialize", u, targets...); err != nil {
		return nil, err
	}
	return c, nil
}

// completeUnitary extends a unit vector to an orthonormal basis and returns
// the row-major unitary with the vector as its first column. The remaining
// columns are built by Gram-Schmidt over the standard basis.
func completeUnitary(first []complex128) ([]complex128, error) {
	dim := len(first)
	cols := make([][]complex128, 0, dim)
	cols = append(cols, linalg.CloneVec(first))

	for k := 0; k < dim && len(cols) < dim; k++ {
		cand := make([]complex128, dim)
		cand[k] = 1
		for _, col := range cols {
			proj := linalg.InnerProduct(col, cand)
			for i := range cand {
				cand[i] -= proj * col[i]
			}
		}
		if linalg.Norm2(cand) < orthogonalResidualTol {
			continue
		}
		cols = append(cols, linalg.Normalize(cand))
	}
	if len(cols) != dim {
		return nil, fmt.Errorf("failed to complete %d-dimensional unitary", dim)
	}

	u := make([]complex128, dim*dim)
	for c, col := range cols {
		for r, v := range col {
			u[r*dim+c] = v
		}
	}
	return u, nil
}
