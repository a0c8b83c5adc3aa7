package solver

import (
	"fmt"
	"math/cmplx"

	"github.com/aristath/qsolve/internal/linalg"
)

// evaluation holds the decoded estimate together with its classical
// comparison.
type evaluation struct {
	estimate []complex128
	fidelity float64
	solution []complex128
}

// postprocess compares the decoded estimate with the exact classical
// solution and rescales it back into solution units. The magnitude comes
// from the ratio of right-hand side norms under the system map, the phase
// from the average residual angle between b and A·x.
func postprocess(sys *LinearSystem, estimate []complex128) (*evaluation, error) {
	if linalg.Norm2(estimate) == 0 {
		return nil, fmt.Errorf("solution estimate vanished")
	}

	exact, err := linalg.Solve(sys.Matrix, sys.Vector)
	if err != nil {
		return nil, fmt.Errorf("classical solve: %w", err)
	}
	reference := linalg.Normalize(exact)

	overlap := linalg.InnerProduct(estimate, reference)
	fidelity := real(overlap)*real(overlap) + imag(overlap)*imag(overlap)

	image := sys.Matrix.MulVec(estimate)
	f1 := linalg.Norm2(sys.Vector) / linalg.Norm2(image)

	f2 := 0.0
	for i := range sys.Vector {
		p := sys.Vector[i] * cmplx.Conj(image[i])
		// Shifting through the origin turns a negative-zero product into a
		// positive zero, so exact zeros contribute phase 0 instead of -pi.
		f2 += cmplx.Phase(p - 1 + 1)
	}
	f2 /= float64(sys.NumQubits)

	scale := complex(f1, 0) * cmplx.Exp(complex(0, -f2))
	return &evaluation{
		estimate: estimate,
		fidelity: fidelity,
		solution: linalg.ScaleVec(scale, estimate),
	}, nil
}
