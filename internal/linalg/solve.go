package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// embedReal builds the real 2n×2n embedding [A -B; B A] of m = A + iB.
func embedReal(m Matrix) *mat.Dense {
	n := m.Dim()
	e := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			re := real(m.At(i, j))
			im := imag(m.At(i, j))
			e.Set(i, j, re)
			e.Set(i, j+n, -im)
			e.Set(i+n, j, im)
			e.Set(i+n, j+n, re)
		}
	}
	return e
}

// Solve solves the complex linear system a·x = b. The complex system is
// lifted to its real embedding and handed to gonum's LU-backed dense solver.
func Solve(a Matrix, b []complex128) ([]complex128, error) {
	n := a.Dim()
	if len(b) != n {
		return nil, fmt.Errorf("solve: matrix is %d×%d but vector has length %d", n, n, len(b))
	}

	e := embedReal(a)

	rhs := mat.NewVecDense(2*n, nil)
	for i := 0; i < n; i++ {
		rhs.SetVec(i, real(b[i]))
		rhs.SetVec(i+n, imag(b[i]))
	}

	var x mat.VecDense
	if err := x.SolveVec(e, rhs); err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		out[i] = complex(x.AtVec(i), x.AtVec(i+n))
	}
	return out, nil
}
