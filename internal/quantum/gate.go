package quantum

import (
	"math"
	"math/cmplx"
)

// Standard single-qubit gate matrices. All matrices are row-major.

// HMatrix returns the Hadamard gate.
func HMatrix() []complex128 {
	h := complex(1/math.Sqrt2, 0)
	return []complex128{
		h, h,
		h, -h,
	}
}

// XMatrix returns the Pauli-X gate.
func XMatrix() []complex128 {
	return []complex128{
		0, 1,
		1, 0,
	}
}

// YMatrix returns the Pauli-Y gate.
func YMatrix() []complex128 {
	return []complex128{
		0, -1i,
		1i, 0,
	}
}

// ZMatrix returns the Pauli-Z gate.
func ZMatrix() []complex128 {
	return []complex128{
		1, 0,
		0, -1,
	}
}

// SDagMatrix returns the adjoint phase gate S†.
func SDagMatrix() []complex128 {
	return []complex128{
		1, 0,
		0, -1i,
	}
}

// RYMatrix returns the Y-axis rotation by theta.
func RYMatrix(theta float64) []complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return []complex128{
		c, -s,
		s, c,
	}
}

// ControlledMatrix lifts a unitary to its controlled version. The control
// occupies the local most significant bit, so the result acts on targets
// [u targets..., control].
func ControlledMatrix(u []complex128, dim int) []complex128 {
	out := make([]complex128, 4*dim*dim)
	for i := 0; i < dim; i++ {
		out[i*2*dim+i] = 1
	}
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			out[(dim+r)*2*dim+(dim+c)] = u[r*dim+c]
		}
	}
	return out
}

// QFTMatrix returns the quantum Fourier transform over n qubits as a dense
// unitary: F[j][k] = exp(2πi·jk/N)/√N. On a simulator the exact synthesis
// replaces the usual rotation-ladder decomposition.
func QFTMatrix(n int) []complex128 {
	size := 1 << n
	norm := complex(1/math.Sqrt(float64(size)), 0)
	out := make([]complex128, size*size)
	for j := 0; j < size; j++ {
		for k := 0; k < size; k++ {
			angle := 2 * math.Pi * float64(j*k) / float64(size)
			out[j*size+k] = norm * cmplx.Exp(complex(0, angle))
		}
	}
	return out
}

// InverseQFTMatrix returns the inverse quantum Fourier transform over n
// qubits.
func InverseQFTMatrix(n int) []complex128 {
	size := 1 << n
	norm := complex(1/math.Sqrt(float64(size)), 0)
	out := make([]complex128, size*size)
	for j := 0; j < size; j++ {
		for k := 0; k < size; k++ {
			angle := -2 * math.Pi * float64(j*k) / float64(size)
			out[j*size+k] = norm * cmplx.Exp(complex(0, angle))
		}
	}
	return out
}
