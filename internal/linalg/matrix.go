// Package linalg provides dense complex linear algebra for small systems.
//
// Complex solves and Hermitian eigenproblems are delegated to gonum through
// the real embedding of a complex matrix: M = A + iB maps to the real block
// matrix [A -B; B A], which is symmetric exactly when M is Hermitian. The
// matrix exponential is the one kernel computed directly on complex data.
package linalg

import (
	"fmt"
	"math/cmplx"
)

// Matrix is a square, dense, row-major complex matrix. The zero value is not
// usable; construct with NewMatrix, Identity or FromRows. Matrix values share
// backing storage; use Clone for an independent copy.
type Matrix struct {
	n    int
	data []complex128
}

// NewMatrix returns an n×n zero matrix.
func NewMatrix(n int) Matrix {
	return Matrix{n: n, data: make([]complex128, n*n)}
}

// Identity returns the n×n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// FromRows builds a matrix from row slices. The input must be square.
func FromRows(rows [][]complex128) (Matrix, error) {
	n := len(rows)
	if n == 0 {
		return Matrix{}, fmt.Errorf("matrix has no rows")
	}
	m := NewMatrix(n)
	for i, row := range rows {
		if len(row) != n {
			return Matrix{}, fmt.Errorf("matrix is not square: row %d has %d columns, want %d", i, len(row), n)
		}
		copy(m.data[i*n:(i+1)*n], row)
	}
	return m, nil
}

// Dim returns the matrix side length.
func (m Matrix) Dim() int { return m.n }

// At returns the element at row i, column j.
func (m Matrix) At(i, j int) complex128 { return m.data[i*m.n+j] }

// Set stores v at row i, column j.
func (m Matrix) Set(i, j int, v complex128) { m.data[i*m.n+j] = v }

// Data returns the underlying row-major storage. The slice is shared with
// the matrix, not copied.
func (m Matrix) Data() []complex128 { return m.data }

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	out := NewMatrix(m.n)
	copy(out.data, m.data)
	return out
}

// Rows returns the matrix as row slices (copied).
func (m Matrix) Rows() [][]complex128 {
	rows := make([][]complex128, m.n)
	for i := 0; i < m.n; i++ {
		rows[i] = append([]complex128(nil), m.data[i*m.n:(i+1)*m.n]...)
	}
	return rows
}

// Mul returns the matrix product m·b.
func (m Matrix) Mul(b Matrix) Matrix {
	if m.n != b.n {
		panic(fmt.Sprintf("linalg: dimension mismatch in Mul: %d vs %d", m.n, b.n))
	}
	out := NewMatrix(m.n)
	for i := 0; i < m.n; i++ {
		for k := 0; k < m.n; k++ {
			a := m.data[i*m.n+k]
			if a == 0 {
				continue
			}
			for j := 0; j < m.n; j++ {
				out.data[i*m.n+j] += a * b.data[k*m.n+j]
			}
		}
	}
	return out
}

// MulVec returns the matrix-vector product m·x.
func (m Matrix) MulVec(x []complex128) []complex128 {
	if len(x) != m.n {
		panic(fmt.Sprintf("linalg: dimension mismatch in MulVec: %d vs %d", m.n, len(x)))
	}
	out := make([]complex128, m.n)
	for i := 0; i < m.n; i++ {
		var sum complex128
		for j := 0; j < m.n; j++ {
			sum += m.data[i*m.n+j] * x[j]
		}
		out[i] = sum
	}
	return out
}

// Add returns m + b.
func (m Matrix) Add(b Matrix) Matrix {
	if m.n != b.n {
		panic(fmt.Sprintf("linalg: dimension mismatch in Add: %d vs %d", m.n, b.n))
	}
	out := NewMatrix(m.n)
	for i := range m.data {
		out.data[i] = m.data[i] + b.data[i]
	}
	return out
}

// Scale returns c·m.
func (m Matrix) Scale(c complex128) Matrix {
	out := NewMatrix(m.n)
	for i := range m.data {
		out.data[i] = c * m.data[i]
	}
	return out
}

// ConjTranspose returns the conjugate transpose m†.
func (m Matrix) ConjTranspose() Matrix {
	out := NewMatrix(m.n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			out.data[j*m.n+i] = cmplx.Conj(m.data[i*m.n+j])
		}
	}
	return out
}

// OneNorm returns the maximum absolute column sum.
func (m Matrix) OneNorm() float64 {
	var max float64
	for j := 0; j < m.n; j++ {
		var sum float64
		for i := 0; i < m.n; i++ {
			sum += cmplx.Abs(m.data[i*m.n+j])
		}
		if sum > max {
			max = sum
		}
	}
	return max
}

// IsHermitian reports whether m equals its conjugate transpose within tol,
// relative to the matrix scale.
func (m Matrix) IsHermitian(tol float64) bool {
	scale := m.OneNorm()
	if scale == 0 {
		return true
	}
	for i := 0; i < m.n; i++ {
		for j := i; j < m.n; j++ {
			if cmplx.Abs(m.data[i*m.n+j]-cmplx.Conj(m.data[j*m.n+i])) > tol*scale {
				return false
			}
		}
	}
	return true
}

// Kron returns the Kronecker product a⊗b.
func Kron(a, b Matrix) Matrix {
	n := a.n * b.n
	out := NewMatrix(n)
	for i := 0; i < a.n; i++ {
		for j := 0; j < a.n; j++ {
			av := a.data[i*a.n+j]
			if av == 0 {
				continue
			}
			for k := 0; k < b.n; k++ {
				for l := 0; l < b.n; l++ {
					out.data[(i*b.n+k)*n+(j*b.n+l)] = av * b.data[k*b.n+l]
				}
			}
		}
	}
	return out
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Log2 returns log2(n) for a power of two n.
func Log2(n int) int {
	k := 0
	for n > 1 {
		n >>= 1
		k++
	}
	return k
}
