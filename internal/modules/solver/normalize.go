package solver

import (
	"fmt"

	"github.com/aristath/qsolve/internal/linalg"
)

// Normalize validates the raw system and embeds it into the smallest
// power-of-two dimension. The matrix grows by an identity block and the
// vector by filler ones, so the added unknowns decouple from the original
// ones and solve to the filler value. Inputs are copied, never mutated.
func Normalize(matrix [][]complex128, vector []complex128) (*LinearSystem, error) {
	if len(matrix) == 0 {
		return nil, fmt.Errorf("normalize: %w: matrix is required", ErrMissingDependency)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("normalize: %w: vector is required", ErrMissingDependency)
	}

	m, err := linalg.FromRows(matrix)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w: %w", ErrDimensionMismatch, err)
	}

	vec := linalg.CloneVec(vector)
	if dim := m.Dim(); !linalg.IsPowerOfTwo(dim) {
		side := linalg.NextPowerOfTwo(dim)
		if len(vec) > side {
			return nil, fmt.Errorf("normalize: %w: vector has %d entries, embedded system has %d",
				ErrDimensionMismatch, len(vec), side)
		}
		grown := linalg.Identity(side)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				grown.Set(i, j, m.At(i, j))
			}
		}
		m = grown

		padded := make([]complex128, side)
		for i := range padded {
			padded[i] = 1
		}
		copy(padded, vec)
		vec = padded
	}

	if m.Dim() != len(vec) {
		return nil, fmt.Errorf("normalize: %w: vector has %d entries for a %dx%d matrix",
			ErrDimensionMismatch, len(vec), m.Dim(), m.Dim())
	}
	if m.Dim() < 2 {
		return nil, fmt.Errorf("normalize: %w: system needs at least 2 unknowns", ErrConfiguration)
	}

	return &LinearSystem{
		Matrix:    m,
		Vector:    vec,
		NumQubits: linalg.Log2(m.Dim()),
	}, nil
}
