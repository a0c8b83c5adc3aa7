package linalg

import (
	"math"
	"math/cmplx"
)

// Norm2 returns the Euclidean norm of v.
func Norm2(v []complex128) float64 {
	var sum float64
	for _, c := range v {
		sum += real(c)*real(c) + imag(c)*imag(c)
	}
	return math.Sqrt(sum)
}

// InnerProduct returns ⟨a, b⟩ = Σ conj(a_i)·b_i, conjugate-linear in the
// first argument. Kept explicit so the conjugation convention is visible at
// call sites.
func InnerProduct(a, b []complex128) complex128 {
	var sum complex128
	for i := range a {
		sum += cmplx.Conj(a[i]) * b[i]
	}
	return sum
}

// ScaleVec returns c·v as a new slice.
func ScaleVec(c complex128, v []complex128) []complex128 {
	out := make([]complex128, len(v))
	for i, x := range v {
		out[i] = c * x
	}
	return out
}

// Normalize returns v scaled to unit norm as a new slice. A zero vector is
// returned unchanged.
func Normalize(v []complex128) []complex128 {
	n := Norm2(v)
	if n == 0 {
		return append([]complex128(nil), v...)
	}
	return ScaleVec(complex(1/n, 0), v)
}

// CloneVec returns a copy of v.
func CloneVec(v []complex128) []complex128 {
	return append([]complex128(nil), v...)
}
