package linalg

import "math"

// Expm computes the matrix exponential exp(m) by scaling and squaring with
// a Taylor expansion of the scaled matrix. gonum's (*Dense).Exp covers only
// real matrices; the evolution unitaries exp(iAt) need the complex case.
func Expm(m Matrix) Matrix {
	n := m.Dim()

	// Scale so the series converges fast: ‖m/2^s‖₁ <= 0.5.
	s := 0
	if norm := m.OneNorm(); norm > 0.5 {
		s = int(math.Ceil(math.Log2(norm / 0.5)))
	}
	scaled := m.Scale(complex(1/math.Pow(2, float64(s)), 0))

	// Taylor series on the scaled matrix. With norm <= 0.5 the terms decay
	// past double precision well before k = 24.
	result := Identity(n)
	term := Identity(n)
	for k := 1; k <= 24; k++ {
		term = term.Mul(scaled).Scale(complex(1/float64(k), 0))
		result = result.Add(term)
		if term.OneNorm() < 1e-18 {
			break
		}
	}

	// Undo the scaling: exp(m) = exp(m/2^s)^(2^s).
	for i := 0; i < s; i++ {
		result = result.Mul(result)
	}
	return result
}
