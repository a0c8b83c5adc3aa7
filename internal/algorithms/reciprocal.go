package algorithms

import (
	"fmt"
	"math"
)

// eigenvalueEstimate translates an ancilla register value into the
// eigenvalue it encodes under the given profile. With negative eigenvalues
// enabled the upper half of the range wraps to negative values.
func eigenvalueEstimate(m, n int, profile EigsProfile) float64 {
	delta := 2 * math.Pi / (float64(n) * profile.EvoTime)
	if profile.NegativeEvals && m >= n/2 {
		return float64(m-n) * delta
	}
	return float64(m) * delta
}

// reciprocalAmplitudes returns the rotation amplitude C/λ(m) for every
// ancilla value. C is the smallest representable eigenvalue magnitude scaled
// down by scale, which keeps every amplitude within [-1, 1]. Value zero
// encodes no eigenvalue information and gets amplitude zero.
func reciprocalAmplitudes(n int, scale float64, profile EigsProfile) []float64 {
	delta := 2 * math.Pi / (float64(n) * profile.EvoTime)
	c := scale * delta

	amps := make([]float64, n)
	for m := 1; m < n; m++ {
		amps[m] = c / eigenvalueEstimate(m, n, profile)
	}
	return amps
}

// rotationMatrix builds a block-diagonal unitary over [eig..., flag] that
// rotates the flag qubit by sin(θ/2) = amps[m] when the eigenvalue register
// holds m.
func rotationMatrix(amps []float64) []complex128 {
	n := len(amps)
	dim := 2 * n
	out := make([]complex128, dim*dim)
	for m, a := range amps {
		cs := 1 - a*a
		if cs < 0 {
			cs = 0
		}
		c := complex(math.Sqrt(cs), 0)
		s := complex(a, 0)
		out[m*dim+m] = c
		out[(n+m)*dim+m] = s
		out[m*dim+(n+m)] = -s
		out[(n+m)*dim+(n+m)] = c
	}
	return out
}

// toggleMatrix builds a block-diagonal unitary over [eig..., bit] that flips
// the extra qubit exactly for eigenvalue register values with toggle set.
func toggleMatrix(toggle []bool) []complex128 {
	n := len(toggle)
	dim := 2 * n
	out := make([]complex128, dim*dim)
	for m, flip := range toggle {
		if flip {
			out[m*dim+(n+m)] = 1
			out[(n+m)*dim+m] = 1
		} else {
			out[m*dim+m] = 1
			out[(n+m)*dim+(n+m)] = 1
		}
	}
	return out
}

func validateScale(scale float64) error {
	if scale <= 0 || scale > 1 {
		return fmt.Errorf("scale must be in (0, 1], got %g", scale)
	}
	return nil
}

func validateProfile(profile EigsProfile) error {
	if profile.EvoTime <= 0 {
		return fmt.Errorf("profile has no evolution time")
	}
	if profile.NumAncillae < 1 {
		return fmt.Errorf("profile has no ancilla count")
	}
	return nil
}
