package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// HermitianTol is the relative tolerance used when checking Hermitian-ness
// of user-supplied matrices.
const HermitianTol = 1e-10

// HermitianEigen holds the eigendecomposition of a Hermitian matrix.
// Values are ascending; Vectors[k] is the unit eigenvector for Values[k].
type HermitianEigen struct {
	Values  []float64
	Vectors [][]complex128
}

// symEmbedding builds the symmetric real embedding of a Hermitian matrix.
// Every eigenvalue of m appears in the embedding with doubled multiplicity.
func symEmbedding(m Matrix) *mat.SymDense {
	n := m.Dim()
	data := make([]float64, 4*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			re := real(m.At(i, j))
			im := imag(m.At(i, j))
			data[i*2*n+j] = re
			data[i*2*n+j+n] = -im
			data[(i+n)*2*n+j] = im
			data[(i+n)*2*n+j+n] = re
		}
	}
	return mat.NewSymDense(2*n, data)
}

// Eigenvalues returns the ascending eigenvalues of a Hermitian matrix.
func Eigenvalues(a Matrix) ([]float64, error) {
	if !a.IsHermitian(HermitianTol) {
		return nil, fmt.Errorf("eigenvalues: matrix is not Hermitian")
	}

	var es mat.EigenSym
	if ok := es.Factorize(symEmbedding(a), false); !ok {
		return nil, fmt.Errorf("eigenvalues: factorization failed")
	}

	doubled := es.Values(nil)
	// Each eigenvalue of the complex matrix shows up twice in the embedding;
	// the sorted list is [λ1, λ1, λ2, λ2, ...].
	out := make([]float64, 0, a.Dim())
	for i := 0; i < len(doubled); i += 2 {
		out = append(out, doubled[i])
	}
	return out, nil
}

// EigenHermitian returns the full eigendecomposition of a Hermitian matrix.
//
// The embedding doubles every eigenspace: if z = x + iy is an eigenvector
// then [x;y] and [-y;x] are both real eigenvectors for the same eigenvalue.
// Mapping each real eigenvector back to x + iy and running a complex
// Gram-Schmidt over the results recovers one orthonormal complex basis
// vector per doubled pair.
func EigenHermitian(a Matrix) (*HermitianEigen, error) {
	if !a.IsHermitian(HermitianTol) {
		return nil, fmt.Errorf("eigen: matrix is not Hermitian")
	}

	n := a.Dim()

	var es mat.EigenSym
	if ok := es.Factorize(symEmbedding(a), true); !ok {
		return nil, fmt.Errorf("eigen: factorization failed")
	}

	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	const independenceTol = 1e-8

	values := make([]float64, 0, n)
	vectors := make([][]complex128, 0, n)

	for col := 0; col < 2*n && len(vectors) < n; col++ {
		z := make([]complex128, n)
		for i := 0; i < n; i++ {
			z[i] = complex(vecs.At(i, col), vecs.At(i+n, col))
		}

		// Project out every accepted direction. Directions from distinct
		// eigenvalues are already orthogonal, so this only strips the
		// duplicate partner within a doubled eigenspace.
		for _, u := range vectors {
			coeff := InnerProduct(u, z)
			for i := range z {
				z[i] -= coeff * u[i]
			}
		}

		if Norm2(z) < independenceTol {
			continue
		}

		values = append(values, vals[col])
		vectors = append(vectors, Normalize(z))
	}

	if len(vectors) != n {
		return nil, fmt.Errorf("eigen: recovered %d of %d eigenvectors", len(vectors), n)
	}

	return &HermitianEigen{Values: values, Vectors: vectors}, nil
}
