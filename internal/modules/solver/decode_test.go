package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsolve/internal/algorithms"
)

func TestExtractSolutionBlock(t *testing.T) {
	sv := []complex128{9, 9, 0.6, complex(0, 0.8)}

	vec, err := extractSolution(sv, 1, algorithms.LayoutBlock)
	require.NoError(t, err)
	assert.Equal(t, []complex128{0.6, complex(0, 0.8)}, vec)
}

func TestExtractSolutionStridedFoldsWorkBits(t *testing.T) {
	// One io qubit plus two working qubits: the flagged half holds eight
	// amplitudes, io alternating fastest.
	sv := make([]complex128, 16)
	for j := 0; j < 8; j++ {
		sv[8+j] = complex(float64(j+1), 0)
	}

	vec, err := extractSolution(sv, 1, algorithms.LayoutStrided)
	require.NoError(t, err)
	assert.Equal(t, []complex128{16, 20}, vec)
}

func TestExtractSolutionLayoutsAgreeWithoutWorkBits(t *testing.T) {
	sv := []complex128{9, 9, 0.6, complex(0, 0.8)}

	block, err := extractSolution(sv, 1, algorithms.LayoutBlock)
	require.NoError(t, err)
	strided, err := extractSolution(sv, 1, algorithms.LayoutStrided)
	require.NoError(t, err)
	assert.Equal(t, block, strided)
}

func TestExtractSolutionRejectsBadShapes(t *testing.T) {
	_, err := extractSolution(nil, 1, algorithms.LayoutBlock)
	require.ErrorContains(t, err, "not splittable")

	_, err = extractSolution([]complex128{1, 2, 3}, 1, algorithms.LayoutBlock)
	require.ErrorContains(t, err, "not splittable")

	_, err = extractSolution([]complex128{1, 0}, 2, algorithms.LayoutBlock)
	require.ErrorContains(t, err, "need 4")

	_, err = extractSolution([]complex128{1, 0, 0, 0}, 1, algorithms.ExtractionLayout(99))
	require.ErrorContains(t, err, "unknown extraction layout")
}
