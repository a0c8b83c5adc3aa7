package algorithms

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsolve/internal/quantum"
)

func TestLookupRotationAmplitudes(t *testing.T) {
	profile := EigsProfile{NumAncillae: 2, EvoTime: 1}
	rot, err := NewLookup(profile, nil, testLogger())
	require.NoError(t, err)
	assert.Equal(t, LayoutBlock, rot.Layout())

	eig := quantum.NewRegister(2, "eigs")
	rc, err := rot.ConstructCircuit(eig)
	require.NoError(t, err)
	require.NotNil(t, rot.FlagRegister())
	assert.Equal(t, 1, rot.FlagRegister().Size)

	main := quantum.NewCircuit("lookup", eig)
	require.NoError(t, main.X(eig.Bit(1)))
	require.NoError(t, main.Compose(rc))

	be := quantum.NewStatevectorBackend(testLogger())
	res, err := be.Execute(context.Background(), main)
	require.NoError(t, err)

	// Eigenvalue register holds 2, so the flagged amplitude is C/λ = 1/2.
	sv, err := res.Statevector("lookup")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, real(sv[2+4]), 1e-12)
	assert.InDelta(t, math.Sqrt(3)/2, real(sv[2]), 1e-12)
}

func TestLookupNegativeEigenvalueSign(t *testing.T) {
	profile := EigsProfile{NumAncillae: 2, EvoTime: 1, NegativeEvals: true}
	rot, err := NewLookup(profile, nil, testLogger())
	require.NoError(t, err)

	eig := quantum.NewRegister(2, "eigs")
	rc, err := rot.ConstructCircuit(eig)
	require.NoError(t, err)

	main := quantum.NewCircuit("lookup_neg", eig)
	require.NoError(t, main.X(eig.Bit(0)))
	require.NoError(t, main.X(eig.Bit(1)))
	require.NoError(t, main.Compose(rc))

	be := quantum.NewStatevectorBackend(testLogger())
	res, err := be.Execute(context.Background(), main)
	require.NoError(t, err)

	// Value 3 on a 2-bit grid wraps to -Δ, so the rotation carries the sign.
	sv, err := res.Statevector("lookup_neg")
	require.NoError(t, err)
	assert.InDelta(t, -1, real(sv[3+4]), 1e-12)
	assert.InDelta(t, 0, real(sv[3]), 1e-12)
}

func TestLookupValidation(t *testing.T) {
	profile := EigsProfile{NumAncillae: 2, EvoTime: 1}

	_, err := NewLookup(profile, map[string]any{"scale": 0.0}, testLogger())
	require.Error(t, err)
	_, err = NewLookup(profile, map[string]any{"scale": 1.5}, testLogger())
	require.Error(t, err)
	_, err = NewLookup(EigsProfile{NumAncillae: 2}, nil, testLogger())
	require.Error(t, err, "profile without evolution time")

	rot, err := NewLookup(profile, nil, testLogger())
	require.NoError(t, err)
	_, err = rot.ConstructCircuit(quantum.NewRegister(3, "eigs"))
	require.Error(t, err, "register width must match the profile")
}

func TestLongDivisionWritesQuotientAndRotates(t *testing.T) {
	profile := EigsProfile{NumAncillae: 2, EvoTime: 1}
	rot, err := NewLongDivision(profile, map[string]any{"precision": 2}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, LayoutStrided, rot.Layout())

	eig := quantum.NewRegister(2, "eigs")
	rc, err := rot.ConstructCircuit(eig)
	require.NoError(t, err)
	require.NotNil(t, rot.WorkRegister())
	assert.Equal(t, 2, rot.WorkRegister().Size)
	require.NotNil(t, rot.FlagRegister())

	main := quantum.NewCircuit("division", eig)
	require.NoError(t, main.X(eig.Bit(1)))
	require.NoError(t, main.Compose(rc))

	be := quantum.NewStatevectorBackend(testLogger())
	res, err := be.Execute(context.Background(), main)
	require.NoError(t, err)

	// C/λ = 1/2 quantized over 3 steps gives quotient 2 and rotation 2/3.
	// The working register keeps the quotient, shifting the solution into
	// strided positions.
	sv, err := res.Statevector("division")
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, real(sv[2+4*2+16]), 1e-12)
	assert.InDelta(t, math.Sqrt(5)/3, real(sv[2+4*2]), 1e-12)
	assert.InDelta(t, 0, real(sv[2]), 1e-12, "unshifted position is empty")
}

func TestLongDivisionDefaultPrecision(t *testing.T) {
	rot, err := NewLongDivision(EigsProfile{NumAncillae: 3, EvoTime: 2}, nil, testLogger())
	require.NoError(t, err)

	eig := quantum.NewRegister(3, "eigs")
	_, err = rot.ConstructCircuit(eig)
	require.NoError(t, err)
	assert.Equal(t, 3, rot.WorkRegister().Size)
}

func TestLongDivisionValidation(t *testing.T) {
	profile := EigsProfile{NumAncillae: 2, EvoTime: 1}

	_, err := NewLongDivision(profile, map[string]any{"precision": -1}, testLogger())
	require.Error(t, err)
	_, err = NewLongDivision(profile, map[string]any{"scale": 2.0}, testLogger())
	require.Error(t, err)
}
