package algorithms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsolve/internal/quantum"
)

func TestCustomPreparesAmplitudes(t *testing.T) {
	s, err := NewCustom(1, []complex128{3, 4i}, nil)
	require.NoError(t, err)

	io := quantum.NewRegister(1, "io")
	c, err := s.ConstructCircuit(io)
	require.NoError(t, err)

	be := quantum.NewStatevectorBackend(testLogger())
	res, err := be.Execute(context.Background(), c)
	require.NoError(t, err)

	// The vector is normalized before loading.
	sv, err := res.Statevector("initialize")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, real(sv[0]), 1e-12)
	assert.InDelta(t, 0, imag(sv[0]), 1e-12)
	assert.InDelta(t, 0.8, imag(sv[1]), 1e-12)
	assert.InDelta(t, 0, real(sv[1]), 1e-12)
}

func TestCustomUniformState(t *testing.T) {
	s, err := NewCustom(2, []complex128{1, 1, 1, 1}, nil)
	require.NoError(t, err)

	io := quantum.NewRegister(2, "io")
	c, err := s.ConstructCircuit(io)
	require.NoError(t, err)

	be := quantum.NewStatevectorBackend(testLogger())
	res, err := be.Execute(context.Background(), c)
	require.NoError(t, err)

	sv, err := res.Statevector("initialize")
	require.NoError(t, err)
	for i, a := range sv {
		assert.InDelta(t, 0.5, real(a), 1e-12, "amplitude %d", i)
		assert.InDelta(t, 0, imag(a), 1e-12, "amplitude %d", i)
	}
}

func TestCustomValidation(t *testing.T) {
	_, err := NewCustom(1, []complex128{1, 0, 0}, nil)
	require.ErrorContains(t, err, "entries")

	_, err = NewCustom(1, []complex128{0, 0}, nil)
	require.ErrorContains(t, err, "zero")

	_, err = NewCustom(0, nil, nil)
	require.Error(t, err)

	s, err := NewCustom(2, []complex128{1, 0, 0, 0}, nil)
	require.NoError(t, err)
	_, err = s.ConstructCircuit(quantum.NewRegister(1, "io"))
	require.Error(t, err, "register width must match")
}
