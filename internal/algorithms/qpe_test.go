package algorithms

import (
	"context"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsolve/internal/linalg"
	"github.com/aristath/qsolve/internal/quantum"
)

func TestNewQPEValidation(t *testing.T) {
	m3, err := linalg.FromRows([][]complex128{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	})
	require.NoError(t, err)
	_, err = NewQPE(m3, nil, testLogger())
	require.ErrorContains(t, err, "power of two")

	nonHermitian, err := linalg.FromRows([][]complex128{
		{0, 1},
		{0, 0},
	})
	require.NoError(t, err)
	_, err = NewQPE(nonHermitian, nil, testLogger())
	require.ErrorContains(t, err, "Hermitian")

	id := linalg.Identity(2)
	_, err = NewQPE(id, map[string]any{"num_ancillae": 0}, testLogger())
	require.Error(t, err)
	_, err = NewQPE(id, map[string]any{"negative_evals": true, "num_ancillae": 1}, testLogger())
	require.Error(t, err)
	_, err = NewQPE(id, map[string]any{"evo_time": -1.0}, testLogger())
	require.Error(t, err)
}

func TestQPEDerivesEvolutionTime(t *testing.T) {
	q, err := NewQPE(linalg.Identity(2), nil, testLogger())
	require.NoError(t, err)

	p := q.Profile()
	assert.Equal(t, 6, p.NumAncillae)
	assert.False(t, p.NegativeEvals)
	assert.InDelta(t, (1-math.Pow(2, -6))*2*math.Pi, p.EvoTime, 1e-12)

	numQ, numA := q.RegisterSizes()
	assert.Equal(t, 1, numQ)
	assert.Equal(t, 6, numA)
}

func TestQPEEncodesEigenvalueOnGrid(t *testing.T) {
	q, err := NewQPE(linalg.Identity(2), nil, testLogger())
	require.NoError(t, err)

	io := quantum.NewRegister(1, "io")
	c, err := q.ConstructCircuit(io)
	require.NoError(t, err)
	require.NotNil(t, q.OutputRegister())
	assert.Equal(t, 6, q.OutputRegister().Size)
	assert.Equal(t, 13, c.OperationCount())

	be := quantum.NewStatevectorBackend(testLogger())
	res, err := be.Execute(context.Background(), c)
	require.NoError(t, err)

	// λ = 1 with the derived time lands exactly on ancilla value 63.
	sv, err := res.Statevector("qpe")
	require.NoError(t, err)
	assert.InDelta(t, 1, cmplx.Abs(sv[2*63]), 1e-8)
}

func TestQPETwosComplementForNegativeEigenvalues(t *testing.T) {
	z, err := linalg.FromRows([][]complex128{
		{1, 0},
		{0, -1},
	})
	require.NoError(t, err)

	q, err := NewQPE(z, map[string]any{"negative_evals": true}, testLogger())
	require.NoError(t, err)
	assert.InDelta(t, (1-math.Pow(2, -5))*math.Pi, q.Profile().EvoTime, 1e-12)

	io := quantum.NewRegister(1, "io")
	c, err := q.ConstructCircuit(io)
	require.NoError(t, err)

	main := quantum.NewCircuit("neg", io)
	require.NoError(t, main.X(io.Bit(0)))
	require.NoError(t, main.Compose(c))

	be := quantum.NewStatevectorBackend(testLogger())
	res, err := be.Execute(context.Background(), main)
	require.NoError(t, err)

	// λ = -1 wraps into the upper ancilla half: value 33 on a 6-bit grid.
	sv, err := res.Statevector("neg")
	require.NoError(t, err)
	assert.InDelta(t, 1, cmplx.Abs(sv[1+2*33]), 1e-8)
}

func TestQPEInverseUncomputes(t *testing.T) {
	q, err := NewQPE(linalg.Identity(2), map[string]any{"num_ancillae": 3}, testLogger())
	require.NoError(t, err)

	_, err = q.ConstructInverse()
	require.Error(t, err, "inverse requires the forward circuit")

	io := quantum.NewRegister(1, "io")
	fwd, err := q.ConstructCircuit(io)
	require.NoError(t, err)

	again, err := q.ConstructCircuit(io)
	require.NoError(t, err)
	assert.Same(t, fwd, again, "forward circuit is memoized")

	_, err = q.ConstructCircuit(quantum.NewRegister(1, "other"))
	require.Error(t, err)

	inv, err := q.ConstructInverse()
	require.NoError(t, err)

	main := quantum.NewCircuit("roundtrip", io)
	require.NoError(t, main.Compose(fwd))
	require.NoError(t, main.Compose(inv))

	be := quantum.NewStatevectorBackend(testLogger())
	res, err := be.Execute(context.Background(), main)
	require.NoError(t, err)

	sv, err := res.Statevector("roundtrip")
	require.NoError(t, err)
	assert.InDelta(t, 1, real(sv[0]), 1e-8)
}
