package quantum

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func TestStatevectorBackendExactAmplitudes(t *testing.T) {
	io := NewRegister(1, "io")
	c := NewCircuit("super", io)
	require.NoError(t, c.H(io.Bit(0)))

	be := NewStatevectorBackend(testLogger())
	assert.True(t, be.SupportsStatevector())

	res, err := be.Execute(context.Background(), c)
	require.NoError(t, err)

	sv, err := res.Statevector("super")
	require.NoError(t, err)
	require.Len(t, sv, 2)
	h := 1 / math.Sqrt2
	assert.InDelta(t, h, real(sv[0]), 1e-12)
	assert.InDelta(t, h, real(sv[1]), 1e-12)
}

func TestStatevectorBackendMultipleCircuits(t *testing.T) {
	io := NewRegister(1, "io")
	a := NewCircuit("a", io)
	require.NoError(t, a.X(io.Bit(0)))
	b := NewCircuit("b", io)

	be := NewStatevectorBackend(testLogger())
	res, err := be.Execute(context.Background(), a, b)
	require.NoError(t, err)

	svA, err := res.Statevector("a")
	require.NoError(t, err)
	assert.InDelta(t, 1, real(svA[1]), 1e-12)

	svB, err := res.Statevector("b")
	require.NoError(t, err)
	assert.InDelta(t, 1, real(svB[0]), 1e-12)

	_, err = res.Statevector("missing")
	require.ErrorContains(t, err, "no statevector")
}

func TestStatevectorBackendHonorsContext(t *testing.T) {
	io := NewRegister(1, "io")
	c := NewCircuit("c", io)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	be := NewStatevectorBackend(testLogger())
	_, err := be.Execute(ctx, c)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSamplingBackendDeterministicWithSeed(t *testing.T) {
	build := func() *Circuit {
		io := NewRegister(1, "io")
		c := NewCircuit("coin", io)
		cl := NewClassicalRegister(1, "m")
		c.AddClassicalRegister(cl)
		if err := c.H(io.Bit(0)); err != nil {
			t.Fatal(err)
		}
		if err := c.Measure(io.Bit(0), cl.Bit(0)); err != nil {
			t.Fatal(err)
		}
		return c
	}

	be1 := NewSamplingBackend(1024, 7, testLogger())
	be2 := NewSamplingBackend(1024, 7, testLogger())
	assert.False(t, be1.SupportsStatevector())

	res1, err := be1.Execute(context.Background(), build())
	require.NoError(t, err)
	res2, err := be2.Execute(context.Background(), build())
	require.NoError(t, err)

	counts1, err := res1.Counts("coin")
	require.NoError(t, err)
	counts2, err := res2.Counts("coin")
	require.NoError(t, err)
	assert.Equal(t, counts1, counts2, "same seed, same counts")

	total := 0
	for _, n := range counts1 {
		total += n
	}
	assert.Equal(t, 1024, total)

	// An unbiased coin should land well inside [300, 724] at 1024 shots.
	assert.Greater(t, counts1["0"], 300)
	assert.Greater(t, counts1["1"], 300)
}

func TestSamplingBackendBitOrdering(t *testing.T) {
	io := NewRegister(1, "io")
	c := NewCircuit("flip", io)
	cl := NewClassicalRegister(2, "m")
	c.AddClassicalRegister(cl)
	require.NoError(t, c.X(io.Bit(0)))
	require.NoError(t, c.Measure(io.Bit(0), cl.Bit(0)))

	be := NewSamplingBackend(16, 1, testLogger())
	res, err := be.Execute(context.Background(), c)
	require.NoError(t, err)

	// Clbit 0 is the last character of the key.
	counts, err := res.Counts("flip")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"01": 16}, counts)
}

func TestSamplingBackendDistinctSeedsWhenUnseeded(t *testing.T) {
	io := NewRegister(2, "io")
	build := func() *Circuit {
		c := NewCircuit("pair", io)
		cl := NewClassicalRegister(2, "m")
		c.AddClassicalRegister(cl)
		require.NoError(t, c.H(io.Bit(0)))
		require.NoError(t, c.H(io.Bit(1)))
		require.NoError(t, c.Measure(io.Bit(0), cl.Bit(0)))
		require.NoError(t, c.Measure(io.Bit(1), cl.Bit(1)))
		return c
	}

	be := NewSamplingBackend(256, 0, testLogger())
	res1, err := be.Execute(context.Background(), build())
	require.NoError(t, err)
	res2, err := be.Execute(context.Background(), build())
	require.NoError(t, err)

	counts1, err := res1.Counts("pair")
	require.NoError(t, err)
	counts2, err := res2.Counts("pair")
	require.NoError(t, err)

	// Four outcomes at 256 shots: identical histograms from two
	// independent runs would be astronomically unlikely.
	assert.NotEqual(t, counts1, counts2)
}

func TestGateAfterMeasurementRejected(t *testing.T) {
	io := NewRegister(1, "io")
	c := NewCircuit("bad", io)
	cl := NewClassicalRegister(1, "m")
	c.AddClassicalRegister(cl)
	require.NoError(t, c.Measure(io.Bit(0), cl.Bit(0)))
	require.NoError(t, c.X(io.Bit(0)))

	be := NewSamplingBackend(8, 1, testLogger())
	_, err := be.Execute(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal")
}
