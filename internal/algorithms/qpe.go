package algorithms

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/linalg"
	"github.com/aristath/qsolve/internal/quantum"
)

const defaultNumAncillae = 6

// QPE estimates eigenvalues of a Hermitian matrix via phase estimation.
// Ancilla qubits are fanned into superposition, controlled powers of
// exp(iAt) imprint eigenvalue phases onto them, and an inverse Fourier
// transform reads the phases out as a binary fraction. With evolution time
// t, ancilla value m encodes the eigenvalue m·2π/(2^na·t); when negative
// eigenvalues are enabled the top half of the ancilla range wraps around to
// negative values, two's complement style.
type QPE struct {
	matrix        linalg.Matrix
	numQubits     int
	numAncillae   int
	negativeEvals bool
	evoTime       float64

	ioReg   *quantum.Register
	outReg  *quantum.Register
	forward *quantum.Circuit
	log     zerolog.Logger
}

// NewQPE creates a phase estimation component for the given matrix.
// Recognized parameters: num_ancillae (int, default 6), negative_evals
// (bool, default false) and evo_time (float). When evo_time is omitted it
// is derived from the eigenvalue range so the largest eigenvalue lands on
// the top of the ancilla scale.
func NewQPE(matrix linalg.Matrix, params map[string]any, log zerolog.Logger) (*QPE, error) {
	dim := matrix.Dim()
	if dim < 2 || !linalg.IsPowerOfTwo(dim) {
		return nil, fmt.Errorf("matrix dimension must be a power of two at least 2, got %d", dim)
	}
	if !matrix.IsHermitian(linalg.HermitianTol) {
		return nil, fmt.Errorf("matrix must be Hermitian")
	}

	numAncillae := GetIntParam(params, "num_ancillae", defaultNumAncillae)
	if numAncillae < 1 {
		return nil, fmt.Errorf("num_ancillae must be positive, got %d", numAncillae)
	}
	negativeEvals := GetBoolParam(params, "negative_evals", false)
	if negativeEvals && numAncillae < 2 {
		return nil, fmt.Errorf("negative eigenvalues need at least 2 ancillae, got %d", numAncillae)
	}

	qpeLog := log.With().Str("component", "qpe").Logger()

	evoTime := GetFloatParam(params, "evo_time", 0)
	if evoTime < 0 {
		return nil, fmt.Errorf("evo_time must be positive, got %g", evoTime)
	}
	if evoTime == 0 {
		evals, err := linalg.Eigenvalues(matrix)
		if err != nil {
			return nil, fmt.Errorf("deriving evolution time: %w", err)
		}
		lmax := 0.0
		hasNegative := false
		for _, ev := range evals {
			if math.Abs(ev) > lmax {
				lmax = math.Abs(ev)
			}
			if ev < -linalg.HermitianTol {
				hasNegative = true
			}
		}
		if lmax == 0 {
			return nil, fmt.Errorf("matrix has no nonzero eigenvalues")
		}
		if negativeEvals {
			evoTime = (1 - math.Pow(2, -float64(numAncillae-1))) * math.Pi / lmax
		} else {
			evoTime = (1 - math.Pow(2, -float64(numAncillae))) * 2 * math.Pi / lmax
			if hasNegative {
				qpeLog.Warn().
					Msg("Matrix has negative eigenvalues but negative_evals is disabled, estimates will alias")
			}
		}
		qpeLog.Debug().
			Float64("evo_time", evoTime).
			Float64("lambda_max", lmax).
			Msg("Derived evolution time from eigenvalue range")
	}

	return &QPE{
		matrix:        matrix,
		numQubits:     linalg.Log2(dim),
		numAncillae:   numAncillae,
		negativeEvals: negativeEvals,
		evoTime:       evoTime,
		log:           qpeLog,
	}, nil
}

// RegisterSizes reports the input and ancilla register widths.
func (q *QPE) RegisterSizes() (int, int) {
	return q.numQubits, q.numAncillae
}

// Profile reports the settings a rotator needs to invert the estimates.
func (q *QPE) Profile() EigsProfile {
	return EigsProfile{
		NumAncillae:   q.numAncillae,
		EvoTime:       q.evoTime,
		NegativeEvals: q.negativeEvals,
	}
}

// OutputRegister returns the ancilla register, nil before ConstructCircuit.
func (q *QPE) OutputRegister() *quantum.Register {
	return q.outReg
}

// ConstructCircuit builds the forward estimation circuit over io and a fresh
// ancilla register. The result is memoized for ConstructInverse.
func (q *QPE) ConstructCircuit(io *quantum.Register) (*quantum.Circuit, error) {
	if io == nil || io.Size != q.numQubits {
		return nil, fmt.Errorf("input register must have %d qubits", q.numQubits)
	}
	if q.forward != nil {
		if q.ioReg != io {
			return nil, fmt.Errorf("circuit already constructed on register %q", q.ioReg.Name)
		}
		return q.forward, nil
	}

	out := quantum.NewRegister(q.numAncillae, "eigs")
	c := quantum.NewCircuit("qpe", io)
	c.AddRegister(out)

	for j := 0; j < q.numAncillae; j++ {
		if err := c.H(out.Bit(j)); err != nil {
			return nil, err
		}
	}

	ioBits := make([]quantum.QubitRef, q.numQubits)
	for i := range ioBits {
		ioBits[i] = io.Bit(i)
	}

	// Controlled powers of U = exp(iAt), squared once per ancilla weight.
	dim := 1 << q.numQubits
	u := linalg.Expm(q.matrix.Scale(complex(0, q.evoTime)))
	for j := 0; j < q.numAncillae; j++ {
		targets := make([]quantum.QubitRef, 0, q.numQubits+1)
		targets = append(targets, ioBits...)
		targets = append(targets, out.Bit(j))
		name := fmt.Sprintf("c-u^%d", 1<<j)
		if err := c.Gate(name, quantum.ControlledMatrix(u.Data(), dim), targets...); err != nil {
			return nil, err
		}
		u = u.Mul(u)
	}

	outBits := make([]quantum.QubitRef, q.numAncillae)
	for i := range outBits {
		outBits[i] = out.Bit(i)
	}
	if err := c.Gate("iqft", quantum.InverseQFTMatrix(q.numAncillae), outBits...); err != nil {
		return nil, err
	}

	q.ioReg = io
	q.outReg = out
	q.forward = c

	q.log.Debug().
		Int("num_qubits", q.numQubits).
		Int("num_ancillae", q.numAncillae).
		Int("operations", c.OperationCount()).
		Msg("Constructed phase estimation circuit")

	return c, nil
}

// ConstructInverse uncomputes the forward circuit so the ancillae return to
// zero once the eigenvalue information has been consumed.
func (q *QPE) ConstructInverse() (*quantum.Circuit, error) {
	if q.forward == nil {
		return nil, fmt.Errorf("forward circuit not constructed")
	}
	return q.forward.Inverse()
}
