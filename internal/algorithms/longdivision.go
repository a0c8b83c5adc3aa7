package algorithms

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/quantum"
)

// LongDivision computes the reciprocal of the eigenvalue estimate digit by
// digit into a working register, then rotates the flag qubit by the computed
// quotient. The working register stays entangled with the solution, so the
// decoder has to fold the flagged half of the statevector with a stride of
// the input dimension.
type LongDivision struct {
	scale     float64
	precision int
	profile   EigsProfile

	eigReg  *quantum.Register
	work    *quantum.Register
	flag    *quantum.Register
	circuit *quantum.Circuit
	log     zerolog.Logger
}

// NewLongDivision creates a long division rotator. Recognized parameters:
// scale (float in (0, 1], default 1) and precision (int, working register
// width, default the ancilla count).
func NewLongDivision(profile EigsProfile, params map[string]any, log zerolog.Logger) (*LongDivision, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	scale := GetFloatParam(params, "scale", 1.0)
	if err := validateScale(scale); err != nil {
		return nil, err
	}
	precision := GetIntParam(params, "precision", profile.NumAncillae)
	if precision < 1 {
		return nil, fmt.Errorf("precision must be positive, got %d", precision)
	}

	return &LongDivision{
		scale:     scale,
		precision: precision,
		profile:   profile,
		log:       log.With().Str("component", "reciprocal_longdivision").Logger(),
	}, nil
}

// Layout reports the strided arrangement left by the working register.
func (l *LongDivision) Layout() ExtractionLayout {
	return LayoutStrided
}

// FlagRegister returns the success flag, nil before ConstructCircuit.
func (l *LongDivision) FlagRegister() *quantum.Register {
	return l.flag
}

// WorkRegister returns the quotient register, nil before ConstructCircuit.
func (l *LongDivision) WorkRegister() *quantum.Register {
	return l.work
}

// ConstructCircuit builds the quotient computation and the rotation over the
// eigenvalue register, a fresh working register and a fresh flag register.
func (l *LongDivision) ConstructCircuit(eig *quantum.Register) (*quantum.Circuit, error) {
	if eig == nil || eig.Size != l.profile.NumAncillae {
		return nil, fmt.Errorf("eigenvalue register must have %d qubits", l.profile.NumAncillae)
	}
	if l.circuit != nil {
		if l.eigReg != eig {
			return nil, fmt.Errorf("circuit already constructed on register %q", l.eigReg.Name)
		}
		return l.circuit, nil
	}

	n := 1 << eig.Size
	steps := (1 << l.precision) - 1
	amps := reciprocalAmplitudes(n, l.scale, l.profile)

	// Quantize |C/λ| to the working register width. The rotation uses the
	// quantized quotient, so the working register holds exactly the value
	// that drove the rotation.
	quotients := make([]int, n)
	rotAmps := make([]float64, n)
	for m, a := range amps {
		q := int(math.Round(math.Abs(a) * float64(steps)))
		quotients[m] = q
		rotAmps[m] = float64(q) / float64(steps)
		if a < 0 {
			rotAmps[m] = -rotAmps[m]
		}
	}

	work := quantum.NewRegister(l.precision, "work")
	flag := quantum.NewRegister(1, "flag")
	c := quantum.NewCircuit("reciprocal_longdivision", eig)
	c.AddRegister(work)
	c.AddRegister(flag)

	eigBits := make([]quantum.QubitRef, eig.Size)
	for i := range eigBits {
		eigBits[i] = eig.Bit(i)
	}

	// Write the quotient digits, one toggle per working qubit.
	for k := 0; k < l.precision; k++ {
		toggle := make([]bool, n)
		any := false
		for m, q := range quotients {
			if q&(1<<k) != 0 {
				toggle[m] = true
				any = true
			}
		}
		if !any {
			continue
		}
		targets := make([]quantum.QubitRef, 0, eig.Size+1)
		targets = append(targets, eigBits...)
		targets = append(targets, work.Bit(k))
		name := fmt.Sprintf("quotient_bit_%d", k)
		if err := c.Gate(name, toggleMatrix(toggle), targets...); err != nil {
			return nil, err
		}
	}

	targets := make([]quantum.QubitRef, 0, eig.Size+1)
	targets = append(targets, eigBits...)
	targets = append(targets, flag.Bit(0))
	if err := c.Gate("reciprocal_rotation", rotationMatrix(rotAmps), targets...); err != nil {
		return nil, err
	}

	l.eigReg = eig
	l.work = work
	l.flag = flag
	l.circuit = c

	l.log.Debug().
		Int("eig_qubits", eig.Size).
		Int("precision", l.precision).
		Float64("scale", l.scale).
		Msg("Constructed long division rotation circuit")

	return c, nil
}
