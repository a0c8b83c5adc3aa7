package algorithms

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/quantum"
)

// Lookup rotates the flag qubit by the exact reciprocal of the eigenvalue
// estimate, keyed directly on the ancilla register value. The solution ends
// up in one contiguous block of the flagged half of the statevector.
type Lookup struct {
	scale   float64
	profile EigsProfile

	eigReg  *quantum.Register
	flag    *quantum.Register
	circuit *quantum.Circuit
	log     zerolog.Logger
}

// NewLookup creates a lookup rotator. Recognized parameters: scale
// (float in (0, 1], default 1) damping every rotation amplitude.
func NewLookup(profile EigsProfile, params map[string]any, log zerolog.Logger) (*Lookup, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	scale := GetFloatParam(params, "scale", 1.0)
	if err := validateScale(scale); err != nil {
		return nil, err
	}

	return &Lookup{
		scale:   scale,
		profile: profile,
		log:     log.With().Str("component", "reciprocal_lookup").Logger(),
	}, nil
}

// Layout reports the contiguous block arrangement.
func (l *Lookup) Layout() ExtractionLayout {
	return LayoutBlock
}

// FlagRegister returns the success flag, nil before ConstructCircuit.
func (l *Lookup) FlagRegister() *quantum.Register {
	return l.flag
}

// ConstructCircuit builds the rotation over the eigenvalue register and a
// fresh flag register.
func (l *Lookup) ConstructCircuit(eig *quantum.Register) (*quantum.Circuit, error) {
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
	amps := reciprocalAmplitudes(n, l.scale, l.profile)

	flag := quantum.NewRegister(1, "flag")
	c := quantum.NewCircuit("reciprocal_lookup", eig)
	c.AddRegister(flag)

	targets := make([]quantum.QubitRef, 0, eig.Size+1)
	for i := 0; i < eig.Size; i++ {
		targets = append(targets, eig.Bit(i))
	}
	targets = append(targets, flag.Bit(0))
	if err := c.Gate("reciprocal_rotation", rotationMatrix(amps), targets...); err != nil {
		return nil, err
	}

	l.eigReg = eig
	l.flag = flag
	l.circuit = c

	l.log.Debug().
		Int("eig_qubits", eig.Size).
		Float64("scale", l.scale).
		Bool("negative_evals", l.profile.NegativeEvals).
		Msg("Constructed lookup rotation circuit")

	return c, nil
}
