package quantum

import (
	"context"

	"github.com/rs/zerolog"
)

// StatevectorBackend simulates circuits exactly and returns final
// amplitudes. Measurement operations are accepted but ignored; the
// amplitude vector itself is the output.
type StatevectorBackend struct {
	log zerolog.Logger
}

// NewStatevectorBackend creates an exact simulator backend.
func NewStatevectorBackend(log zerolog.Logger) *StatevectorBackend {
	return &StatevectorBackend{
		log: log.With().Str("component", "statevector_backend").Logger(),
	}
}

// Name implements Backend.
func (b *StatevectorBackend) Name() string { return "statevector_simulator" }

// SupportsStatevector implements Backend.
func (b *StatevectorBackend) SupportsStatevector() bool { return true }

// Execute implements Backend.
func (b *StatevectorBackend) Execute(ctx context.Context, circuits ...*Circuit) (*Result, error) {
	res := &Result{
		backendName:  b.Name(),
		statevectors: make(map[string][]complex128, len(circuits)),
		counts:       make(map[string]map[string]int),
	}

	for _, c := range circuits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		st, measures, err := runGates(c)
		if err != nil {
			return nil, err
		}
		if len(measures) > 0 {
			b.log.Debug().
				Str("circuit", c.Name).
				Int("measurements", len(measures)).
				Msg("Ignoring terminal measurements on exact backend")
		}

		res.statevectors[c.Name] = append([]complex128(nil), st.Amplitudes()...)

		b.log.Debug().
			Str("circuit", c.Name).
			Int("qubits", c.NumQubits()).
			Int("operations", c.OperationCount()).
			Msg("Simulated circuit")
	}

	return res, nil
}
