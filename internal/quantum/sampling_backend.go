package quantum

import (
	"context"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// seedCounter separates time-based seeds of concurrent Execute calls.
var seedCounter int64

// SamplingBackend simulates circuits exactly, then samples terminal
// measurements shot by shot. A fixed seed makes runs reproducible; seed 0
// derives one from the clock per Execute call.
type SamplingBackend struct {
	shots int
	seed  int64
	log   zerolog.Logger
}

// NewSamplingBackend creates a shot-based simulator backend.
func NewSamplingBackend(shots int, seed int64, log zerolog.Logger) *SamplingBackend {
	return &SamplingBackend{
		shots: shots,
		seed:  seed,
		log:   log.With().Str("component", "sampling_backend").Logger(),
	}
}

// Name implements Backend.
func (b *SamplingBackend) Name() string { return "sampling_simulator" }

// SupportsStatevector implements Backend.
func (b *SamplingBackend) SupportsStatevector() bool { return false }

// Shots returns the configured shot count.
func (b *SamplingBackend) Shots() int { return b.shots }

// Execute implements Backend.
func (b *SamplingBackend) Execute(ctx context.Context, circuits ...*Circuit) (*Result, error) {
	seed := b.seed
	if seed == 0 {
		seed = time.Now().UnixNano() + atomic.AddInt64(&seedCounter, 1)
	}
	rng := rand.New(rand.NewSource(seed))

	res := &Result{
		backendName:  b.Name(),
		shots:        b.shots,
		statevectors: make(map[string][]complex128),
		counts:       make(map[string]map[string]int, len(circuits)),
	}

	for _, c := range circuits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		st, measures, err := runGates(c)
		if err != nil {
			return nil, err
		}

		counts, err := b.sample(c, st, measures, rng)
		if err != nil {
			return nil, err
		}
		res.counts[c.Name] = counts

		b.log.Debug().
			Str("circuit", c.Name).
			Int("shots", b.shots).
			Int("outcomes", len(counts)).
			Msg("Sampled circuit")
	}

	return res, nil
}

// sample draws shots from the final distribution and reads the measured
// qubits into their classical bits. Unmeasured classical bits stay 0.
func (b *SamplingBackend) sample(c *Circuit, st *State, measures []Operation, rng *rand.Rand) (map[string]int, error) {
	numClbits := c.NumClbits()

	type wirePair struct{ qubit, clbit int }
	pairs := make([]wirePair, 0, len(measures))
	for _, m := range measures {
		qi, err := c.QubitIndex(m.Qubit)
		if err != nil {
			return nil, err
		}
		ci, err := c.ClbitIndex(m.Clbit)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, wirePair{qubit: qi, clbit: ci})
	}

	// Cumulative distribution over basis states
	probs := st.Probabilities()
	cum := make([]float64, len(probs))
	var total float64
	for i, p := range probs {
		total += p
		cum[i] = total
	}

	counts := make(map[string]int)
	key := make([]byte, numClbits)
	for shot := 0; shot < b.shots; shot++ {
		r := rng.Float64() * total
		idx := sort.SearchFloat64s(cum, r)
		if idx >= len(probs) {
			idx = len(probs) - 1
		}

		for i := range key {
			key[i] = '0'
		}
		for _, p := range pairs {
			bit := (idx >> p.qubit) & 1
			// Bitstrings read most significant first: clbit 0 is the
			// last character.
			key[numClbits-1-p.clbit] = byte('0' + bit)
		}
		counts[string(key)]++
	}

	return counts, nil
}
