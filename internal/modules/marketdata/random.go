package marketdata

import (
	"context"
	"math"
	"math/rand"
)

// RandomProvider generates deterministic pseudo-random price walks.
// It serves offline runs and tests where live market access is
// unavailable.
type RandomProvider struct {
	tickers []string
	days    int
	seed    int64
}

// NewRandomProvider creates a random walk provider. With no tickers a
// two-asset placeholder universe is used, and days defaults to 30.
func NewRandomProvider(tickers []string, days int, seed int64) *RandomProvider {
	if len(tickers) == 0 {
		tickers = []string{"TICKER1", "TICKER2"}
	}
	if days <= 0 {
		days = 30
	}
	return &RandomProvider{
		tickers: append([]string(nil), tickers...),
		days:    days,
		seed:    seed,
	}
}

// Name returns the provider name.
func (p *RandomProvider) Name() string {
	return "random"
}

// Tickers returns the symbols this provider generates.
func (p *RandomProvider) Tickers() []string {
	return append([]string(nil), p.tickers...)
}

// Load generates one walk per ticker. The same seed always produces
// the same dataset.
func (p *RandomProvider) Load(ctx context.Context) (*Dataset, error) {
	rng := rand.New(rand.NewSource(p.seed))

	series := make([][]float64, len(p.tickers))
	for i := range p.tickers {
		base := 50.0 + 10.0*float64(i)
		level := 0.0

		walk := make([]float64, p.days)
		for d := range walk {
			level += rng.NormFloat64()
			// Walks stay positive so period returns remain defined
			walk[d] = math.Max(base+level, 1.0)
		}
		series[i] = walk
	}

	return &Dataset{Provider: p.Name(), Tickers: p.Tickers(), Series: series}, nil
}
