package marketdata

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name   string
	fail   error
	series [][]float64
}

func (p *stubProvider) Name() string      { return p.name }
func (p *stubProvider) Tickers() []string { return []string{"X"} }

func (p *stubProvider) Load(ctx context.Context) (*Dataset, error) {
	if p.fail != nil {
		return nil, p.fail
	}
	return &Dataset{Provider: p.name, Tickers: p.Tickers(), Series: p.series}, nil
}

func TestServiceListsProvidersSorted(t *testing.T) {
	svc := NewService(zerolog.Nop())
	svc.Register(&stubProvider{name: "zeta"})
	svc.Register(&stubProvider{name: "alpha"})
	svc.Register(NewRandomProvider(nil, 0, 1))

	assert.Equal(t, []string{"alpha", "random", "zeta"}, svc.Providers())

	p, ok := svc.Provider("random")
	require.True(t, ok)
	assert.Equal(t, "random", p.Name())

	_, ok = svc.Provider("missing")
	assert.False(t, ok)
}

func TestServiceLoadDataset(t *testing.T) {
	svc := NewService(zerolog.Nop())
	svc.Register(&stubProvider{name: "stub", series: [][]float64{{1, 2, 3}}})

	ds, err := svc.LoadDataset(context.Background(), "stub")
	require.NoError(t, err)
	assert.Equal(t, "stub", ds.Provider)
	assert.Equal(t, [][]float64{{1, 2, 3}}, ds.Series)
}

func TestServiceLoadUnknownProvider(t *testing.T) {
	svc := NewService(zerolog.Nop())

	_, err := svc.LoadDataset(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestServiceLoadRejectsEmptyDataset(t *testing.T) {
	svc := NewService(zerolog.Nop())
	svc.Register(&stubProvider{name: "hollow"})

	_, err := svc.LoadDataset(context.Background(), "hollow")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestServicePropagatesProviderFailure(t *testing.T) {
	boom := errors.New("socket closed")
	svc := NewService(zerolog.Nop())
	svc.Register(&stubProvider{name: "flaky", fail: boom})

	_, err := svc.LoadDataset(context.Background(), "flaky")
	assert.ErrorIs(t, err, boom)
}

func TestServiceLoadWithStatistics(t *testing.T) {
	svc := NewService(zerolog.Nop())
	svc.Register(NewRandomProvider([]string{"A", "B"}, 50, 11))

	ds, stats, err := svc.LoadWithStatistics(context.Background(), "random")
	require.NoError(t, err)
	assert.Len(t, ds.Series, 2)
	assert.Len(t, stats.Mean, 2)
	assert.Len(t, stats.PeriodReturnCov, 2)
	assert.Len(t, stats.Similarity, 2)
}
