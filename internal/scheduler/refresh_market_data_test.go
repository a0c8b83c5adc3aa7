package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsolve/internal/events"
	"github.com/aristath/qsolve/internal/modules/marketdata"
)

// stubProvider serves a fixed dataset.
type stubProvider struct {
	name string
	err  error
}

func (p *stubProvider) Name() string      { return p.name }
func (p *stubProvider) Tickers() []string { return []string{"AAA"} }

func (p *stubProvider) Load(context.Context) (*marketdata.Dataset, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &marketdata.Dataset{
		Provider: p.name,
		Tickers:  []string{"AAA"},
		Series:   [][]float64{{100, 101, 102}},
	}, nil
}

func newRefreshFixture(t *testing.T, providers ...marketdata.Provider) (*marketdata.Service, *events.Bus, *events.Event) {
	t.Helper()
	market := marketdata.NewService(testLogger())
	for _, p := range providers {
		market.Register(p)
	}

	bus := events.NewBus(testLogger())
	captured := &events.Event{}
	require.NoError(t, bus.Subscribe(events.MarketDataRefreshed, func(e *events.Event) {
		*captured = *e
	}))
	return market, bus, captured
}

func TestRefreshMarketDataJobName(t *testing.T) {
	job := NewRefreshMarketDataJob(nil, nil, nil, testLogger())
	assert.Equal(t, "refresh_market_data", job.Name())
}

func TestRefreshMarketDataJobRefreshesAllProviders(t *testing.T) {
	market, bus, captured := newRefreshFixture(t,
		&stubProvider{name: "alpha"},
		&stubProvider{name: "beta"},
	)

	job := NewRefreshMarketDataJob(market, nil, bus, testLogger())
	require.NoError(t, job.Run())

	assert.Equal(t, events.MarketDataRefreshed, captured.Type)
	assert.Equal(t, []string{"alpha", "beta"}, captured.Data["providers"])
	assert.Equal(t, 0, captured.Data["failed"])
}

func TestRefreshMarketDataJobTargetsNamedProviders(t *testing.T) {
	market, bus, captured := newRefreshFixture(t,
		&stubProvider{name: "alpha"},
		&stubProvider{name: "beta"},
	)

	job := NewRefreshMarketDataJob(market, []string{"beta"}, bus, testLogger())
	require.NoError(t, job.Run())

	assert.Equal(t, []string{"beta"}, captured.Data["providers"])
}

func TestRefreshMarketDataJobContinuesPastFailures(t *testing.T) {
	market, bus, captured := newRefreshFixture(t,
		&stubProvider{name: "alpha", err: errors.New("feed offline")},
		&stubProvider{name: "beta"},
	)

	job := NewRefreshMarketDataJob(market, nil, bus, testLogger())
	require.NoError(t, job.Run())

	assert.Equal(t, []string{"beta"}, captured.Data["providers"])
	assert.Equal(t, 1, captured.Data["failed"])
}

func TestRefreshMarketDataJobAllProvidersFail(t *testing.T) {
	market, bus, captured := newRefreshFixture(t,
		&stubProvider{name: "alpha", err: errors.New("feed offline")},
	)

	job := NewRefreshMarketDataJob(market, nil, bus, testLogger())
	err := job.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to refresh")

	assert.Empty(t, captured.Type, "no event on a fully failed refresh")
}

func TestRefreshMarketDataJobNoProviders(t *testing.T) {
	market, bus, captured := newRefreshFixture(t)

	job := NewRefreshMarketDataJob(market, nil, bus, testLogger())
	require.NoError(t, job.Run())

	assert.Empty(t, captured.Type, "nothing registered, nothing emitted")
}
