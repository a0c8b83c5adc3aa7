// Package marketdata loads equity price series from pluggable providers
// and derives the statistics downstream solvers consume.
package marketdata

import (
	"context"
	"errors"
)

// Sentinel errors for provider and dataset failures.
var (
	// ErrUnknownProvider indicates a provider name that was never registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrNoData indicates a provider yielded no usable series.
	ErrNoData = errors.New("no data")
)

// Provider loads price series for a fixed set of tickers.
type Provider interface {
	// Name identifies the provider for registration and routing.
	Name() string

	// Tickers returns the symbols this provider loads.
	Tickers() []string

	// Load fetches one price series per ticker.
	Load(ctx context.Context) (*Dataset, error)
}

// Dataset holds one price series per ticker, oldest observation first.
type Dataset struct {
	Provider string
	Tickers  []string
	Series   [][]float64
}

// Statistics bundles the quantities derived from a dataset.
// Mean and covariance are computed over raw prices, the period-return
// variants over consecutive-close returns, and the similarity matrix
// over dynamic-time-warping distances between series.
type Statistics struct {
	Mean             []float64
	PeriodReturnMean []float64
	Covariance       [][]float64
	PeriodReturnCov  [][]float64
	Similarity       [][]float64
}
