// Package portfolio turns market statistics into quantum linear-system
// solves. The mean-variance first-order condition Σx = μ̄ is handed to the
// solver module with the period-return covariance as the matrix and the
// period-return means as the right-hand side; the solution components are
// normalized into allocation weights.
package portfolio

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/modules/marketdata"
	"github.com/aristath/qsolve/internal/modules/solver"
)

// Request selects the market data provider and optionally overrides the
// solver components used for the allocation solve.
type Request struct {
	Provider string
	Mode     string

	Eigs         *solver.ComponentSpec
	Reciprocal   *solver.ComponentSpec
	InitialState *solver.ComponentSpec
}

// Result captures the market statistics that fed the solve together with
// the solver output and the derived allocation.
type Result struct {
	Provider   string
	Tickers    []string
	ReturnMean []float64
	Covariance [][]float64

	// Weights are the leading solution components normalized to sum to
	// one. Empty in circuit mode, where nothing is executed.
	Weights  []float64
	Fidelity *float64
	Solve    *solver.Result
}

// Service bridges market data and the solver.
type Service struct {
	market *marketdata.Service
	solver *solver.Service
	log    zerolog.Logger
}

// NewService creates a portfolio service.
func NewService(market *marketdata.Service, solverSvc *solver.Service, log zerolog.Logger) *Service {
	return &Service{
		market: market,
		solver: solverSvc,
		log:    log.With().Str("module", "portfolio").Logger(),
	}
}

// Optimize loads the provider's dataset, computes return statistics and
// solves Σx = μ̄ for the allocation vector.
func (s *Service) Optimize(ctx context.Context, req Request) (*Result, error) {
	ds, stats, err := s.market.LoadWithStatistics(ctx, req.Provider)
	if err != nil {
		return nil, err
	}

	n := len(ds.Tickers)
	matrix := make([][]complex128, n)
	for i := 0; i < n; i++ {
		matrix[i] = make([]complex128, n)
		for j := 0; j < n; j++ {
			matrix[i][j] = complex(stats.PeriodReturnCov[i][j], 0)
		}
	}
	vector := make([]complex128, n)
	for i := 0; i < n; i++ {
		vector[i] = complex(stats.PeriodReturnMean[i], 0)
	}

	mode := req.Mode
	if mode == "" {
		mode = solver.ModeEvaluate
	}

	solveRes, err := s.solver.Solve(ctx, solver.Request{
		Matrix:       matrix,
		Vector:       vector,
		Mode:         mode,
		Eigs:         req.Eigs,
		Reciprocal:   req.Reciprocal,
		InitialState: req.InitialState,
	})
	if err != nil {
		return nil, fmt.Errorf("solve for %s: %w", req.Provider, err)
	}

	result := &Result{
		Provider:   ds.Provider,
		Tickers:    ds.Tickers,
		ReturnMean: stats.PeriodReturnMean,
		Covariance: stats.PeriodReturnCov,
		Fidelity:   solveRes.Fidelity,
		Solve:      solveRes,
	}

	if len(solveRes.Solution) > 0 {
		weights, err := allocationWeights(solveRes.Solution, n)
		if err != nil {
			return nil, err
		}
		result.Weights = weights
	}

	s.log.Info().
		Str("provider", ds.Provider).
		Int("assets", n).
		Str("mode", mode).
		Msg("Portfolio solve completed")

	return result, nil
}

// allocationWeights normalizes the leading n solution components so they
// sum to one. The solver pads the system to a power of two, so trailing
// filler components are dropped first.
func allocationWeights(solution []complex128, n int) ([]float64, error) {
	if n > len(solution) {
		n = len(solution)
	}
	sum := 0.0
	parts := make([]float64, n)
	for i := 0; i < n; i++ {
		parts[i] = real(solution[i])
		sum += parts[i]
	}
	if math.Abs(sum) < 1e-12 {
		return nil, fmt.Errorf("allocation weights sum to zero")
	}
	weights := make([]float64, n)
	for i := range parts {
		weights[i] = parts[i] / sum
	}
	return weights, nil
}
