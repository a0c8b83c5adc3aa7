// Package handlers provides HTTP handlers for portfolio allocation.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/modules/marketdata"
	"github.com/aristath/qsolve/internal/modules/portfolio"
	"github.com/aristath/qsolve/internal/modules/solver"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// OptimizeRequest represents a request to compute an allocation
type OptimizeRequest struct {
	Provider string `json:"provider"`
	Mode     string `json:"mode,omitempty"`

	Eigs         *solver.ComponentSpec `json:"eigs,omitempty"`
	Reciprocal   *solver.ComponentSpec `json:"reciprocal,omitempty"`
	InitialState *solver.ComponentSpec `json:"initial_state,omitempty"`
}

// HandleOptimize handles POST /api/portfolio/optimize
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.service.Optimize(r.Context(), portfolio.Request{
		Provider:     req.Provider,
		Mode:         req.Mode,
		Eigs:         req.Eigs,
		Reciprocal:   req.Reciprocal,
		InitialState: req.InitialState,
	})
	if err != nil {
		h.log.Error().Err(err).Str("provider", req.Provider).Msg("Portfolio optimization failed")
		http.Error(w, err.Error(), optimizeStatus(err))
		return
	}

	response := map[string]interface{}{
		"data": resultToWire(res),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// optimizeStatus maps optimization errors onto HTTP status codes. An unknown
// provider or a bad component selection is the client's fault; failures of
// the data source or the execution backend are not.
func optimizeStatus(err error) int {
	switch {
	case errors.Is(err, marketdata.ErrUnknownProvider):
		return http.StatusNotFound
	case errors.Is(err, marketdata.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, solver.ErrDimensionMismatch),
		errors.Is(err, solver.ErrConfiguration),
		errors.Is(err, solver.ErrMissingDependency):
		return http.StatusBadRequest
	case errors.Is(err, solver.ErrBackendExecution):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// resultToWire flattens a portfolio result for the API. The solve summary
// stays scalar; full amplitude-level output is the solver endpoint's job.
func resultToWire(res *portfolio.Result) map[string]interface{} {
	out := map[string]interface{}{
		"provider":    res.Provider,
		"tickers":     res.Tickers,
		"return_mean": res.ReturnMean,
		"covariance":  res.Covariance,
		"solve":       solveSummary(res.Solve),
	}
	if res.Weights != nil {
		out["weights"] = res.Weights
	}
	if res.Fidelity != nil {
		out["fidelity"] = *res.Fidelity
	}
	return out
}

func solveSummary(res *solver.Result) map[string]interface{} {
	out := map[string]interface{}{
		"request_id": res.RequestID,
		"mode":       res.Mode,
		"backend":    res.Backend,
		"circuit": map[string]interface{}{
			"name":       res.CircuitName,
			"width":      res.CircuitWidth,
			"depth":      res.CircuitDepth,
			"operations": res.OperationCount,
		},
	}
	if res.SuccessProbability != nil {
		out["success_probability"] = *res.SuccessProbability
	}
	return out
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
