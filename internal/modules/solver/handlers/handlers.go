// Package handlers provides HTTP handlers for linear system solves.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/modules/solver"
)

// Handler handles solver HTTP requests
type Handler struct {
	service *solver.Service
	log     zerolog.Logger
}

// NewHandler creates a new solver handler
func NewHandler(service *solver.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "solver").Logger(),
	}
}

// ComplexValue carries one complex number as explicit real and imaginary
// parts, the same shape amplitudes take everywhere else in the API.
type ComplexValue struct {
	Real      float64 `json:"real"`
	Imaginary float64 `json:"imaginary"`
}

// SolveRequest represents a request to solve a linear system
type SolveRequest struct {
	Matrix [][]ComplexValue `json:"matrix"`
	Vector []ComplexValue   `json:"vector"`
	Mode   string           `json:"mode"`

	Eigs         *solver.ComponentSpec `json:"eigs,omitempty"`
	Reciprocal   *solver.ComponentSpec `json:"reciprocal,omitempty"`
	InitialState *solver.ComponentSpec `json:"initial_state,omitempty"`
}

// HandleSolve handles POST /api/solver/solve
func (h *Handler) HandleSolve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.service.Solve(r.Context(), solver.Request{
		Matrix:       matrixFromWire(req.Matrix),
		Vector:       vectorFromWire(req.Vector),
		Mode:         req.Mode,
		Eigs:         req.Eigs,
		Reciprocal:   req.Reciprocal,
		InitialState: req.InitialState,
	})
	if err != nil {
		http.Error(w, err.Error(), solveStatus(err))
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

// HandleListComponents handles GET /api/solver/components
func (h *Handler) HandleListComponents(w http.ResponseWriter, r *http.Request) {
	catalog := h.service.Components()
	backendName, exact := h.service.BackendInfo()

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"components": catalog,
			"modes":      []string{solver.ModeCircuit, solver.ModeEvaluate},
			"backend": map[string]interface{}{
				"name":  backendName,
				"exact": exact,
			},
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// solveStatus maps solver errors onto HTTP status codes. Bad systems and
// unresolvable components are the client's fault; a failing backend is not.
func solveStatus(err error) int {
	switch {
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

func vectorFromWire(v []ComplexValue) []complex128 {
	if v == nil {
		return nil
	}
	out := make([]complex128, len(v))
	for i, c := range v {
		out[i] = complex(c.Real, c.Imaginary)
	}
	return out
}

func matrixFromWire(m [][]ComplexValue) [][]complex128 {
	if m == nil {
		return nil
	}
	out := make([][]complex128, len(m))
	for i, row := range m {
		out[i] = vectorFromWire(row)
	}
	return out
}

func vectorToWire(v []complex128) []ComplexValue {
	out := make([]ComplexValue, len(v))
	for i, c := range v {
		out[i] = ComplexValue{Real: real(c), Imaginary: imag(c)}
	}
	return out
}

func matrixToWire(m [][]complex128) [][]ComplexValue {
	out := make([][]ComplexValue, len(m))
	for i, row := range m {
		out[i] = vectorToWire(row)
	}
	return out
}

func resultToWire(res *solver.Result) map[string]interface{} {
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
		"registers":             res.Registers,
		"input_matrix":          matrixToWire(res.InputMatrix),
		"input_vector":          vectorToWire(res.InputVector),
		"classical_eigenvalues": res.ClassicalEigenvalues,
		"classical_solution":    vectorToWire(res.ClassicalSolution),
	}
	if res.SuccessProbability != nil {
		out["success_probability"] = *res.SuccessProbability
	}
	if res.BasisSettings != nil {
		out["basis_settings"] = res.BasisSettings
		out["setting_probabilities"] = res.SettingProbabilities
	}
	if res.Fidelity != nil {
		out["fidelity"] = *res.Fidelity
		out["estimated_solution"] = vectorToWire(res.EstimatedSolution)
		out["solution"] = vectorToWire(res.Solution)
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
