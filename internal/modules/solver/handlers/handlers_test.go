package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsolve/internal/algorithms"
	"github.com/aristath/qsolve/internal/events"
	"github.com/aristath/qsolve/internal/modules/solver"
	"github.com/aristath/qsolve/internal/quantum"
)

func setupTestHandler() *Handler {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	registry := algorithms.NewPopulatedRegistry(logger)
	backend := quantum.NewStatevectorBackend(logger)
	service := solver.NewService(registry, backend, events.NewBus(logger), 2, logger)
	return NewHandler(service, logger)
}

func identityBody(mode string) []byte {
	body, _ := json.Marshal(SolveRequest{
		Matrix: [][]ComplexValue{
			{{Real: 1}, {}},
			{{}, {Real: 1}},
		},
		Vector: []ComplexValue{{Real: 1}, {}},
		Mode:   mode,
	})
	return body
}

func TestHandleSolveCircuitMode(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("POST", "/api/solver/solve", bytes.NewReader(identityBody("circuit")))
	w := httptest.NewRecorder()

	handler.HandleSolve(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	assert.Contains(t, response, "metadata")
	require.Contains(t, response, "data")
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "circuit", data["mode"])

	circuit := data["circuit"].(map[string]interface{})
	assert.Contains(t, circuit["name"], "hhl-")
	assert.Equal(t, 8.0, circuit["width"])

	registers := data["registers"].([]interface{})
	require.Len(t, registers, 3)
	first := registers[0].(map[string]interface{})
	assert.Equal(t, "io", first["name"])
	assert.Equal(t, "quantum", first["kind"])

	assert.NotContains(t, data, "fidelity")
	assert.NotContains(t, data, "success_probability")
}

func TestHandleSolveEvaluateMode(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("POST", "/api/solver/solve", bytes.NewReader(identityBody("evaluate")))
	w := httptest.NewRecorder()

	handler.HandleSolve(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "statevector_simulator", data["backend"])
	assert.InDelta(t, 1.0, data["fidelity"].(float64), 1e-9)
	assert.Contains(t, data, "success_probability")

	solution := data["solution"].([]interface{})
	require.Len(t, solution, 2)
	head := solution[0].(map[string]interface{})
	assert.InDelta(t, 1.0, head["real"].(float64), 1e-8)
	assert.InDelta(t, 0.0, head["imaginary"].(float64), 1e-8)
}

func TestHandleSolveInvalidJSON(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("POST", "/api/solver/solve", bytes.NewReader([]byte("invalid json")))
	w := httptest.NewRecorder()

	handler.HandleSolve(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSolveDimensionMismatch(t *testing.T) {
	handler := setupTestHandler()

	body, _ := json.Marshal(SolveRequest{
		Matrix: [][]ComplexValue{
			{{Real: 1}, {}},
			{{}, {Real: 1}},
		},
		Vector: []ComplexValue{{Real: 1}, {}, {Real: 3}},
		Mode:   "circuit",
	})

	req := httptest.NewRequest("POST", "/api/solver/solve", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleSolve(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "dimension mismatch")
}

func TestHandleSolveUnknownComponent(t *testing.T) {
	handler := setupTestHandler()

	body, _ := json.Marshal(SolveRequest{
		Matrix: [][]ComplexValue{
			{{Real: 1}, {}},
			{{}, {Real: 1}},
		},
		Vector: []ComplexValue{{Real: 1}, {}},
		Mode:   "circuit",
		Eigs:   &solver.ComponentSpec{Name: "lanczos"},
	})

	req := httptest.NewRequest("POST", "/api/solver/solve", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleSolve(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleListComponents(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/solver/components", nil)
	w := httptest.NewRecorder()

	handler.HandleListComponents(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	components := data["components"].(map[string]interface{})
	assert.Contains(t, components["eigs"], "qpe")
	assert.Contains(t, components["reciprocals"], "lookup")
	assert.Contains(t, components["reciprocals"], "longdivision")
	assert.Contains(t, components["initial_states"], "custom")
	assert.Equal(t, "qpe", components["default_eigs"])

	backend := data["backend"].(map[string]interface{})
	assert.Equal(t, "statevector_simulator", backend["name"])
	assert.Equal(t, true, backend["exact"])
}
