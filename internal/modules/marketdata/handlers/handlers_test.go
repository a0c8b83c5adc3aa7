package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsolve/internal/modules/marketdata"
)

func setupTestHandler() *Handler {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	service := marketdata.NewService(logger)
	service.Register(marketdata.NewRandomProvider([]string{"A", "B"}, 40, 7))
	return NewHandler(service, logger)
}

func TestHandleListProviders(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/market/providers", nil)
	w := httptest.NewRecorder()

	handler.HandleListProviders(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	assert.Contains(t, response, "metadata")
	require.Contains(t, response, "data")
	data := response["data"].(map[string]interface{})
	providers := data["providers"].([]interface{})
	assert.Contains(t, providers, "random")
}

func TestHandleGetDataset(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/market/dataset/random", nil)
	w := httptest.NewRecorder()

	handler.HandleGetDataset(w, req, "random")

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "random", data["provider"])

	tickers := data["tickers"].([]interface{})
	assert.Len(t, tickers, 2)

	series := data["series"].([]interface{})
	require.Len(t, series, 2)
	assert.Len(t, series[0].([]interface{}), 40)

	stats := data["statistics"].(map[string]interface{})
	assert.Contains(t, stats, "mean")
	assert.Contains(t, stats, "period_return_mean")
	assert.Contains(t, stats, "covariance")
	assert.Contains(t, stats, "period_return_covariance")
	assert.Contains(t, stats, "similarity")

	similarity := stats["similarity"].([]interface{})
	firstRow := similarity[0].([]interface{})
	assert.Equal(t, 1.0, firstRow[0])
}

func TestHandleGetDatasetUnknownProvider(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/market/dataset/nope", nil)
	w := httptest.NewRecorder()

	handler.HandleGetDataset(w, req, "nope")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "unknown provider")
}

func TestRoutesServeDataset(t *testing.T) {
	handler := setupTestHandler()

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	req := httptest.NewRequest("GET", "/market/dataset/random", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "random", data["provider"])
}
