// Package handlers provides HTTP handlers for the marketdata module.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/modules/marketdata"
)

// Handler holds dependencies for market data HTTP handlers.
type Handler struct {
	service *marketdata.Service
	log     zerolog.Logger
}

// NewHandler creates a new market data handler.
func NewHandler(service *marketdata.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "marketdata").Logger(),
	}
}

// HandleListProviders returns the registered provider names.
func (h *Handler) HandleListProviders(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"data": map[string]interface{}{
			"providers": h.service.Providers(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetDataset loads a provider's dataset and its derived
// statistics.
func (h *Handler) HandleGetDataset(w http.ResponseWriter, r *http.Request, provider string) {
	ds, stats, err := h.service.LoadWithStatistics(r.Context(), provider)
	if err != nil {
		h.log.Error().Err(err).Str("provider", provider).Msg("Failed to load dataset")

		status := http.StatusBadGateway
		if errors.Is(err, marketdata.ErrUnknownProvider) {
			status = http.StatusNotFound
		} else if errors.Is(err, marketdata.ErrNoData) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"provider": ds.Provider,
			"tickers":  ds.Tickers,
			"series":   ds.Series,
			"statistics": map[string]interface{}{
				"mean":                     stats.Mean,
				"period_return_mean":       stats.PeriodReturnMean,
				"covariance":               stats.Covariance,
				"period_return_covariance": stats.PeriodReturnCov,
				"similarity":               stats.Similarity,
			},
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
