package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/qsolve/internal/clientdata"
)

// ExchangeProvider loads end-of-day closes from a single exchange's
// Nasdaq Data Link datasets (LSE, SGX and similar).
type ExchangeProvider struct {
	baseURL   string
	exchange  string
	apiKey    string
	tickers   []string
	start     time.Time
	end       time.Time
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewExchangeProvider creates an exchange dataset provider.
// exchange defaults to "LSE". An apiKey is required by the upstream API
// for most exchange datasets.
// cacheRepo is optional - if nil, caching is disabled.
func NewExchangeProvider(exchange string, tickers []string, start, end time.Time, apiKey string, cacheRepo *clientdata.Repository, log zerolog.Logger) *ExchangeProvider {
	if exchange == "" {
		exchange = "LSE"
	}
	return &ExchangeProvider{
		baseURL:   "https://data.nasdaq.com/api/v3/datasets",
		exchange:  exchange,
		apiKey:    apiKey,
		tickers:   append([]string(nil), tickers...),
		start:     start,
		end:       end,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log.With().Str("provider", "exchange").Str("exchange", exchange).Logger(),
		cacheRepo: cacheRepo,
	}
}

// Name returns the provider name.
func (p *ExchangeProvider) Name() string {
	return "exchange"
}

// Tickers returns the symbols this provider loads.
func (p *ExchangeProvider) Tickers() []string {
	return append([]string(nil), p.tickers...)
}

// Load fetches closes for each ticker, cache-first.
// If the API fails, stale cached series are used when available.
func (p *ExchangeProvider) Load(ctx context.Context) (*Dataset, error) {
	series := make([][]float64, 0, len(p.tickers))
	for _, ticker := range p.tickers {
		s, err := p.loadSeries(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", p.exchange, ticker, err)
		}
		series = append(series, s)
	}
	return &Dataset{Provider: p.Name(), Tickers: p.Tickers(), Series: series}, nil
}

func (p *ExchangeProvider) loadSeries(ctx context.Context, ticker string) ([]float64, error) {
	cacheKey := p.exchange + "/" + ticker

	// Check persistent cache for fresh data
	if p.cacheRepo != nil {
		data, err := p.cacheRepo.GetIfFresh("exchange_eod", cacheKey)
		if err == nil && data != nil {
			var cached []float64
			if err := msgpack.Unmarshal(data, &cached); err == nil {
				p.log.Debug().
					Str("series", cacheKey).
					Int("points", len(cached)).
					Msg("Cache hit")
				return cached, nil
			}
		}
	}

	closes, err := p.fetchSeries(ctx, ticker)
	if err != nil {
		// API failed - try to get stale cached data as fallback
		if stale, ok := p.staleFromCache(cacheKey); ok {
			p.log.Warn().
				Err(err).
				Str("series", cacheKey).
				Msg("API failed, using stale cached series")
			return stale, nil
		}
		return nil, err
	}

	// Cache persistently
	if p.cacheRepo != nil {
		if err := p.cacheRepo.Store("exchange_eod", cacheKey, closes, clientdata.TTLExchangeSeries); err != nil {
			p.log.Warn().Err(err).Str("series", cacheKey).Msg("Failed to cache series")
		}
	}

	p.log.Info().
		Str("series", cacheKey).
		Int("points", len(closes)).
		Msg("Fetched series")

	return closes, nil
}

func (p *ExchangeProvider) fetchSeries(ctx context.Context, ticker string) ([]float64, error) {
	query := url.Values{}
	query.Set("start_date", p.start.Format("2006-01-02"))
	query.Set("end_date", p.end.Format("2006-01-02"))
	query.Set("order", "asc")
	if p.apiKey != "" {
		query.Set("api_key", p.apiKey)
	}
	reqURL := fmt.Sprintf("%s/%s/%s.json?%s", p.baseURL, p.exchange, ticker, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result datasetResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return closesColumn(result, "Close")
}

// staleFromCache retrieves a cached series even if expired.
// Use this as a fallback when API calls fail - stale data is better than no data.
func (p *ExchangeProvider) staleFromCache(cacheKey string) ([]float64, bool) {
	if p.cacheRepo == nil {
		return nil, false
	}

	data, err := p.cacheRepo.Get("exchange_eod", cacheKey)
	if err != nil || data == nil {
		return nil, false
	}

	var cached []float64
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return cached, true
}
