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

// WikipediaProvider loads end-of-day adjusted closes from the Nasdaq
// Data Link WIKI archive.
type WikipediaProvider struct {
	baseURL   string
	apiKey    string
	tickers   []string
	start     time.Time
	end       time.Time
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewWikipediaProvider creates a WIKI EOD provider.
// apiKey is optional for low request volumes.
// cacheRepo is optional - if nil, caching is disabled.
func NewWikipediaProvider(tickers []string, start, end time.Time, apiKey string, cacheRepo *clientdata.Repository, log zerolog.Logger) *WikipediaProvider {
	return &WikipediaProvider{
		baseURL:   "https://data.nasdaq.com/api/v3/datasets",
		apiKey:    apiKey,
		tickers:   append([]string(nil), tickers...),
		start:     start,
		end:       end,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log.With().Str("provider", "wikipedia").Logger(),
		cacheRepo: cacheRepo,
	}
}

// Name returns the provider name.
func (p *WikipediaProvider) Name() string {
	return "wikipedia"
}

// Tickers returns the symbols this provider loads.
func (p *WikipediaProvider) Tickers() []string {
	return append([]string(nil), p.tickers...)
}

// Load fetches adjusted closes for each ticker, cache-first.
// If the API fails, stale cached series are used when available.
func (p *WikipediaProvider) Load(ctx context.Context) (*Dataset, error) {
	series := make([][]float64, 0, len(p.tickers))
	for _, ticker := range p.tickers {
		s, err := p.loadSeries(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("wikipedia %s: %w", ticker, err)
		}
		series = append(series, s)
	}
	return &Dataset{Provider: p.Name(), Tickers: p.Tickers(), Series: series}, nil
}

func (p *WikipediaProvider) loadSeries(ctx context.Context, ticker string) ([]float64, error) {
	// Check persistent cache for fresh data
	if p.cacheRepo != nil {
		data, err := p.cacheRepo.GetIfFresh("wikipedia_eod", ticker)
		if err == nil && data != nil {
			var cached []float64
			if err := msgpack.Unmarshal(data, &cached); err == nil {
				p.log.Debug().
					Str("ticker", ticker).
					Int("points", len(cached)).
					Msg("Cache hit")
				return cached, nil
			}
		}
	}

	closes, err := p.fetchSeries(ctx, ticker)
	if err != nil {
		// API failed - try to get stale cached data as fallback
		if stale, ok := p.staleFromCache(ticker); ok {
			p.log.Warn().
				Err(err).
				Str("ticker", ticker).
				Msg("API failed, using stale cached series")
			return stale, nil
		}
		return nil, err
	}

	// Cache persistently
	if p.cacheRepo != nil {
		if err := p.cacheRepo.Store("wikipedia_eod", ticker, closes, clientdata.TTLWikipediaSeries); err != nil {
			p.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache series")
		}
	}

	p.log.Info().
		Str("ticker", ticker).
		Int("points", len(closes)).
		Msg("Fetched series")

	return closes, nil
}

func (p *WikipediaProvider) fetchSeries(ctx context.Context, ticker string) ([]float64, error) {
	query := url.Values{}
	query.Set("start_date", p.start.Format("2006-01-02"))
	query.Set("end_date", p.end.Format("2006-01-02"))
	query.Set("order", "asc")
	if p.apiKey != "" {
		query.Set("api_key", p.apiKey)
	}
	reqURL := fmt.Sprintf("%s/WIKI/%s.json?%s", p.baseURL, ticker, query.Encode())

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

	return closesColumn(result, "Adj. Close")
}

// staleFromCache retrieves a cached series even if expired.
// Use this as a fallback when API calls fail - stale data is better than no data.
func (p *WikipediaProvider) staleFromCache(ticker string) ([]float64, bool) {
	if p.cacheRepo == nil {
		return nil, false
	}

	data, err := p.cacheRepo.Get("wikipedia_eod", ticker)
	if err != nil || data == nil {
		return nil, false
	}

	var cached []float64
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return cached, true
}
