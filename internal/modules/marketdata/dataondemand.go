package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/qsolve/internal/clientdata"
)

// DataOnDemandProvider loads intraday quote snapshots from the Nasdaq
// Data On Demand API. The ask price of each quote forms the series.
type DataOnDemandProvider struct {
	baseURL   string
	apiKey    string
	tickers   []string
	start     time.Time
	end       time.Time
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewDataOnDemandProvider creates a Data On Demand quotes provider.
// The upstream API rejects requests without a token.
// cacheRepo is optional - if nil, caching is disabled.
func NewDataOnDemandProvider(tickers []string, start, end time.Time, apiKey string, cacheRepo *clientdata.Repository, log zerolog.Logger) *DataOnDemandProvider {
	return &DataOnDemandProvider{
		baseURL:   "https://dataondemand.nasdaq.com/api/v1/quotes",
		apiKey:    apiKey,
		tickers:   append([]string(nil), tickers...),
		start:     start,
		end:       end,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log.With().Str("provider", "dataondemand").Logger(),
		cacheRepo: cacheRepo,
	}
}

// Name returns the provider name.
func (p *DataOnDemandProvider) Name() string {
	return "dataondemand"
}

// Tickers returns the symbols this provider loads.
func (p *DataOnDemandProvider) Tickers() []string {
	return append([]string(nil), p.tickers...)
}

// Load fetches quote series for each symbol, cache-first.
// If the API fails, stale cached series are used when available.
func (p *DataOnDemandProvider) Load(ctx context.Context) (*Dataset, error) {
	series := make([][]float64, 0, len(p.tickers))
	for _, symbol := range p.tickers {
		s, err := p.loadSeries(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("dataondemand %s: %w", symbol, err)
		}
		series = append(series, s)
	}
	return &Dataset{Provider: p.Name(), Tickers: p.Tickers(), Series: series}, nil
}

func (p *DataOnDemandProvider) loadSeries(ctx context.Context, symbol string) ([]float64, error) {
	// Check persistent cache for fresh data
	if p.cacheRepo != nil {
		data, err := p.cacheRepo.GetIfFresh("dataondemand_quotes", symbol)
		if err == nil && data != nil {
			var cached []float64
			if err := msgpack.Unmarshal(data, &cached); err == nil {
				p.log.Debug().
					Str("symbol", symbol).
					Int("points", len(cached)).
					Msg("Cache hit")
				return cached, nil
			}
		}
	}

	prices, err := p.fetchQuotes(ctx, symbol)
	if err != nil {
		// API failed - try to get stale cached data as fallback
		if stale, ok := p.staleFromCache(symbol); ok {
			p.log.Warn().
				Err(err).
				Str("symbol", symbol).
				Msg("API failed, using stale cached quotes")
			return stale, nil
		}
		return nil, err
	}

	// Cache persistently
	if p.cacheRepo != nil {
		if err := p.cacheRepo.Store("dataondemand_quotes", symbol, prices, clientdata.TTLQuotes); err != nil {
			p.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache quotes")
		}
	}

	p.log.Info().
		Str("symbol", symbol).
		Int("points", len(prices)).
		Msg("Fetched quotes")

	return prices, nil
}

func (p *DataOnDemandProvider) fetchQuotes(ctx context.Context, symbol string) ([]float64, error) {
	form := url.Values{}
	form.Set("_Token", p.apiKey)
	form.Set("symbols", symbol)
	form.Set("start", p.start.Format(time.RFC3339))
	form.Set("end", p.end.Format(time.RFC3339))
	form.Set("next_cursor", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result struct {
		Quotes []struct {
			AskPrice float64 `json:"ask_price"`
		} `json:"quotes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Quotes) == 0 {
		return nil, fmt.Errorf("%w: no quotes returned", ErrNoData)
	}

	prices := make([]float64, len(result.Quotes))
	for i, q := range result.Quotes {
		prices[i] = q.AskPrice
	}
	return prices, nil
}

// staleFromCache retrieves cached quotes even if expired.
// Use this as a fallback when API calls fail - stale data is better than no data.
func (p *DataOnDemandProvider) staleFromCache(symbol string) ([]float64, bool) {
	if p.cacheRepo == nil {
		return nil, false
	}

	data, err := p.cacheRepo.Get("dataondemand_quotes", symbol)
	if err != nil || data == nil {
		return nil, false
	}

	var cached []float64
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return cached, true
}
