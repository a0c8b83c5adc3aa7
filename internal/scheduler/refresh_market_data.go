package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/events"
	"github.com/aristath/qsolve/internal/modules/marketdata"
)

// refreshTimeout bounds one full refresh run across all providers.
const refreshTimeout = 5 * time.Minute

// RefreshMarketDataJob reloads provider datasets so the cache stays warm.
// Providers write fetched series to the cache themselves, so a plain load
// is enough.
type RefreshMarketDataJob struct {
	market    *marketdata.Service
	providers []string
	bus       *events.Bus
	log       zerolog.Logger
}

// NewRefreshMarketDataJob creates a refresh job for the named providers.
// An empty list means every registered provider.
func NewRefreshMarketDataJob(market *marketdata.Service, providers []string, bus *events.Bus, log zerolog.Logger) *RefreshMarketDataJob {
	return &RefreshMarketDataJob{
		market:    market,
		providers: providers,
		bus:       bus,
		log:       log.With().Str("job", "refresh_market_data").Logger(),
	}
}

// Name returns the job name
func (j *RefreshMarketDataJob) Name() string {
	return "refresh_market_data"
}

// Run reloads each target provider and publishes a refresh event.
func (j *RefreshMarketDataJob) Run() error {
	targets := j.providers
	if len(targets) == 0 {
		targets = j.market.Providers()
	}
	if len(targets) == 0 {
		j.log.Debug().Msg("No providers registered, nothing to refresh")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	refreshed := make([]string, 0, len(targets))
	for _, name := range targets {
		ds, err := j.market.LoadDataset(ctx, name)
		if err != nil {
			j.log.Warn().Err(err).Str("provider", name).Msg("Failed to refresh provider")
			continue
		}

		observations := 0
		if len(ds.Series) > 0 {
			observations = len(ds.Series[0])
		}
		j.log.Debug().
			Str("provider", name).
			Int("tickers", len(ds.Tickers)).
			Int("observations", observations).
			Msg("Provider refreshed")

		refreshed = append(refreshed, name)
	}

	if len(refreshed) == 0 {
		return fmt.Errorf("all %d providers failed to refresh", len(targets))
	}

	if j.bus != nil {
		j.bus.Emit(events.MarketDataRefreshed, "marketdata", map[string]interface{}{
			"providers": refreshed,
			"failed":    len(targets) - len(refreshed),
		})
	}

	j.log.Info().
		Int("refreshed", len(refreshed)).
		Int("failed", len(targets)-len(refreshed)).
		Msg("Market data refresh completed")

	return nil
}
