// Package main is the entry point for the qsolve quantum linear-system service.
// The application solves A·x = b by assembling quantum circuits (state preparation,
// phase estimation, conditioned reciprocal rotation, uncomputation), executing them
// on a simulator backend, and decoding the solution back into classical form.
//
// Layering:
// - internal/linalg and internal/quantum are pure computation (no infrastructure)
// - internal/algorithms holds the circuit-factory registry
// - internal/modules/* expose the solver, market data, and portfolio APIs
// - internal/server wires the HTTP surface
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/qsolve/internal/algorithms"
	"github.com/aristath/qsolve/internal/clientdata"
	"github.com/aristath/qsolve/internal/config"
	"github.com/aristath/qsolve/internal/database"
	"github.com/aristath/qsolve/internal/events"
	"github.com/aristath/qsolve/internal/modules/marketdata"
	"github.com/aristath/qsolve/internal/modules/portfolio"
	"github.com/aristath/qsolve/internal/modules/solver"
	"github.com/aristath/qsolve/internal/quantum"
	"github.com/aristath/qsolve/internal/scheduler"
	"github.com/aristath/qsolve/internal/server"
	"github.com/aristath/qsolve/internal/version"
	"github.com/aristath/qsolve/pkg/logger"
)

// Cron schedules for the background jobs (six-field specs, seconds first).
const (
	scheduleMarketRefresh  = "0 0 * * * *"    // hourly
	scheduleCacheCleanup   = "0 */15 * * * *" // every 15 minutes, matches the quote TTL
	scheduleWALCheckpoints = "0 */5 * * * *"  // every 5 minutes
)

// main orchestrates the startup sequence:
// 1. Loads configuration from environment variables (.env file)
// 2. Initializes structured logging
// 3. Opens the cache database (market data series, quote blobs)
// 4. Builds the component registry and the quantum backend
// 5. Creates the solver, market data, and portfolio services
// 6. Registers background jobs and starts the scheduler (if enabled)
// 7. Starts the HTTP server
// 8. Waits for a shutdown signal and drains gracefully
func main() {
	// Load configuration first to get the log level. If this fails we still
	// want the error on a structured logger, so fall back to defaults.
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Str("version", version.Version).Msg("Starting qsolve")

	// Cache database - holds fetched market data series so providers can run
	// cache-first and fall back to stale data when the upstream API is down.
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	cacheRepo, err := clientdata.NewRepository(cacheDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache repository")
	}
	log.Info().Str("path", cacheDB.Path()).Msg("Cache database initialized")

	// Event bus - solver progress, job results, and system status flow through
	// here and out to SSE subscribers.
	bus := events.NewBus(log)

	// Component registry - maps component names (qpe, lookup, longdivision, ...)
	// to circuit factories. The solver resolves requests against this registry.
	registry := algorithms.NewPopulatedRegistry(log)
	log.Info().
		Strs("eigenvalue_estimators", registry.EigsNames()).
		Strs("reciprocals", registry.ReciprocalNames()).
		Strs("initial_states", registry.InitialStateNames()).
		Msg("Component registry populated")

	// Quantum backend - the statevector backend returns exact amplitudes, the
	// sampling backend returns shot counts and forces tomographic decoding.
	var backend quantum.Backend
	switch cfg.Backend {
	case config.BackendSampling:
		backend = quantum.NewSamplingBackend(cfg.Shots, cfg.SamplingSeed, log)
	default:
		backend = quantum.NewStatevectorBackend(log)
	}
	log.Info().Str("backend", backend.Name()).Msg("Quantum backend initialized")

	solverSvc := solver.NewService(registry, backend, bus, cfg.TomographyWorkers, log)

	// Market data providers. The random provider always works offline; the
	// Nasdaq Data Link providers fetch real end-of-day series through the cache.
	end := time.Now()
	start := end.AddDate(-1, 0, 0)

	market := marketdata.NewService(log)
	market.Register(marketdata.NewRandomProvider(cfg.MarketTickers, 0, 0))
	market.Register(marketdata.NewWikipediaProvider(cfg.MarketTickers, start, end, cfg.NasdaqAPIKey, cacheRepo, log))
	market.Register(marketdata.NewExchangeProvider("LSE", cfg.MarketTickers, start, end, cfg.NasdaqAPIKey, cacheRepo, log))
	market.Register(marketdata.NewDataOnDemandProvider(cfg.MarketTickers, start, end, cfg.NasdaqAPIKey, cacheRepo, log))
	log.Info().Strs("providers", market.Providers()).Msg("Market data providers registered")

	portfolioSvc := portfolio.NewService(market, solverSvc, log)

	// Background jobs. The slice also feeds the manual-trigger endpoints at
	// /api/system/jobs, so jobs stay triggerable when the scheduler is off.
	jobs := []scheduler.Job{
		scheduler.NewRefreshMarketDataJob(market, []string{cfg.MarketProvider}, bus, log),
		clientdata.NewCleanupJob(cacheRepo, log),
		scheduler.NewCheckWALCheckpointsJob(cacheDB, log),
	}

	sched := scheduler.New(log)
	if cfg.SchedulerEnabled {
		schedules := []string{scheduleMarketRefresh, scheduleCacheCleanup, scheduleWALCheckpoints}
		for i, job := range jobs {
			if err := sched.AddJob(schedules[i], job); err != nil {
				log.Fatal().Err(err).Str("job", job.Name()).Msg("Failed to schedule job")
			}
		}
		sched.Start()
		log.Info().Int("jobs", len(jobs)).Msg("Scheduler started")
	} else {
		log.Info().Msg("Scheduler disabled")
	}

	srv := server.New(server.Config{
		Log:              log,
		Config:           cfg,
		CacheDB:          cacheDB,
		Bus:              bus,
		SolverService:    solverSvc,
		MarketService:    market,
		PortfolioService: portfolioSvc,
		Scheduler:        sched,
		Jobs:             jobs,
	})

	// Start the server in a goroutine so main can block on the signal channel.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for SIGINT (Ctrl+C) or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Stop the scheduler first so no new jobs start mid-shutdown. Stop blocks
	// until in-flight jobs finish.
	if cfg.SchedulerEnabled {
		sched.Stop()
		log.Info().Msg("Scheduler stopped")
	}

	// Give in-flight HTTP requests up to 10 seconds to drain.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
