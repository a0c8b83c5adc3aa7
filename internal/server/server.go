// Package server provides the HTTP server and routing for qsolve.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/config"
	"github.com/aristath/qsolve/internal/database"
	"github.com/aristath/qsolve/internal/events"
	"github.com/aristath/qsolve/internal/modules/marketdata"
	marketdatahandlers "github.com/aristath/qsolve/internal/modules/marketdata/handlers"
	"github.com/aristath/qsolve/internal/modules/portfolio"
	portfoliohandlers "github.com/aristath/qsolve/internal/modules/portfolio/handlers"
	"github.com/aristath/qsolve/internal/modules/solver"
	solverhandlers "github.com/aristath/qsolve/internal/modules/solver/handlers"
	"github.com/aristath/qsolve/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Log     zerolog.Logger
	Config  *config.Config
	CacheDB *database.DB
	Bus     *events.Bus

	SolverService    *solver.Service
	MarketService    *marketdata.Service
	PortfolioService *portfolio.Service

	// Scheduler and Jobs back the manual trigger endpoints. Both are
	// optional; triggers run the job inline when no scheduler is set.
	Scheduler *scheduler.Scheduler
	Jobs      []scheduler.Job
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    *config.Config

	systemHandlers *SystemHandlers
	eventsStream   *EventsStreamHandler

	solverService    *solver.Service
	marketService    *marketdata.Service
	portfolioService *portfolio.Service
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:           chi.NewRouter(),
		log:              cfg.Log.With().Str("component", "server").Logger(),
		cfg:              cfg.Config,
		systemHandlers:   NewSystemHandlers(cfg.Log, cfg.CacheDB, cfg.SolverService, cfg.Scheduler, cfg.Jobs),
		eventsStream:     NewEventsStreamHandler(cfg.Bus, cfg.Log),
		solverService:    cfg.SolverService,
		marketService:    cfg.MarketService,
		portfolioService: cfg.PortfolioService,
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check (outside /api, used by load balancers)
	s.router.Get("/health", s.systemHandlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// The SSE stream is long-lived, so it stays outside the request
		// timeout group.
		r.Get("/events/stream", s.eventsStream.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// System monitoring and manual job triggers
			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
				r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
				r.Get("/jobs", s.systemHandlers.HandleJobsStatus)
				r.Post("/jobs/{name}", s.systemHandlers.HandleTriggerJob)
			})

			// Solver module
			solverHandler := solverhandlers.NewHandler(s.solverService, s.log)
			solverHandler.RegisterRoutes(r)

			// Market data module
			marketHandler := marketdatahandlers.NewHandler(s.marketService, s.log)
			marketHandler.RegisterRoutes(r)

			// Portfolio module
			portfolioHandler := portfoliohandlers.NewHandler(s.portfolioService, s.log)
			portfolioHandler.RegisterRoutes(r)
		})
	})
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
