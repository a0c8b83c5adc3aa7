package server

import (
	"bufio"
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsolve/internal/clientdata"
	"github.com/aristath/qsolve/internal/config"
	"github.com/aristath/qsolve/internal/events"
	"github.com/aristath/qsolve/internal/modules/marketdata"
	"github.com/aristath/qsolve/internal/modules/portfolio"
	"github.com/aristath/qsolve/internal/scheduler"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := testLogger()

	cacheDB := newTestCacheDB(t)
	repo, err := clientdata.NewRepository(cacheDB)
	require.NoError(t, err)

	bus := events.NewBus(logger)
	solverSvc := newTestSolverService(t)

	market := marketdata.NewService(logger)
	market.Register(marketdata.NewRandomProvider([]string{"AAA", "BBB"}, 40, 7))

	portfolioSvc := portfolio.NewService(market, solverSvc, logger)

	cfg := &config.Config{
		DataDir: t.TempDir(),
		Port:    8001,
		Backend: config.BackendStatevector,
	}

	return New(Config{
		Log:              logger,
		Config:           cfg,
		CacheDB:          cacheDB,
		Bus:              bus,
		SolverService:    solverSvc,
		MarketService:    market,
		PortfolioService: portfolioSvc,
		Jobs:             []scheduler.Job{clientdata.NewCleanupJob(repo, logger)},
	})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestServerServesHealth(t *testing.T) {
	s := newTestServer(t)

	w := get(t, s, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestServerServesSolverComponents(t *testing.T) {
	s := newTestServer(t)

	w := get(t, s, "/api/solver/components")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "qpe")
	assert.Contains(t, w.Body.String(), "lookup")
}

func TestServerServesMarketProviders(t *testing.T) {
	s := newTestServer(t)

	w := get(t, s, "/api/market/providers")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "random")
}

func TestServerServesPortfolioOptimize(t *testing.T) {
	s := newTestServer(t)

	body := []byte(`{"provider":"random","mode":"circuit"}`)
	req := httptest.NewRequest("POST", "/api/portfolio/optimize", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"provider":"random"`)
}

func TestServerServesSystemStatus(t *testing.T) {
	s := newTestServer(t)

	w := get(t, s, "/api/system/status")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "statevector_simulator")
}

func TestServerTriggersJob(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/system/jobs/cache_cleanup", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
}

func TestServerUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	w := get(t, s, "/api/defragment")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerServesEventsStream(t *testing.T) {
	s := newTestServer(t)

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	connected := readSSE(t, reader)
	assert.Equal(t, "connected", connected["type"])
}
