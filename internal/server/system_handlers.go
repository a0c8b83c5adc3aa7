package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/qsolve/internal/clientdata"
	"github.com/aristath/qsolve/internal/database"
	"github.com/aristath/qsolve/internal/modules/solver"
	"github.com/aristath/qsolve/internal/scheduler"
	"github.com/aristath/qsolve/internal/version"
)

// SystemHandlers serves health, status and manual job trigger endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	cacheDB   *database.DB
	solverSvc *solver.Service
	sched     *scheduler.Scheduler
	jobs      map[string]scheduler.Job
	started   time.Time
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger, cacheDB *database.DB, solverSvc *solver.Service, sched *scheduler.Scheduler, jobs []scheduler.Job) *SystemHandlers {
	jobMap := make(map[string]scheduler.Job, len(jobs))
	for _, j := range jobs {
		jobMap[j.Name()] = j
	}

	return &SystemHandlers{
		log:       log.With().Str("component", "system_handlers").Logger(),
		cacheDB:   cacheDB,
		solverSvc: solverSvc,
		sched:     sched,
		jobs:      jobMap,
		started:   time.Now(),
	}
}

// HandleHealth handles health check requests
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK

	if h.cacheDB != nil {
		if err := h.cacheDB.Conn().Ping(); err != nil {
			h.log.Warn().Err(err).Msg("Cache database ping failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	h.writeJSON(w, code, map[string]interface{}{
		"status":  status,
		"version": version.Version,
		"service": "qsolve",
	})
}

// HandleSystemStatus returns runtime resource usage and solver backend info
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPct, memPct := h.getSystemStats()

	response := map[string]interface{}{
		"status":         "ok",
		"version":        version.Version,
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"cpu_percent":    cpuPct,
		"memory_percent": memPct,
		"goroutines":     runtime.NumGoroutine(),
	}

	if h.solverSvc != nil {
		name, exact := h.solverSvc.BackendInfo()
		response["backend"] = map[string]interface{}{
			"name":  name,
			"exact": exact,
		}
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDatabaseStats reports cache database size and per-table row counts
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	if h.cacheDB == nil {
		http.Error(w, "Cache database not configured", http.StatusServiceUnavailable)
		return
	}

	conn := h.cacheDB.Conn()
	now := time.Now().Unix()

	tables := make(map[string]interface{}, len(clientdata.AllTables))
	for _, table := range clientdata.AllTables {
		var total, expired int
		if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&total); err != nil {
			h.log.Warn().Err(err).Str("table", table).Msg("Failed to count table rows")
			continue
		}
		if err := conn.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE expires_at < ?", now).Scan(&expired); err != nil {
			h.log.Warn().Err(err).Str("table", table).Msg("Failed to count expired rows")
			continue
		}
		tables[table] = map[string]interface{}{
			"rows":    total,
			"expired": expired,
		}
	}

	var pageCount, pageSize int64
	if err := conn.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		h.log.Warn().Err(err).Msg("Failed to read page count")
	}
	if err := conn.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		h.log.Warn().Err(err).Msg("Failed to read page size")
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":       h.cacheDB.Name(),
		"size_bytes": pageCount * pageSize,
		"tables":     tables,
	})
}

// HandleJobsStatus lists the jobs available for manual triggering
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.jobs))
	for name := range h.jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": names,
	})
}

// HandleTriggerJob runs a registered job immediately
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	job, ok := h.jobs[name]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown job: %s", name), http.StatusNotFound)
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job trigger")

	var err error
	if h.sched != nil {
		err = h.sched.RunNow(job)
	} else {
		err = job.Run()
	}
	if err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manually triggered job failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"job":    name,
	})
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short interval (100ms) so status requests stay fast
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
