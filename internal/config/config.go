// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backend names accepted by QSOLVE_BACKEND.
const (
	BackendStatevector = "statevector"
	BackendSampling    = "sampling"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the cache database (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// Solver settings
	Backend           string // "statevector" (exact amplitudes) or "sampling" (shot-based)
	Shots             int    // Shot count for the sampling backend
	SamplingSeed      int64  // RNG seed for the sampling backend (0 = time-based)
	TomographyWorkers int    // Parallel executions during tomographic evaluation

	// Market data settings
	NasdaqAPIKey     string   // Nasdaq Data Link API key (Wikipedia/exchange providers)
	MarketProvider   string   // Default provider for scheduled refreshes
	MarketTickers    []string // Tickers refreshed by the scheduler
	SchedulerEnabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic
	// 1. Check QSOLVE_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path
	// 4. Ensure directory exists
	dataDir := getEnv("QSOLVE_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("QSOLVE_PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Backend:           getEnv("QSOLVE_BACKEND", BackendStatevector),
		Shots:             getEnvAsInt("QSOLVE_SHOTS", 8192),
		SamplingSeed:      getEnvAsInt64("QSOLVE_SEED", 0),
		TomographyWorkers: getEnvAsInt("QSOLVE_WORKERS", 4),

		NasdaqAPIKey:     getEnv("NASDAQ_DATA_LINK_API_KEY", ""),
		MarketProvider:   getEnv("MARKET_PROVIDER", "random"),
		MarketTickers:    getEnvAsList("MARKET_TICKERS", []string{"TICKER0", "TICKER1"}),
		SchedulerEnabled: getEnvAsBool("SCHEDULER_ENABLED", true),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Backend != BackendStatevector && c.Backend != BackendSampling {
		return fmt.Errorf("invalid QSOLVE_BACKEND %q (expected %q or %q)",
			c.Backend, BackendStatevector, BackendSampling)
	}
	if c.Shots < 1 {
		return fmt.Errorf("QSOLVE_SHOTS must be positive, got %d", c.Shots)
	}
	if c.TomographyWorkers < 1 {
		return fmt.Errorf("QSOLVE_WORKERS must be positive, got %d", c.TomographyWorkers)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("QSOLVE_PORT out of range: %d", c.Port)
	}

	// Note: Nasdaq Data Link key optional, the random provider needs no credentials

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
