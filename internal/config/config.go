package config

import (
	"log"
	"os"
	"strings"
	"time"
)

const (
	defaultDBPath      = "./dev.db"
	defaultPort        = "8080"
	defaultEnv         = "dev"
	defaultAPIBaseURL  = "http://localhost:8080"
	defaultCalcDelay   = 300 * time.Millisecond
	defaultHTTPTimeout = 10 * time.Second
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	// Env only labels the startup log line; migrations run in every environment.
	Env      string
	DBPath   string
	Port     string
	SeedDemo bool

	// Client side.
	APIBaseURL    string
	AutoCalcDelay time.Duration
	HTTPTimeout   time.Duration
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// A local .env is optional; production injects real environment variables.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: %v", err)
	}

	cfg := Config{
		Env:           os.Getenv("APP_ENV"),
		DBPath:        os.Getenv("DB_PATH"),
		Port:          os.Getenv("PORT"),
		SeedDemo:      parseBool(os.Getenv("SEED_DEMO")),
		APIBaseURL:    strings.TrimRight(os.Getenv("API_BASE_URL"), "/"),
		AutoCalcDelay: parseDuration("AUTO_CALC_DELAY", defaultCalcDelay),
		HTTPTimeout:   parseDuration("HTTP_TIMEOUT", defaultHTTPTimeout),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}

	return cfg
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("warning: %s=%q is not a positive duration, using %s", key, raw, fallback)
		return fallback
	}
	return d
}
