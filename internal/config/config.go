package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings backends
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Addr            string
	DBPath          string
	LogLevel        string
	TickInterval    time.Duration
	SessionIdleTTL  time.Duration
	WorkerCount     int
	WorkerQueueSize int
	SettingsBackend string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	SettingsTTL     time.Duration
	AMQPURL         string
	EventsExchange  string
	ShutdownTimeout time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:            envOr("ADDR", ":8080"),
		DBPath:          envOr("DB_PATH", "timestrainer.db"),
		LogLevel:        envOr("LOG_LEVEL", "INFO"),
		TickInterval:    envDurationOr("TICK_INTERVAL", 100*time.Millisecond),
		SessionIdleTTL:  envDurationOr("SESSION_IDLE_TTL", 30*time.Minute),
		WorkerCount:     envIntOr("WORKER_COUNT", 2),
		WorkerQueueSize: envIntOr("WORKER_QUEUE_SIZE", 64),
		SettingsBackend: strings.ToLower(envOr("SETTINGS_BACKEND", BackendSQLite)),
		RedisAddr:       envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         envIntOr("REDIS_DB", 0),
		SettingsTTL:     envDurationOr("SETTINGS_TTL", 0),
		AMQPURL:         os.Getenv("AMQP_URL"),
		EventsExchange:  envOr("EVENTS_EXCHANGE", "timestrainer.events"),
		ShutdownTimeout: envDurationOr("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.TickInterval < 10*time.Millisecond || c.TickInterval > time.Second {
		errs = append(errs, fmt.Errorf("TICK_INTERVAL must be between 10ms and 1s (got %s)", c.TickInterval))
	}
	if c.SessionIdleTTL < time.Minute {
		errs = append(errs, fmt.Errorf("SESSION_IDLE_TTL must be at least 1m (got %s)", c.SessionIdleTTL))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("WORKER_COUNT must be at least 1 (got %d)", c.WorkerCount))
	}
	if c.WorkerQueueSize < 1 {
		errs = append(errs, fmt.Errorf("WORKER_QUEUE_SIZE must be at least 1 (got %d)", c.WorkerQueueSize))
	}
	switch c.SettingsBackend {
	case BackendSQLite:
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR cannot be empty when SETTINGS_BACKEND=redis"))
		}
		if c.RedisDB < 0 {
			errs = append(errs, fmt.Errorf("REDIS_DB cannot be negative (got %d)", c.RedisDB))
		}
	default:
		errs = append(errs, fmt.Errorf("SETTINGS_BACKEND must be %q or %q (got %q)", BackendSQLite, BackendRedis, c.SettingsBackend))
	}
	if c.SettingsTTL < 0 {
		errs = append(errs, fmt.Errorf("SETTINGS_TTL cannot be negative (got %s)", c.SettingsTTL))
	}
	if c.AMQPURL != "" && c.EventsExchange == "" {
		errs = append(errs, errors.New("EVENTS_EXCHANGE cannot be empty when AMQP_URL is set"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive (got %s)", c.ShutdownTimeout))
	}

	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
