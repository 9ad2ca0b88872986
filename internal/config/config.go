package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Store selects the persistence backend for finalized orders.
const (
	StoreRemote   = "remote"
	StorePostgres = "postgres"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv string
	Port   string

	RedisURL    string
	DatabaseURL string

	SheetsBaseURL string
	SheetsAccount string

	OrderStore   string
	OrdersAPIURL string

	CORSAllowedOrigins []string

	CatalogCacheTTL time.Duration
	DraftTTL        time.Duration
	IdempotencyTTL  time.Duration
	OutboundTimeout time.Duration

	ExportDir string

	QueueRedisPrefix      string
	QueueMaxAttempts      int
	QueueVisibilityTO     time.Duration
	QueueBackoffBase      time.Duration
	QueueBackoffJitter    float64
	QueueExportConcurrent int

	RateLimitWindow time.Duration
	RateLimitMax    int

	ClientsDefaultLimit int
	ClientsMaxLimit     int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:                valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                  valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:              k.String("REDIS_URL"),
		DatabaseURL:           k.String("DATABASE_URL"),
		SheetsBaseURL:         strings.TrimRight(k.String("SHEETS_BASE_URL"), "/"),
		SheetsAccount:         strings.TrimSpace(k.String("SHEETS_ACCOUNT")),
		OrderStore:            valueOrDefault(strings.ToLower(k.String("ORDER_STORE")), StoreRemote),
		OrdersAPIURL:          strings.TrimRight(k.String("ORDERS_API_URL"), "/"),
		CORSAllowedOrigins:    splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		CatalogCacheTTL:       parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		DraftTTL:              parseDuration(k.String("DRAFT_TTL"), "24h"),
		IdempotencyTTL:        parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		OutboundTimeout:       parseDuration(k.String("OUTBOUND_TIMEOUT"), "10s"),
		ExportDir:             valueOrDefault(k.String("EXPORT_DIR"), os.TempDir()),
		QueueRedisPrefix:      valueOrDefault(k.String("QUEUE_REDIS_PREFIX"), "sales"),
		QueueMaxAttempts:      intOrDefault(k.String("QUEUE_MAX_ATTEMPTS"), 5),
		QueueVisibilityTO:     parseDuration(k.String("QUEUE_VISIBILITY_TIMEOUT"), "30s"),
		QueueBackoffBase:      parseDuration(k.String("QUEUE_BACKOFF_BASE"), "500ms"),
		QueueBackoffJitter:    floatOrDefault(k.String("QUEUE_BACKOFF_JITTER"), 0.2),
		QueueExportConcurrent: intOrDefault(k.String("QUEUE_CONCURRENCY_EXPORT"), 2),
		RateLimitWindow:       parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:          intOrDefault(k.String("RATE_LIMIT_MAX"), 120),
		ClientsDefaultLimit:   intOrDefault(k.String("CLIENTS_DEFAULT_LIMIT"), 10),
		ClientsMaxLimit:       intOrDefault(k.String("CLIENTS_MAX_LIMIT"), 100),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.SheetsBaseURL == "" {
		return nil, errors.New("SHEETS_BASE_URL is required")
	}
	if cfg.SheetsAccount == "" {
		return nil, errors.New("SHEETS_ACCOUNT is required")
	}
	switch cfg.OrderStore {
	case StoreRemote:
		if cfg.OrdersAPIURL == "" {
			return nil, errors.New("ORDERS_API_URL is required when ORDER_STORE=remote")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when ORDER_STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown ORDER_STORE: %s", cfg.OrderStore)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func intOrDefault(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(trimmed, "%d", &n); err != nil {
		return fallback
	}
	return n
}

func floatOrDefault(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	var f float64
	if _, err := fmt.Sscanf(trimmed, "%f", &f); err != nil {
		return fallback
	}
	return f
}

// MustLoad behaves like Load but panics on error. Useful for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests overrides environment variables for the duration of a Load call.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
