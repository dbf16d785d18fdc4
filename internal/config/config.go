package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tiendabot/storefront/internal/rates"
)

const (
	defaultAppName           = "Storefront"
	defaultAppEnv            = "development"
	defaultPort              = "8080"
	defaultLogLevel          = "info"
	defaultShutdownDelay     = 10 * time.Second
	defaultIdempotencyTTL    = 24 * time.Hour
	defaultLedgerPath        = "data/balances.json"
	defaultMutationLimit     = 30
	idemTTLSecondsEnvVar     = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar         = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar    = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar   = "SHUTDOWN_TIMEOUT"
	rateTTLSecondsEnvVar     = "RATE_CACHE_TTL_SECONDS"
	rateTTLDurEnvVar         = "RATE_CACHE_TTL"
	rateTimeoutSecondsEnvVar = "RATE_FETCH_TIMEOUT_SECONDS"
	rateTimeoutDurEnvVar     = "RATE_FETCH_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName           string
	AppEnv            string
	Port              string
	LogLevel          string
	DatabaseURL       string
	RedisURL          string
	ShutdownPeriod    time.Duration
	IdempotencyTTL    time.Duration
	RateProviderURL   string
	RateCacheTTL      time.Duration
	RateFetchTimeout  time.Duration
	LedgerPath        string
	CatalogPath       string
	GatewaySecret     string
	MutationRateLimit int
	TelegramToken     string
	OwnerIDs          []string
	StaffIDs          []string
}

// Load reads configuration values from the environment and populates a Config
// instance. A .env file in the working directory is applied first when present;
// it never overrides variables that are already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		RateProviderURL: getEnv("RATE_PROVIDER_URL", rates.DefaultProviderURL),
		LedgerPath:      getEnv("LEDGER_PATH", defaultLedgerPath),
		CatalogPath:     os.Getenv("CATALOG_PATH"),
		GatewaySecret:   os.Getenv("GATEWAY_SECRET"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		OwnerIDs:        splitList(os.Getenv("OWNER_IDS")),
		StaffIDs:        splitList(os.Getenv("STAFF_IDS")),
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.RateCacheTTL, err = durationEnv(rateTTLSecondsEnvVar, rateTTLDurEnvVar, rates.DefaultTTL); err != nil {
		return Config{}, err
	}
	if cfg.RateFetchTimeout, err = durationEnv(rateTimeoutSecondsEnvVar, rateTimeoutDurEnvVar, rates.DefaultFetchTimeout); err != nil {
		return Config{}, err
	}

	cfg.MutationRateLimit = defaultMutationLimit
	if v := os.Getenv("MUTATION_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MUTATION_RATE_LIMIT: %w", err)
		}
		cfg.MutationRateLimit = n
	}

	if cfg.RateCacheTTL <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", rateTTLDurEnvVar)
	}
	if cfg.RateFetchTimeout <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", rateTimeoutDurEnvVar)
	}
	if !cfg.IsDev() && cfg.GatewaySecret == "" {
		return Config{}, fmt.Errorf("GATEWAY_SECRET must be set when APP_ENV=%s", cfg.AppEnv)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationEnv reads whole seconds from secondsKey, else a Go duration string
// from durationKey, else returns fallback.
func durationEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
