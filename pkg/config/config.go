package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Timezone used for every "today" comparison
	Timezone string

	// Strategy policy file (YAML). Empty means built-in defaults.
	StrategyFile string

	// State store
	State StateConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External collaborators
	Telegram TelegramConfig
	News     NewsConfig
	Market   MarketConfig

	// Schedules (cron with seconds)
	MorningSchedule string
	EODSchedule     string
	RunOnStart      bool

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// Supported state backends
const (
	StateBackendPostgres = "postgres"
	StateBackendRedis    = "redis"
	StateBackendSQLite   = "sqlite"
	StateBackendMemory   = "memory"
)

// StateConfig selects and tunes the run-state store
type StateConfig struct {
	Backend      string
	SQLitePath   string
	RedisKey     string
	MaxAttempts  int
	RetryBackoff time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// TelegramConfig holds chat delivery settings
type TelegramConfig struct {
	Token   string
	ChatID  string
	Enabled bool
}

// NewsConfig holds the sentiment source settings
type NewsConfig struct {
	GNewsAPIKey string
	GNewsURL    string
	RSSURL      string
}

// MarketConfig holds market-data and universe endpoints
type MarketConfig struct {
	DataURL      string
	UniverseURL  string
	FetchTimeout time.Duration
	FetchRetry   bool
	RateLimit    float64 // requests per second, 0 disables
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port:         getEnv("PORT", "10000"),
		Env:          getEnv("ENV", "development"),
		Timezone:     getEnv("TIMEZONE", "Asia/Kolkata"),
		StrategyFile: getEnv("STRATEGY_FILE", ""),

		State: StateConfig{
			Backend:      getEnv("STATE_BACKEND", StateBackendSQLite),
			SQLitePath:   getEnv("SQLITE_PATH", "screener_state.db"),
			RedisKey:     getEnv("STATE_REDIS_KEY", "screener:run_state"),
			MaxAttempts:  getEnvAsInt("STATE_MAX_ATTEMPTS", 3),
			RetryBackoff: getEnvAsDuration("STATE_RETRY_BACKOFF", "500ms"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Telegram: TelegramConfig{
			Token:   getEnv("TELEGRAM_TOKEN", ""),
			ChatID:  getEnv("CHAT_ID", ""),
			Enabled: getEnvAsBool("TELEGRAM_ENABLED", true),
		},

		News: NewsConfig{
			GNewsAPIKey: getEnv("GNEWS_API_KEY", ""),
			GNewsURL:    getEnv("GNEWS_URL", "https://gnews.io/api/v4/search"),
			RSSURL:      getEnv("NEWS_RSS_URL", "https://www.moneycontrol.com/rss/marketreports.xml"),
		},

		Market: MarketConfig{
			DataURL:      getEnv("MARKET_DATA_URL", "https://query1.finance.yahoo.com"),
			UniverseURL:  getEnv("UNIVERSE_URL", "https://archives.nseindia.com/content/indices/ind_nifty200list.csv"),
			FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", "10s"),
			FetchRetry:   getEnvAsBool("FETCH_RETRY", false),
			RateLimit:    getEnvAsFloat("FETCH_RATE_LIMIT", 5),
		},

		MorningSchedule: getEnv("MORNING_SCHEDULE", "0 15 9 * * 1-5"),
		EODSchedule:     getEnv("EOD_SCHEDULE", "0 45 15 * * 1-5"),
		RunOnStart:      getEnvAsBool("RUN_ON_START", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Location returns the configured timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.State.Backend {
	case StateBackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres state backend")
		}
	case StateBackendRedis, StateBackendSQLite, StateBackendMemory:
	default:
		return fmt.Errorf("STATE_BACKEND must be one of: postgres, redis, sqlite, memory")
	}

	if c.State.MaxAttempts < 1 {
		return fmt.Errorf("STATE_MAX_ATTEMPTS must be at least 1")
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
