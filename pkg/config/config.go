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
	Port   string
	Env    string // development, staging, production
	APIKey string

	Database     DatabaseConfig
	Redis        RedisConfig
	ControlPlane ControlPlaneConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Screenshot   ScreenshotConfig
	Simulation   SimulationConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	Prefix   string
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

// ControlPlaneConfig points at the remote bot control service running on the VPS.
type ControlPlaneConfig struct {
	BaseURL      string
	Timeout      time.Duration
	PollInterval time.Duration
	RetryEnabled bool
	RatePerSec   float64
}

// AuthConfig selects the identity provider.
type AuthConfig struct {
	Provider     string // postgres, memory
	EmailDomain  string
	ResetTTL     time.Duration
	SignInPerMin int
}

// StorageConfig holds S3-compatible object storage settings.
type StorageConfig struct {
	Enabled        bool
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	ForcePathStyle bool
	PublicBaseURL  string
}

// ScreenshotConfig controls the periodic dashboard capture.
type ScreenshotConfig struct {
	Enabled      bool
	Interval     time.Duration
	Quality      int
	AccountLogin string
}

// SimulationConfig controls mock data generation.
type SimulationConfig struct {
	Seed            int64
	SeedFile        string
	BotRefreshDelay time.Duration
	TradingDelay    time.Duration
	VPSConnectDelay time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port:   getEnv("PORT", "8089"),
		Env:    getEnv("ENV", "development"),
		APIKey: getEnv("API_KEY", ""),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Prefix:   getEnv("REDIS_PREFIX", "protrader"),
		},

		ControlPlane: ControlPlaneConfig{
			BaseURL:      getEnv("CONTROL_BASE_URL", ""),
			Timeout:      getEnvAsDuration("CONTROL_TIMEOUT", "10s"),
			PollInterval: getEnvAsDuration("CONTROL_POLL_INTERVAL", "5s"),
			RetryEnabled: getEnvAsBool("CONTROL_RETRY_ENABLED", false),
			RatePerSec:   getEnvAsFloat("CONTROL_RATE_PER_SEC", 5),
		},

		Auth: AuthConfig{
			Provider:     getEnv("AUTH_PROVIDER", "memory"),
			EmailDomain:  getEnv("AUTH_EMAIL_DOMAIN", "goldex.ai"),
			ResetTTL:     getEnvAsDuration("AUTH_RESET_TTL", "1h"),
			SignInPerMin: getEnvAsInt("AUTH_SIGNIN_PER_MIN", 10),
		},

		Storage: StorageConfig{
			Enabled:        getEnvAsBool("S3_ENABLED", false),
			Endpoint:       getEnv("S3_ENDPOINT", ""),
			Region:         getEnv("S3_REGION", "us-east-1"),
			Bucket:         getEnv("S3_BUCKET", "screenshots"),
			AccessKey:      getEnv("S3_ACCESS_KEY", ""),
			SecretKey:      getEnv("S3_SECRET_KEY", ""),
			UseSSL:         getEnvAsBool("S3_USE_SSL", true),
			ForcePathStyle: getEnvAsBool("S3_FORCE_PATH_STYLE", true),
			PublicBaseURL:  getEnv("S3_PUBLIC_BASE_URL", ""),
		},

		Screenshot: ScreenshotConfig{
			Enabled:      getEnvAsBool("SCREENSHOT_ENABLED", false),
			Interval:     getEnvAsDuration("SCREENSHOT_INTERVAL", "30s"),
			Quality:      getEnvAsInt("SCREENSHOT_QUALITY", 80),
			AccountLogin: getEnv("SCREENSHOT_ACCOUNT_LOGIN", ""),
		},

		Simulation: SimulationConfig{
			Seed:            int64(getEnvAsInt("SIM_SEED", 0)),
			SeedFile:        getEnv("SIM_SEED_FILE", ""),
			BotRefreshDelay: getEnvAsDuration("SIM_BOT_REFRESH_DELAY", "1s"),
			TradingDelay:    getEnvAsDuration("SIM_TRADING_DELAY", "500ms"),
			VPSConnectDelay: getEnvAsDuration("SIM_VPS_CONNECT_DELAY", "2s"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Auth.Provider {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when AUTH_PROVIDER=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("AUTH_PROVIDER must be one of: postgres, memory")
	}

	if c.Screenshot.Quality < 1 || c.Screenshot.Quality > 100 {
		return fmt.Errorf("SCREENSHOT_QUALITY must be between 1 and 100")
	}

	if c.ControlPlane.PollInterval <= 0 {
		return fmt.Errorf("CONTROL_POLL_INTERVAL must be positive")
	}

	return nil
}

// UsesPostgres reports whether any component needs a database connection.
func (c *Config) UsesPostgres() bool {
	return c.Database.URL != ""
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

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
