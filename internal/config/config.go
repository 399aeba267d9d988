package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	App      AppConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig holds the report cache connection. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// PayrollConfig holds commission engine settings
type PayrollConfig struct {
	Workers        int
	WarmupInterval time.Duration
	LegacyFallback LegacyFallbackConfig
}

// LegacyFallbackConfig prices legacy service codes missing from the catalog
type LegacyFallbackConfig struct {
	Enabled        bool
	PrimaryCode    string
	PrimaryPrice   int64
	DefaultPrice   int64
	CommissionRate decimal.Decimal
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "spa_pos"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("REPORT_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_CACHE_TTL: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		TTL:      cacheTTL,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// Payroll configuration
	workers, err := strconv.Atoi(getEnv("PAYROLL_WORKERS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_WORKERS: %w", err)
	}
	warmup, err := time.ParseDuration(getEnv("CACHE_WARMUP_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_WARMUP_INTERVAL: %w", err)
	}
	fallbackEnabled, err := strconv.ParseBool(getEnv("LEGACY_PRICE_FALLBACK_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEGACY_PRICE_FALLBACK_ENABLED: %w", err)
	}
	primaryPrice, err := strconv.ParseInt(getEnv("LEGACY_PRICE_PRIMARY", "100000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LEGACY_PRICE_PRIMARY: %w", err)
	}
	defaultPrice, err := strconv.ParseInt(getEnv("LEGACY_PRICE_DEFAULT", "50000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LEGACY_PRICE_DEFAULT: %w", err)
	}
	fallbackRate, err := decimal.NewFromString(getEnv("LEGACY_PRICE_COMMISSION_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEGACY_PRICE_COMMISSION_RATE: %w", err)
	}

	config.Payroll = PayrollConfig{
		Workers:        workers,
		WarmupInterval: warmup,
		LegacyFallback: LegacyFallbackConfig{
			Enabled:        fallbackEnabled,
			PrimaryCode:    getEnv("LEGACY_PRICE_PRIMARY_CODE", "TI"),
			PrimaryPrice:   primaryPrice,
			DefaultPrice:   defaultPrice,
			CommissionRate: fallbackRate,
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Payroll.Workers < 1 {
		return fmt.Errorf("PAYROLL_WORKERS must be at least 1")
	}
	fb := c.Payroll.LegacyFallback
	if fb.PrimaryPrice < 0 || fb.DefaultPrice < 0 {
		return fmt.Errorf("legacy fallback prices must be non-negative")
	}
	if fb.CommissionRate.IsNegative() || fb.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("LEGACY_PRICE_COMMISSION_RATE must be between 0 and 100")
	}
	if c.Payroll.WarmupInterval > 0 && c.Redis.Addr == "" {
		return fmt.Errorf("CACHE_WARMUP_INTERVAL requires REDIS_ADDR")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
