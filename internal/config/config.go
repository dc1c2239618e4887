package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Ledger   LedgerConfig
	Quotes   QuoteConfig
	Log      LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LedgerConfig holds the accounting settings of the portfolio.
// Location decides which calendar day a trade belongs to.
type LedgerConfig struct {
	Location     *time.Location
	StartingCash decimal.Decimal
}

// QuoteConfig holds settings for the price provider and the mark refresh job.
type QuoteConfig struct {
	BaseURL         string
	RefreshSchedule string
	Concurrency     int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  slog.Level
	Format string // "text" or "json"
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	location, err := time.LoadLocation(getEnv("LEDGER_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_TIMEZONE: %w", err)
	}

	startingCash, err := decimal.NewFromString(getEnv("STARTING_CASH", "15000"))
	if err != nil {
		return nil, fmt.Errorf("invalid STARTING_CASH: %w", err)
	}
	if startingCash.IsNegative() {
		return nil, fmt.Errorf("invalid STARTING_CASH: must not be negative")
	}

	concurrency, err := strconv.Atoi(getEnv("QUOTE_CONCURRENCY", "4"))
	if err != nil || concurrency < 1 {
		return nil, fmt.Errorf("invalid QUOTE_CONCURRENCY: %q", os.Getenv("QUOTE_CONCURRENCY"))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	refreshSchedule := getEnv("QUOTE_REFRESH_SCHEDULE", "@every 5m")
	if strings.EqualFold(refreshSchedule, "off") {
		refreshSchedule = ""
	}

	format := strings.ToLower(getEnv("LOG_FORMAT", "text"))
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q (want text or json)", format)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/pocketprofit.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Ledger: LedgerConfig{
			Location:     location,
			StartingCash: startingCash,
		},
		Quotes: QuoteConfig{
			BaseURL:         getEnv("QUOTE_BASE_URL", "https://query1.finance.yahoo.com"),
			RefreshSchedule: refreshSchedule,
			Concurrency:     concurrency,
		},
		Log: LogConfig{
			Level:  level,
			Format: format,
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
