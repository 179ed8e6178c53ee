package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// External APIs
	KIS    KISConfig
	Yahoo  YahooConfig
	Gemini GeminiConfig
	Master MasterConfig

	// CORS
	CORSOrigins []string

	// Logging
	LogLevel  string
	LogFormat string
}

// KISConfig holds KIS (한국투자증권) API configuration.
// App key/secret arrive per request via headers; only the base URL and
// request-rate budget live in config.
type KISConfig struct {
	BaseURL      string
	RatePerSec   int
	TokenMarginS int // seconds shaved off the reported token TTL
}

// YahooConfig holds Yahoo Finance configuration
type YahooConfig struct {
	ChartBaseURL string
	QuoteBaseURL string
}

// GeminiConfig holds Gemini (generative model) API configuration.
// The API key arrives per request via header.
type GeminiConfig struct {
	BaseURL      string
	DefaultModel string
}

// MasterConfig holds symbol master file configuration
type MasterConfig struct {
	KospiURL    string
	KosdaqURL   string
	RefreshCron string // empty disables the refresh scheduler
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8000"),
		Env:  getEnv("ENV", "development"),

		KIS: KISConfig{
			BaseURL:      getEnv("KIS_BASE_URL", "https://openapi.koreainvestment.com:9443"),
			RatePerSec:   getEnvAsInt("KIS_RATE_PER_SEC", 10),
			TokenMarginS: getEnvAsInt("KIS_TOKEN_MARGIN_S", 60),
		},

		Yahoo: YahooConfig{
			ChartBaseURL: getEnv("YAHOO_CHART_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
			QuoteBaseURL: getEnv("YAHOO_QUOTE_BASE_URL", "https://query1.finance.yahoo.com/v10/finance/quoteSummary"),
		},

		Gemini: GeminiConfig{
			BaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			DefaultModel: getEnv("GEMINI_DEFAULT_MODEL", "gemini-1.5-flash"),
		},

		Master: MasterConfig{
			KospiURL:    getEnv("MASTER_KOSPI_URL", "https://new.real.download.dws.co.kr/common/master/kospi_code.mst.zip"),
			KosdaqURL:   getEnv("MASTER_KOSDAQ_URL", "https://new.real.download.dws.co.kr/common/master/kosdaq_code.mst.zip"),
			RefreshCron: getEnv("MASTER_REFRESH_CRON", "0 5 * * *"),
		},

		CORSOrigins: getEnvAsSlice("CORS_ORIGINS", []string{"*"}),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
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

	if c.KIS.RatePerSec <= 0 {
		return fmt.Errorf("KIS_RATE_PER_SEC must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
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

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
