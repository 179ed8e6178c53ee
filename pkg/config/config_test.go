package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8000" {
		t.Errorf("Expected Port to be 8000, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}
	if cfg.KIS.RatePerSec != 10 {
		t.Errorf("Expected KIS RatePerSec to be 10, got %d", cfg.KIS.RatePerSec)
	}
	if cfg.Yahoo.ChartBaseURL == "" {
		t.Error("Expected Yahoo chart base URL to have a default")
	}
	if cfg.Master.KospiURL == "" || cfg.Master.KosdaqURL == "" {
		t.Error("Expected master file URLs to have defaults")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("Expected CORS origins default [*], got %v", cfg.CORSOrigins)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("KIS_RATE_PER_SEC", "5")
	os.Setenv("GEMINI_DEFAULT_MODEL", "gemini-2.0-pro")
	os.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	os.Setenv("LOG_LEVEL", "info")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("KIS_RATE_PER_SEC")
		os.Unsetenv("GEMINI_DEFAULT_MODEL")
		os.Unsetenv("CORS_ORIGINS")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}
	if cfg.KIS.RatePerSec != 5 {
		t.Errorf("Expected KIS RatePerSec to be 5, got %d", cfg.KIS.RatePerSec)
	}
	if cfg.Gemini.DefaultModel != "gemini-2.0-pro" {
		t.Errorf("Expected default model gemini-2.0-pro, got %s", cfg.Gemini.DefaultModel)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example" {
		t.Errorf("Expected two CORS origins, got %v", cfg.CORSOrigins)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel to be info, got %s", cfg.LogLevel)
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "bogus")
	defer os.Unsetenv("ENV")

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid ENV, got nil")
	}
}

func TestValidateNonPositiveRate(t *testing.T) {
	os.Setenv("KIS_RATE_PER_SEC", "0")
	defer os.Unsetenv("KIS_RATE_PER_SEC")

	if _, err := Load(); err == nil {
		t.Error("Expected error for KIS_RATE_PER_SEC=0, got nil")
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	os.Setenv("KIS_TOKEN_MARGIN_S", "abc")
	defer os.Unsetenv("KIS_TOKEN_MARGIN_S")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.KIS.TokenMarginS != 60 {
		t.Errorf("garbage int should fall back to default 60, got %d", cfg.KIS.TokenMarginS)
	}
}
