package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:              "8080",
		LogLevel:          "info",
		CacheTTL:          time.Hour,
		HistoryBackend:    HistoryMemory,
		SQLiteDBPath:      "./data/emi.db",
		RateLimitCapacity: 5,
		RateLimitWindow:   time.Minute,
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "REDIS_ADDR", "CACHE_TTL", "HISTORY_BACKEND", "RATE_LIMIT_CAPACITY", "RATE_LIMIT_WINDOW"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" || cfg.HistoryBackend != HistoryMemory || cfg.RedisAddr != "" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.RateLimitWindow != time.Minute || cfg.CacheTTL != 24*time.Hour {
		t.Errorf("unexpected duration defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "15m")
	t.Setenv("HISTORY_BACKEND", "sqlite")
	t.Setenv("RATE_LIMIT_CAPACITY", "12")
	t.Setenv("RATE_LIMIT_WINDOW", "not-a-duration")

	cfg := Load()

	if cfg.Port != "9090" || cfg.RedisAddr != "localhost:6379" || cfg.HistoryBackend != HistorySQLite {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.CacheTTL != 15*time.Minute || cfg.RateLimitCapacity != 12 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("unparseable duration should fall back to default, got %v", cfg.RateLimitWindow)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"non numeric port", func(c *Config) { c.Port = "http" }, "must be a number"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "between 1 and 65535"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log level"},
		{"unknown backend", func(c *Config) { c.HistoryBackend = "postgres" }, "invalid history backend"},
		{"sqlite without path", func(c *Config) {
			c.HistoryBackend = HistorySQLite
			c.SQLiteDBPath = ""
		}, "SQLITE_DB_PATH"},
		{"zero capacity", func(c *Config) { c.RateLimitCapacity = 0 }, "rate limit capacity"},
		{"short window", func(c *Config) { c.RateLimitWindow = time.Millisecond }, "rate limit window"},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, "cache TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.RateLimitCapacity = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Count(err.Error(), "\n- ") != 2 {
		t.Errorf("expected two problems, got: %v", err)
	}
}
