package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultServerPort)
	}
	if cfg.Database.Host != DefaultDBHost {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, DefaultDBHost)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Redis.Addr != DefaultRedisAddr {
		t.Errorf("Redis.Addr = %q, want %q", cfg.Redis.Addr, DefaultRedisAddr)
	}
	if cfg.Portfolio.AssumedGrowthRate != DefaultAssumedGrowthRate {
		t.Errorf("Portfolio.AssumedGrowthRate = %g, want %g", cfg.Portfolio.AssumedGrowthRate, DefaultAssumedGrowthRate)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9090
	cfg.Database.Host = "db.internal"
	cfg.Portfolio.AssumedGrowthRate = 0.08

	ApplyDefaults(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want explicit 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want explicit value", cfg.Database.Host)
	}
	if cfg.Portfolio.AssumedGrowthRate != 0.08 {
		t.Errorf("AssumedGrowthRate = %g, want explicit 0.08", cfg.Portfolio.AssumedGrowthRate)
	}
}

func TestApplyDefaultsKafkaDisabled(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("disabled kafka should not get default brokers, got %v", cfg.Kafka.Brokers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "missing database host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "database.host",
		},
		{
			name:    "missing database user",
			mutate:  func(c *Config) { c.Database.User = "" },
			wantErr: "database.user",
		},
		{
			name:    "kafka enabled without brokers",
			mutate:  func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil },
			wantErr: "kafka.brokers",
		},
		{
			name:    "negative growth rate",
			mutate:  func(c *Config) { c.Portfolio.AssumedGrowthRate = -0.1 },
			wantErr: "assumed_growth_rate",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
		{
			name:    "rate limit enabled without window",
			mutate:  func(c *Config) { c.RateLimit.Enabled = true; c.RateLimit.Requests = 10 },
			wantErr: "rate_limit.window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9191
database:
  host: pg.internal
  user: svc
  password: secret
  db_name: wealth
portfolio:
  assumed_growth_rate: 0.10
  summary_cache_ttl: 2m
log:
  level: debug
  format: console
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Database.Host != "pg.internal" {
		t.Errorf("Database.Host = %q, want pg.internal", cfg.Database.Host)
	}
	if cfg.Portfolio.AssumedGrowthRate != 0.10 {
		t.Errorf("AssumedGrowthRate = %g, want 0.10", cfg.Portfolio.AssumedGrowthRate)
	}
	if cfg.Portfolio.SummaryCacheTTL != 2*time.Minute {
		t.Errorf("SummaryCacheTTL = %s, want 2m", cfg.Portfolio.SummaryCacheTTL)
	}
	// Unspecified fields still receive defaults.
	if cfg.Redis.Addr != DefaultRedisAddr {
		t.Errorf("Redis.Addr = %q, want default %q", cfg.Redis.Addr, DefaultRedisAddr)
	}
}

func TestLoadInvalidFileRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
log:
  level: shout
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() = nil error for invalid log level")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("Load() = nil error for missing file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultServerPort)
	}
}
