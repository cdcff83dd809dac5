package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-vaxchart
source:
  url: https://example.com/vaccinations.csv
  strict: true
chart:
  default_location: Malta
  palette: [red, blue]
database:
  timescale:
    host: localhost
    port: 5432
    name: test_ts
    user: testuser
    password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-vaxchart" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-vaxchart")
	}
	if cfg.Source.URL != "https://example.com/vaccinations.csv" {
		t.Errorf("Source.URL = %q, want %q", cfg.Source.URL, "https://example.com/vaccinations.csv")
	}
	if !cfg.Source.Strict {
		t.Error("Source.Strict = false, want true")
	}
	if cfg.Chart.DefaultLocation != "Malta" {
		t.Errorf("Chart.DefaultLocation = %q, want %q", cfg.Chart.DefaultLocation, "Malta")
	}
	if len(cfg.Chart.Palette) != 2 || cfg.Chart.Palette[1] != "blue" {
		t.Errorf("Chart.Palette = %v, want [red blue]", cfg.Chart.Palette)
	}
	if cfg.Database.Timescale.Host != "localhost" {
		t.Errorf("Database.Timescale.Host = %q, want %q", cfg.Database.Timescale.Host, "localhost")
	}
	if !cfg.Database.Enabled() {
		t.Error("Database.Enabled() = false, want true")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
database:
  timescale:
    host: localhost
    name: test_ts
    user: testuser
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Timescale.Password != "secret123" {
		t.Errorf("Database.Timescale.Password = %q, want %q", cfg.Database.Timescale.Password, "secret123")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("VAXCHART_SERVER_PORT", "9000")
	t.Setenv("VAXCHART_REDIS_ADDR", "cache:6379")
	t.Setenv("VAXCHART_DATABASE_TIMESCALE_HOST", "db")
	t.Setenv("VAXCHART_POLLER_INTERVAL", "5m")

	yaml := `
server:
  port: 8081
database:
  timescale:
    host: localhost
    name: test_ts
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "cache:6379" {
		t.Errorf("Redis.Addr = %q, want %q", cfg.Redis.Addr, "cache:6379")
	}
	if cfg.Database.Timescale.Host != "db" {
		t.Errorf("Database.Timescale.Host = %q, want %q", cfg.Database.Timescale.Host, "db")
	}
	// Untouched by overrides
	if cfg.Database.Timescale.Name != "test_ts" {
		t.Errorf("Database.Timescale.Name = %q, want %q", cfg.Database.Timescale.Name, "test_ts")
	}
	if cfg.Poller.Interval != 5*time.Minute {
		t.Errorf("Poller.Interval = %v, want 5m", cfg.Poller.Interval)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("VAXCHART_CHART_DEFAULT_LOCATION=Chile\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// Registered so the variable is restored after the test.
	t.Setenv("VAXCHART_CHART_DEFAULT_LOCATION", "")
	os.Unsetenv("VAXCHART_CHART_DEFAULT_LOCATION")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envPath); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}

	cfg, err := LoadWithDefaults("")
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.Chart.DefaultLocation != "Chile" {
		t.Errorf("Chart.DefaultLocation = %q, want %q", cfg.Chart.DefaultLocation, "Chile")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "instance:\n  id: test\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Source.URL != DefaultSourceURL {
		t.Errorf("Source.URL = %q, want default %q", cfg.Source.URL, DefaultSourceURL)
	}
	if cfg.Source.Timeout != DefaultSourceTimeout {
		t.Errorf("Source.Timeout = %v, want default %v", cfg.Source.Timeout, DefaultSourceTimeout)
	}
	if cfg.Chart.DefaultLocation != DefaultLocation {
		t.Errorf("Chart.DefaultLocation = %q, want default %q", cfg.Chart.DefaultLocation, DefaultLocation)
	}
	if cfg.Database.Timescale.Port != DefaultDBPort {
		t.Errorf("Database.Timescale.Port = %d, want default %d", cfg.Database.Timescale.Port, DefaultDBPort)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultServerPort)
	}
	if cfg.Database.Enabled() {
		t.Error("Database.Enabled() = true without a host")
	}
	if cfg.Redis.Enabled() {
		t.Error("Redis.Enabled() = true without an address")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() VaxchartConfig {
		var c VaxchartConfig
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *VaxchartConfig)
		wantErr string
	}{
		{
			name:    "missing instance id",
			mutate:  func(c *VaxchartConfig) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "relative source url",
			mutate:  func(c *VaxchartConfig) { c.Source.URL = "data.csv" },
			wantErr: `source.url "data.csv" is not an absolute URL`,
		},
		{
			name:    "bad server port",
			mutate:  func(c *VaxchartConfig) { c.Server.Port = 70000 },
			wantErr: "server.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "missing timescale password",
			mutate:  func(c *VaxchartConfig) { c.Database.Timescale = DBConfig{Host: "localhost", Name: "db", User: "user", MaxConns: 5} },
			wantErr: "database.timescale.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *VaxchartConfig) {
				c.Database.Timescale = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "database.timescale.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "zero poller concurrency",
			mutate:  func(c *VaxchartConfig) { c.Poller.Concurrency = 0 },
			wantErr: "poller.concurrency must be >= 1",
		},
		{
			name:    "metrics path without slash",
			mutate:  func(c *VaxchartConfig) { c.Metrics.Path = "metrics" },
			wantErr: `metrics.path must start with /, got "metrics"`,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *VaxchartConfig) { c.Logging.Level = "trace" },
			wantErr: `logging.level must be one of debug, info, warn, error, got "trace"`,
		},
		{
			name:    "valid config",
			mutate:  func(c *VaxchartConfig) {},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
