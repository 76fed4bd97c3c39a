package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadAndValidate(t *testing.T) {
	// Create temp config file
	content := `
server:
  address: ":9000"

backend:
  base_url: "http://bitbot.local:8080"
  timeout: 5s
  requests_per_second: 2

dashboard:
  pairs:
    - btc_usd
    - ltc_btc
  exchangers:
    - cex
    - kraken

chart:
  width: 800

logging:
  level: "debug"
  format: "text"
`
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove(tmpfile.Name()) }()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	// Test Load
	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify values
	if cfg.Backend.Timeout != 5*time.Second {
		t.Errorf("Unexpected backend timeout: %v", cfg.Backend.Timeout)
	}
	if cfg.Backend.Burst != 5 {
		t.Errorf("Expected default burst 5, got %d", cfg.Backend.Burst)
	}
	if len(cfg.Dashboard.Pairs) != 2 {
		t.Errorf("Expected 2 pairs, got %d", len(cfg.Dashboard.Pairs))
	}
	if cfg.Chart.Width != 800 || cfg.Chart.Height != 140 {
		t.Errorf("Unexpected chart size: %dx%d", cfg.Chart.Width, cfg.Chart.Height)
	}
	if cfg.Dashboard.DefaultLocation != "/bid_ask/btc_usd" {
		t.Errorf("Unexpected default location: %s", cfg.Dashboard.DefaultLocation)
	}

	// Test Validate
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if got := cfg.DefaultLocation().Path; got != "/bid_ask/btc_usd" {
		t.Errorf("DefaultLocation path = %q", got)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ARBDASH_BACKEND_BASE_URL", "http://override:1234")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.BaseURL != "http://override:1234" {
		t.Errorf("env override ignored: %s", cfg.Backend.BaseURL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/arbdash.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Address: ":8080", ReadTimeout: time.Second, WriteTimeout: time.Second},
		Backend: BackendConfig{
			BaseURL:           "http://localhost:8081",
			Timeout:           time.Second,
			RequestsPerSecond: 1,
			Burst:             1,
		},
		Dashboard: DashboardConfig{Pairs: []string{"btc_usd"}, DefaultLocation: "/bid_ask/btc_usd"},
		Chart: ChartConfig{
			Width: 600, Height: 140,
			MarginTop: 20, MarginRight: 20, MarginBottom: 30, MarginLeft: 50,
			TimeTicks: 10, PriceTicks: 4,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"relative backend url", func(c *Config) { c.Backend.BaseURL = "localhost:8081" }, true},
		{"tiny timeout", func(c *Config) { c.Backend.Timeout = time.Millisecond }, true},
		{"zero rate", func(c *Config) { c.Backend.RequestsPerSecond = 0 }, true},
		{"no pairs", func(c *Config) { c.Dashboard.Pairs = nil }, true},
		{"relative default location", func(c *Config) { c.Dashboard.DefaultLocation = "bid_ask" }, true},
		{"chart narrower than margins", func(c *Config) { c.Chart.Width = 60 }, true},
		{"no price ticks", func(c *Config) { c.Chart.PriceTicks = 0 }, true},
		{"missing telegram token when enabled", func(c *Config) {
			c.Telegram.Enabled = true
			c.Telegram.ChatID = "42"
		}, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
