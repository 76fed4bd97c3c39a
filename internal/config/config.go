package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rewired-gh/arbdash/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Chart     ChartConfig     `mapstructure:"chart"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds the dashboard HTTP listener configuration
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"` // empty = same origin only
}

// BackendConfig holds the market data API configuration
type BackendConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// DashboardConfig holds the choices offered by the search forms
type DashboardConfig struct {
	Pairs           []string `mapstructure:"pairs"`
	Exchangers      []string `mapstructure:"exchangers"`
	DefaultLocation string   `mapstructure:"default_location"`
}

// ChartConfig holds bid/ask chart geometry
type ChartConfig struct {
	Width        int `mapstructure:"width"`
	Height       int `mapstructure:"height"`
	MarginTop    int `mapstructure:"margin_top"`
	MarginRight  int `mapstructure:"margin_right"`
	MarginBottom int `mapstructure:"margin_bottom"`
	MarginLeft   int `mapstructure:"margin_left"`
	TimeTicks    int `mapstructure:"time_ticks"`
	PriceTicks   int `mapstructure:"price_ticks"`
}

// TelegramConfig holds backend outage notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	MaxAge int    `mapstructure:"max_age"` // days, file output only
}

// Load reads configuration from file and environment variables.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ARBDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", "localhost:8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{})

	// Backend defaults
	v.SetDefault("backend.base_url", "http://localhost:8081")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("backend.requests_per_second", 5.0)
	v.SetDefault("backend.burst", 5)

	// Dashboard defaults
	v.SetDefault("dashboard.pairs", []string{"btc_usd", "btc_eur", "ltc_btc", "eth_btc", "etc_btc", "zec_btc"})
	v.SetDefault("dashboard.exchangers", []string{
		"bitfinex", "bittrex", "btce", "bter", "cex", "gemini", "hitbtc", "kraken", "poloniex", "therocktrading",
	})
	v.SetDefault("dashboard.default_location", "/bid_ask/btc_usd")

	// Chart defaults
	v.SetDefault("chart.width", 600)
	v.SetDefault("chart.height", 140)
	v.SetDefault("chart.margin_top", 20)
	v.SetDefault("chart.margin_right", 20)
	v.SetDefault("chart.margin_bottom", 30)
	v.SetDefault("chart.margin_left", 50)
	v.SetDefault("chart.time_ticks", 10)
	v.SetDefault("chart.price_ticks", 4)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_age", 0)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Server config
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.read_timeout and server.write_timeout must be positive")
	}

	// Validate Backend config
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL")
	}
	if c.Backend.Timeout < 100*time.Millisecond {
		return fmt.Errorf("backend.timeout must be at least 100ms")
	}
	if c.Backend.RequestsPerSecond <= 0 {
		return fmt.Errorf("backend.requests_per_second must be positive")
	}
	if c.Backend.Burst < 1 {
		return fmt.Errorf("backend.burst must be at least 1")
	}

	// Validate Dashboard config
	if len(c.Dashboard.Pairs) == 0 {
		return fmt.Errorf("dashboard.pairs must contain at least one pair")
	}
	if !strings.HasPrefix(c.Dashboard.DefaultLocation, "/") {
		return fmt.Errorf("dashboard.default_location must start with '/'")
	}

	// Validate Chart config
	if c.Chart.Width <= c.Chart.MarginLeft+c.Chart.MarginRight {
		return fmt.Errorf("chart.width must exceed the horizontal margins")
	}
	if c.Chart.Height <= c.Chart.MarginTop+c.Chart.MarginBottom {
		return fmt.Errorf("chart.height must exceed the vertical margins")
	}
	if c.Chart.MarginTop < 0 || c.Chart.MarginRight < 0 || c.Chart.MarginBottom < 0 || c.Chart.MarginLeft < 0 {
		return fmt.Errorf("chart margins must not be negative")
	}
	if c.Chart.TimeTicks < 1 || c.Chart.PriceTicks < 1 {
		return fmt.Errorf("chart.time_ticks and chart.price_ticks must be at least 1")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}
	if c.Logging.MaxAge < 0 {
		return fmt.Errorf("logging.max_age must not be negative")
	}

	return nil
}

// DefaultLocation returns the location shown when the browser has none.
func (c *Config) DefaultLocation() models.Location {
	return models.ParseLocation(c.Dashboard.DefaultLocation)
}
