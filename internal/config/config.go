package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fedash/internal/engine"
	"fedash/internal/models"

	"gopkg.in/yaml.v3"
)

// Config holds all fedash configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Logging   LoggingConfig   `yaml:"logging"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allow_origins"`
	RateLimit    float64  `yaml:"rate_limit"` // requests/second per client, 0 disables
}

// DataConfig points at the precomputed outcomes file.
type DataConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DashboardConfig holds selector defaults shown on first load.
type DashboardConfig struct {
	DefaultRegions []string `yaml:"default_regions"`
	DefaultMetric  string   `yaml:"default_metric"`
}

// Metric resolves DefaultMetric. Any name engine.ParseMetric accepts works.
func (d DashboardConfig) Metric() (models.Metric, error) {
	return engine.ParseMetric(d.DefaultMetric)
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			AllowOrigins: []string{"*"},
		},
		Data: DataConfig{
			Path: "merged_data.csv",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Dashboard: DashboardConfig{
			DefaultRegions: []string{"South Asia", "LAC"},
			DefaultMetric:  "relative_reduction",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// defaults
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FEDASH_DATA"); v != "" {
		c.Data.Path = v
	}
	if v := os.Getenv("FEDASH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("FEDASH_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("FEDASH_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Server.RateLimit = f
		}
	}
}

// Validate checks settings that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.Path) == "" {
		return errors.New("config: data.path is required")
	}
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("config: server.rate_limit must be >= 0, got %v", c.Server.RateLimit)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logging.level %q", c.Logging.Level)
	}
	if _, err := c.Dashboard.Metric(); err != nil {
		return fmt.Errorf("config: dashboard.default_metric: %w", err)
	}
	return nil
}
