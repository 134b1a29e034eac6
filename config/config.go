package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/openbar/barbot/core/turret"
	"github.com/openbar/barbot/infra/metrics"
	"github.com/openbar/barbot/infra/monitoring"
	"github.com/openbar/barbot/infra/telemetry"
)

// Config is the full service configuration.
type Config struct {
	Bar       Bar               `json:"bar"`
	Motion    turret.Motion     `json:"motion"`
	Hardware  HardwareConfig    `json:"hardware"`
	Catalog   CatalogConfig     `json:"catalog"`
	API       APIConfig         `json:"api"`
	Metrics   MetricsConfig     `json:"metrics"`
	Telemetry telemetry.Config  `json:"telemetry"`
	Sentry    monitoring.Config `json:"sentry"`
}

// HardwareConfig selects the GPIO driver.
type HardwareConfig struct {
	// Simulated replaces the sysfs driver with a recording driver, for
	// development off the device.
	Simulated bool `json:"simulated"`
	// HomeOnStart runs the homing calibration when the service starts.
	HomeOnStart bool `json:"home_on_start"`
}

// CatalogConfig locates the pre-merged recipe catalog.
type CatalogConfig struct {
	Path string `json:"path"`
}

// SetDefaults applies the default catalog location.
func (c *CatalogConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "recipes.json"
	}
}

// APIConfig configures the HTTP API server.
type APIConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies the default listen address.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// MetricsConfig configures the metrics sinks.
type MetricsConfig struct {
	PrometheusEnabled bool                 `json:"prometheus_enabled"`
	PrometheusAddr    string               `json:"prometheus_addr"`
	Influx            metrics.InfluxConfig `json:"influx"`
}

// SetDefaults applies the default Prometheus address.
func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}

// Load reads the configuration file (JSON or YAML by extension), applies
// BARBOT_ environment overrides, defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = kyaml.Parser()
	case ".json":
		parser = kjson.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, e.g. BARBOT_BAR__SAFE_MODE=true. The
	// callback rewrites keys into dotted form, so the provider delimiter
	// must be "." for the keys to unflatten into nested paths.
	if err := k.Load(env.Provider("BARBOT_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "barbot_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Bar.SetDefaults()
	c.Motion.SetDefaults()
	c.Catalog.SetDefaults()
	c.API.SetDefaults()
	c.Metrics.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.Bar.Validate(); err != nil {
		return fmt.Errorf("bar: %w", err)
	}
	if err := c.Motion.Validate(); err != nil {
		return fmt.Errorf("motion: %w", err)
	}
	return nil
}

// Save writes the configuration back to disk as indented JSON, the
// round-trippable persisted form of the configuration boundary.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
