package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/pvsim/core/metrics"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/infra/mqtt"
)

// EnvPrefix selects the environment variables overriding file values.
// PVSIM_BATTERY__CAPACITY_KWH=20 sets battery.capacity_kwh.
const EnvPrefix = "PVSIM_"

type Config struct {
	Battery    model.BatteryConfig `json:"battery"`
	Simulation SimulationConfig    `json:"simulation"`
	Generator  GeneratorConfig     `json:"generator"`
	PVGIS      PVGISConfig         `json:"pvgis"`
	Enedis     EnedisConfig        `json:"enedis"`
	Metrics    metrics.Config      `json:"metrics"`
	Reports    ReportsConfig       `json:"reports"`
	MQTT       mqtt.Config         `json:"mqtt"`
	API        APIConfig           `json:"api"`
	Sentry     SentryConfig        `json:"sentry"`
}

// Default returns the configuration used when no value is provided.
func Default() Config {
	cfg := Config{
		Battery: model.NewBatteryConfig(500, 0.05, 0.95),
		PVGIS:   PVGISConfig{PeakPowerKW: 100, LossPercent: 14, Angle: 35},
	}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills the zero values every section cannot run with.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Generator.SetDefaults()
	c.PVGIS.SetDefaults()
	c.Enedis.SetDefaults()
	c.Reports.SetDefaults()
	c.API.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Battery.Validate(); err != nil {
		return fmt.Errorf("battery: %w", err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	if err := c.PVGIS.Validate(); err != nil {
		return fmt.Errorf("pvgis: %w", err)
	}
	if err := c.Enedis.Validate(); err != nil {
		return fmt.Errorf("enedis: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}

// Load reads a YAML or JSON file, applies PVSIM_ environment overrides on
// top and validates the result. An empty path loads defaults and the
// environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
