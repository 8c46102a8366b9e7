package config

import (
	"fmt"
	"time"
)

// Generator sources.
const (
	SourceSynthetic = "synthetic"
	SourceSun       = "sun"
	SourcePVGIS     = "pvgis"
	SourceEnedis    = "enedis"
)

// DefaultSeed seeds the generators when no seed is configured.
const DefaultSeed int64 = 42

// GeneratorConfig drives the data set generator.
type GeneratorConfig struct {
	Source string `json:"source"`
	// ConsumptionSource is synthetic or enedis.
	ConsumptionSource string `json:"consumption_source"`
	// Seed is nil until SetDefaults; an explicit 0 is kept.
	Seed          *int64  `json:"seed"`
	PeakKW        float64 `json:"peak_kw"`
	Homes         int     `json:"homes"`
	BaseKWPerHome float64 `json:"base_kw_per_home"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Year          int     `json:"year"`
	TimeStepHours float64 `json:"time_step_hours"`
	OutDir        string  `json:"out_dir"`
}

// SetDefaults applies sane defaults.
func (c *GeneratorConfig) SetDefaults() {
	if c.Source == "" {
		c.Source = SourceSynthetic
	}
	if c.ConsumptionSource == "" {
		c.ConsumptionSource = SourceSynthetic
	}
	if c.Seed == nil {
		seed := DefaultSeed
		c.Seed = &seed
	}
	if c.PeakKW == 0 {
		c.PeakKW = 80
	}
	if c.Homes == 0 {
		c.Homes = 50
	}
	if c.BaseKWPerHome == 0 {
		c.BaseKWPerHome = 0.5
	}
	if c.Latitude == 0 && c.Longitude == 0 {
		c.Latitude, c.Longitude = 48.8566, 2.3522
	}
	if c.Year == 0 {
		c.Year = time.Now().Year() - 1
	}
	if c.TimeStepHours == 0 {
		c.TimeStepHours = 0.25
	}
	if c.OutDir == "" {
		c.OutDir = "data"
	}
}

// SeedValue returns the configured seed, DefaultSeed when unset.
func (c GeneratorConfig) SeedValue() int64 {
	if c.Seed == nil {
		return DefaultSeed
	}
	return *c.Seed
}

// Validate checks the generator settings.
func (c GeneratorConfig) Validate() error {
	switch c.Source {
	case SourceSynthetic, SourceSun, SourcePVGIS:
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	switch c.ConsumptionSource {
	case SourceSynthetic, SourceEnedis:
	default:
		return fmt.Errorf("unknown consumption_source %q", c.ConsumptionSource)
	}
	if c.PeakKW <= 0 || c.Homes <= 0 || c.BaseKWPerHome <= 0 {
		return fmt.Errorf("peak_kw, homes and base_kw_per_home must be > 0")
	}
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("coordinates out of range")
	}
	if c.TimeStepHours <= 0 || c.TimeStepHours > 1 {
		return fmt.Errorf("time_step_hours must be in (0, 1]")
	}
	return nil
}

// PVGISConfig describes the PVGIS query.
type PVGISConfig struct {
	BaseURL        string  `json:"base_url"`
	TimeoutSeconds int     `json:"timeout_seconds"`
	PeakPowerKW    float64 `json:"peak_power_kw"`
	LossPercent    float64 `json:"loss_percent"`
	Angle          float64 `json:"angle"`
	Aspect         float64 `json:"aspect"`
}

// SetDefaults applies sane defaults.
func (c *PVGISConfig) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 120
	}
	if c.PeakPowerKW == 0 {
		c.PeakPowerKW = 100
	}
}

// Timeout returns the request timeout.
func (c PVGISConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the PVGIS settings.
func (c PVGISConfig) Validate() error {
	if c.PeakPowerKW <= 0 {
		return fmt.Errorf("peak_power_kw must be > 0")
	}
	if c.LossPercent < 0 || c.LossPercent >= 100 {
		return fmt.Errorf("loss_percent must be in [0, 100)")
	}
	return nil
}

// EnedisConfig locates the Enedis open data balance.
type EnedisConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	PageSize       int    `json:"page_size"`
}

// SetDefaults applies sane defaults.
func (c *EnedisConfig) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 60
	}
	if c.PageSize <= 0 {
		c.PageSize = 100
	}
}

// Timeout returns the request timeout.
func (c EnedisConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the Enedis settings.
func (c EnedisConfig) Validate() error {
	if c.PageSize > 100 {
		return fmt.Errorf("page_size must be at most 100, got %d", c.PageSize)
	}
	return nil
}
