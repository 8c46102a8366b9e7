package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/kilianp07/pvsim/core/dispatch"
	"github.com/kilianp07/pvsim/core/series"
)

// SimulationConfig defines the input files and how they are simulated.
type SimulationConfig struct {
	ProductionPath  string `json:"production"`
	ConsumptionPath string `json:"consumption"`
	// TimeStepHours overrides the step inferred from the CSV files.
	TimeStepHours float64 `json:"time_step_hours"`
	// Timezone interprets naive timestamps and day boundaries.
	Timezone     string `json:"timezone"`
	Workers      int    `json:"workers"`
	SoCReporting string `json:"soc_reporting"`
	// Date restricts the run to a single day (YYYY-MM-DD).
	Date string `json:"date"`
}

// SetDefaults applies sane defaults.
func (c *SimulationConfig) SetDefaults() {
	if c.ProductionPath == "" {
		c.ProductionPath = "data/production_scaled.csv"
	}
	if c.ConsumptionPath == "" {
		c.ConsumptionPath = "data/consumption.csv"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.SoCReporting == "" {
		c.SoCReporting = dispatch.ReportPreUpdate.String()
	}
}

// Validate checks the simulation settings.
func (c SimulationConfig) Validate() error {
	if c.TimeStepHours < 0 {
		return fmt.Errorf("time_step_hours must be >= 0")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Reporting(); err != nil {
		return err
	}
	if c.Date != "" {
		if _, err := time.Parse(series.DayLayout, c.Date); err != nil {
			return fmt.Errorf("date %q: %w", c.Date, err)
		}
	}
	return nil
}

// Location returns the configured time zone.
func (c SimulationConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Reporting returns the state of charge reporting mode.
func (c SimulationConfig) Reporting() (dispatch.SoCReporting, error) {
	return dispatch.ParseSoCReporting(c.SoCReporting)
}
