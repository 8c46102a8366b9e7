// Package scenarios replays YAML described days through the engine and checks
// the outcome against expected traces and dispatch properties.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/pvsim/core/dispatch"
	"github.com/kilianp07/pvsim/core/model"
)

// BatteryDef describes the battery of a scenario.
type BatteryDef struct {
	CapacityKWh float64  `yaml:"capacity_kwh"`
	MinSoC      float64  `yaml:"min_soc"`
	MaxSoC      float64  `yaml:"max_soc"`
	InitialSoC  *float64 `yaml:"initial_soc,omitempty"`
}

// ToModel converts the definition.
func (b BatteryDef) ToModel() model.BatteryConfig {
	return model.BatteryConfig{
		CapacityKWh:        b.CapacityKWh,
		MinSoCFraction:     b.MinSoC,
		MaxSoCFraction:     b.MaxSoC,
		InitialSoCFraction: b.InitialSoC,
	}
}

// Expected lists the checked outputs. Empty traces and nil values are not
// checked.
type Expected struct {
	Grid               []float64 `yaml:"grid"`
	Battery            []float64 `yaml:"battery"`
	SoCPercent         []float64 `yaml:"soc_percent"`
	FinalSoCKWh        *float64  `yaml:"final_soc_kwh"`
	SelfConsumptionPct *float64  `yaml:"self_consumption_pct"`
	Tolerance          float64   `yaml:"tolerance"`
}

type Scenario struct {
	Name          string     `yaml:"name"`
	Description   string     `yaml:"description,omitempty"`
	TimeStepHours float64    `yaml:"time_step_hours"`
	Production    []float64  `yaml:"production"`
	Consumption   []float64  `yaml:"consumption"`
	Battery       BatteryDef `yaml:"battery"`
	// SoCReporting is "pre" (default) or "post".
	SoCReporting string   `yaml:"soc_reporting,omitempty"`
	Expected     Expected `yaml:"expected"`
}

// Reporting resolves the state of charge reporting mode.
func (sc *Scenario) Reporting() (dispatch.SoCReporting, error) {
	if sc.SoCReporting == "" {
		return dispatch.ReportPreUpdate, nil
	}
	return dispatch.ParseSoCReporting(sc.SoCReporting)
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario has no name", path)
	}
	if sc.Expected.Tolerance == 0 {
		sc.Expected.Tolerance = 1e-9
	}
	return &sc, nil
}
