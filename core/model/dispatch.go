package model

import "time"

// DispatchSample is the simulated outcome of one interval.
// BatteryPowerKW is positive when discharging and negative when charging.
// GridPowerKW is positive when exporting and negative when importing.
type DispatchSample struct {
	Timestamp      time.Time `json:"timestamp"`
	BatteryPowerKW float64   `json:"battery_power_kw"`
	SoCPercent     float64   `json:"soc_percent"`
	GridPowerKW    float64   `json:"grid_power_kw"`
}

// DispatchResult holds the per-interval samples and the closing energy level.
type DispatchResult struct {
	Samples     []DispatchSample `json:"samples"`
	FinalSoCKWh float64          `json:"final_soc_kwh"`
}

// GridValues returns the grid exchange of every interval.
func (r DispatchResult) GridValues() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.GridPowerKW
	}
	return out
}

// BatteryValues returns the battery power of every interval.
func (r DispatchResult) BatteryValues() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.BatteryPowerKW
	}
	return out
}

// SoCValues returns the reported state of charge percentages.
func (r DispatchResult) SoCValues() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.SoCPercent
	}
	return out
}
