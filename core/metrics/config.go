package metrics

import "github.com/kilianp07/pvsim/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr exposes /metrics on a dedicated listener when set.
	PrometheusAddr string `json:"prometheus_addr"`
	// EmissionFactor is the grid carbon intensity in gCO2/kWh.
	EmissionFactor float64 `json:"emission_factor"`
}
