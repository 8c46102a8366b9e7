package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/pvsim/core/factory"
)

// ReportsConfig selects the report store.
type ReportsConfig struct {
	Store factory.ModuleConfig `json:"store"`
	// StoreSamples keeps the interval trace of every day.
	StoreSamples bool `json:"store_samples"`
}

// SetDefaults applies sane defaults.
func (c *ReportsConfig) SetDefaults() {
	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
}

// APIConfig defines the HTTP surface.
type APIConfig struct {
	// Addr is the listen address; empty disables the server.
	Addr        string   `json:"addr"`
	Token       string   `json:"token"`
	CORSOrigins []string `json:"cors_origins"`
	// ReplayIntervalMS paces WebSocket replay frames.
	ReplayIntervalMS int `json:"replay_interval_ms"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.ReplayIntervalMS == 0 {
		c.ReplayIntervalMS = 250
	}
}

// ReplayInterval returns the pause between two replay frames.
func (c APIConfig) ReplayInterval() time.Duration {
	return time.Duration(c.ReplayIntervalMS) * time.Millisecond
}

// Validate checks the API settings.
func (c APIConfig) Validate() error {
	if c.ReplayIntervalMS < 0 {
		return fmt.Errorf("replay_interval_ms must be >= 0")
	}
	return nil
}
