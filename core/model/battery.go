package model

import "math"

// DefaultInitialSoCFraction is used when BatteryConfig.InitialSoCFraction is nil.
const DefaultInitialSoCFraction = 0.5

// BatteryConfig describes the storage asset placed between the site and the grid.
type BatteryConfig struct {
	CapacityKWh        float64  `json:"capacity_kwh"`
	MinSoCFraction     float64  `json:"min_soc"`
	MaxSoCFraction     float64  `json:"max_soc"`
	InitialSoCFraction *float64 `json:"initial_soc,omitempty"`
}

// NewBatteryConfig returns a config with the default 50 % initial state of charge.
func NewBatteryConfig(capacityKWh, minFraction, maxFraction float64) BatteryConfig {
	return BatteryConfig{CapacityKWh: capacityKWh, MinSoCFraction: minFraction, MaxSoCFraction: maxFraction}
}

// WithInitial returns a copy of b starting at the given fraction.
func (b BatteryConfig) WithInitial(fraction float64) BatteryConfig {
	b.InitialSoCFraction = &fraction
	return b
}

// InitialFraction resolves the initial state of charge fraction.
func (b BatteryConfig) InitialFraction() float64 {
	if b.InitialSoCFraction == nil {
		return DefaultInitialSoCFraction
	}
	return *b.InitialSoCFraction
}

// MinKWh is the lowest energy the battery may hold.
func (b BatteryConfig) MinKWh() float64 { return b.MinSoCFraction * b.CapacityKWh }

// MaxKWh is the highest energy the battery may hold.
func (b BatteryConfig) MaxKWh() float64 { return b.MaxSoCFraction * b.CapacityKWh }

// InitialKWh is the energy held before the first interval of a day.
func (b BatteryConfig) InitialKWh() float64 { return b.InitialFraction() * b.CapacityKWh }

// Validate checks capacity and state of charge bounds.
func (b BatteryConfig) Validate() error {
	if math.IsNaN(b.CapacityKWh) || math.IsInf(b.CapacityKWh, 0) || b.CapacityKWh < 0 {
		return Invalid(ConstraintCapacity, "capacity %v kWh must be finite and >= 0", b.CapacityKWh)
	}
	lo, hi := b.MinSoCFraction, b.MaxSoCFraction
	if !(lo >= 0 && lo < hi && hi <= 1) {
		return Invalid(ConstraintSoCBounds, "need 0 <= min (%v) < max (%v) <= 1", lo, hi)
	}
	init := b.InitialFraction()
	if !(init >= lo && init <= hi) {
		return Invalid(ConstraintInitialSoC, "initial %v outside [%v, %v]", init, lo, hi)
	}
	return nil
}
