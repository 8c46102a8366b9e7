package model

import (
	"errors"
	"math"
	"testing"
)

func TestBatteryConfigValidate(t *testing.T) {
	tests := []struct {
		name       string
		cfg        BatteryConfig
		constraint string
	}{
		{"ok", NewBatteryConfig(10, 0.05, 0.95), ""},
		{"zero capacity", NewBatteryConfig(0, 0.1, 0.8), ""},
		{"negative capacity", NewBatteryConfig(-1, 0.1, 0.8), ConstraintCapacity},
		{"nan capacity", NewBatteryConfig(math.NaN(), 0.1, 0.8), ConstraintCapacity},
		{"min equals max", NewBatteryConfig(10, 0.5, 0.5), ConstraintSoCBounds},
		{"max above one", NewBatteryConfig(10, 0.1, 1.2), ConstraintSoCBounds},
		{"negative min", NewBatteryConfig(10, -0.1, 0.9), ConstraintSoCBounds},
		{"initial below min", NewBatteryConfig(10, 0.6, 0.9), ConstraintInitialSoC},
		{"explicit initial", NewBatteryConfig(10, 0, 1).WithInitial(0), ""},
		{"initial above max", NewBatteryConfig(10, 0.1, 0.8).WithInitial(0.9), ConstraintInitialSoC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.constraint == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := ConstraintOf(err); got != tt.constraint {
				t.Fatalf("expected constraint %s got %s", tt.constraint, got)
			}
		})
	}
}

func TestBatteryConfigEnergyBounds(t *testing.T) {
	b := NewBatteryConfig(20, 0.1, 0.8)
	if b.MinKWh() != 2 || b.MaxKWh() != 16 {
		t.Fatalf("bounds %v %v", b.MinKWh(), b.MaxKWh())
	}
	if b.InitialKWh() != 10 {
		t.Fatalf("expected default initial 10 kWh got %v", b.InitialKWh())
	}
}

func TestClassifyFlow(t *testing.T) {
	f := ClassifyFlow(3, -1, 0.05)
	if !f.Solar || !f.Charging || f.Discharging || f.Injecting || f.Drawing {
		t.Fatalf("unexpected flow %+v", f)
	}
	f = ClassifyFlow(0.05, 2, -0.5)
	if f.Solar || !f.Discharging || !f.Drawing {
		t.Fatalf("unexpected flow %+v", f)
	}
}
