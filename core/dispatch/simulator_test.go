package dispatch

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvsim/core/model"
)

const eps = 1e-9

func TestSimulateSurplusChargesBattery(t *testing.T) {
	start := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
	prod := model.NewSeries(start, 0.25, []float64{4, 4, 4, 4})
	cons := model.NewSeries(start, 0.25, []float64{1, 1, 1, 1})
	battery := model.NewBatteryConfig(10, 0.05, 0.95)

	res, err := Simulate(prod, cons, battery)
	require.NoError(t, err)
	require.Len(t, res.Samples, 4)
	assert.InDelta(t, 8.0, res.FinalSoCKWh, eps)

	wantSoC := []float64{50, 57.5, 65, 72.5}
	for i, s := range res.Samples {
		assert.InDelta(t, 0.0, s.GridPowerKW, eps, "grid %d", i)
		assert.InDelta(t, -3.0, s.BatteryPowerKW, eps, "battery %d", i)
		assert.InDelta(t, wantSoC[i], s.SoCPercent, eps, "soc %d", i)
		assert.Equal(t, start.Add(time.Duration(i)*15*time.Minute), s.Timestamp)
	}
}

func TestSimulateZeroCapacity(t *testing.T) {
	prod := model.NewSeries(time.Time{}, 0.25, []float64{0, 0})
	cons := model.NewSeries(time.Time{}, 0.25, []float64{2, 2})

	res, err := Simulate(prod, cons, model.NewBatteryConfig(0, 0.1, 0.9))
	require.NoError(t, err)
	for _, s := range res.Samples {
		assert.Equal(t, -2.0, s.GridPowerKW)
		assert.Equal(t, 0.0, s.BatteryPowerKW)
		assert.Equal(t, 0.0, s.SoCPercent)
	}
	assert.Equal(t, 0.0, res.FinalSoCKWh)
}

func TestSimulateSaturatesAtCeiling(t *testing.T) {
	prod := model.NewSeries(time.Time{}, 1, []float64{10, 10})
	cons := model.NewSeries(time.Time{}, 1, []float64{0, 0})
	battery := model.NewBatteryConfig(10, 0.1, 0.8)

	res, err := Simulate(prod, cons, battery)
	require.NoError(t, err)
	assert.InDelta(t, -3.0, res.Samples[0].BatteryPowerKW, eps)
	assert.InDelta(t, 7.0, res.Samples[0].GridPowerKW, eps)
	assert.InDelta(t, 0.0, res.Samples[1].BatteryPowerKW, eps)
	assert.InDelta(t, 10.0, res.Samples[1].GridPowerKW, eps)
	assert.InDelta(t, 80.0, res.Samples[1].SoCPercent, eps)
	assert.InDelta(t, 8.0, res.FinalSoCKWh, eps)
}

func TestSimulateDeficitStopsAtFloor(t *testing.T) {
	prod := model.NewSeries(time.Time{}, 0.5, []float64{0, 0, 0})
	cons := model.NewSeries(time.Time{}, 0.5, []float64{6, 6, 6})
	battery := model.NewBatteryConfig(10, 0.1, 0.9)

	res, err := Simulate(prod, cons, battery)
	require.NoError(t, err)
	// 4 kWh above the floor: 3 kWh in the first half hour, 1 kWh in the second.
	assert.InDelta(t, 6.0, res.Samples[0].BatteryPowerKW, eps)
	assert.InDelta(t, 0.0, res.Samples[0].GridPowerKW, eps)
	assert.InDelta(t, 2.0, res.Samples[1].BatteryPowerKW, eps)
	assert.InDelta(t, -4.0, res.Samples[1].GridPowerKW, eps)
	assert.InDelta(t, 0.0, res.Samples[2].BatteryPowerKW, eps)
	assert.InDelta(t, -6.0, res.Samples[2].GridPowerKW, eps)
	assert.InDelta(t, 1.0, res.FinalSoCKWh, eps)
}

func TestSimulatePostUpdateReporting(t *testing.T) {
	prod := model.NewSeries(time.Time{}, 0.25, []float64{4, 4})
	cons := model.NewSeries(time.Time{}, 0.25, []float64{1, 1})
	battery := model.NewBatteryConfig(10, 0.05, 0.95)

	res, err := Simulate(prod, cons, battery, WithSoCReporting(ReportPostUpdate))
	require.NoError(t, err)
	assert.InDelta(t, 57.5, res.Samples[0].SoCPercent, eps)
	assert.InDelta(t, 65.0, res.Samples[1].SoCPercent, eps)
}

func TestSimulateValidation(t *testing.T) {
	ok := model.NewSeries(time.Time{}, 0.25, []float64{1, 2})
	t0 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	gapped := model.NewSeries(t0, 0.25, []float64{1, 2, 3})
	gapped.Samples[2].Timestamp = t0.Add(5 * time.Hour)
	tests := []struct {
		name       string
		prod, cons model.PowerSeries
		battery    model.BatteryConfig
		constraint string
	}{
		{"length", ok, model.NewSeries(time.Time{}, 0.25, []float64{1}), model.NewBatteryConfig(10, 0.1, 0.9), model.ConstraintLength},
		{"empty", model.PowerSeries{TimeStepHours: 0.25}, model.PowerSeries{TimeStepHours: 0.25}, model.NewBatteryConfig(10, 0.1, 0.9), model.ConstraintEmpty},
		{"step", model.NewSeries(time.Time{}, -1, []float64{1}), model.NewSeries(time.Time{}, -1, []float64{1}), model.NewBatteryConfig(10, 0.1, 0.9), model.ConstraintTimeStep},
		{"capacity", ok, ok, model.NewBatteryConfig(-5, 0.1, 0.9), model.ConstraintCapacity},
		{"bounds", ok, ok, model.NewBatteryConfig(10, 0.9, 0.1), model.ConstraintSoCBounds},
		{"initial", ok, ok, model.NewBatteryConfig(10, 0.1, 0.9).WithInitial(0.95), model.ConstraintInitialSoC},
		{"gap", gapped, gapped, model.NewBatteryConfig(10, 0.1, 0.9), model.ConstraintGap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Simulate(tt.prod, tt.cons, tt.battery)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrValidation))
			assert.Equal(t, tt.constraint, model.ConstraintOf(err))
		})
	}
}

func TestSimulateInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	n := 96
	prodVals := make([]float64, n)
	consVals := make([]float64, n)
	for i := range prodVals {
		prodVals[i] = r.Float64() * 40
		consVals[i] = r.Float64() * 30
	}
	prod := model.NewSeries(time.Time{}, 0.25, prodVals)
	cons := model.NewSeries(time.Time{}, 0.25, consVals)
	battery := model.NewBatteryConfig(25, 0.1, 0.8)

	res, err := Simulate(prod, cons, battery)
	require.NoError(t, err)

	soc := battery.InitialKWh()
	for i, s := range res.Samples {
		net := prodVals[i] - consVals[i]
		assert.InDelta(t, net+s.BatteryPowerKW, s.GridPowerKW, eps)
		assert.GreaterOrEqual(t, s.SoCPercent, 10.0-eps)
		assert.LessOrEqual(t, s.SoCPercent, 80.0+eps)
		if net > 0 {
			assert.LessOrEqual(t, s.BatteryPowerKW, 0.0)
			assert.GreaterOrEqual(t, s.GridPowerKW, -eps)
		} else {
			assert.GreaterOrEqual(t, s.BatteryPowerKW, 0.0)
			assert.LessOrEqual(t, s.GridPowerKW, eps)
		}
		soc -= s.BatteryPowerKW * 0.25
	}
	assert.InDelta(t, soc, res.FinalSoCKWh, 1e-6)

	again, err := Simulate(prod, cons, battery)
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestParseSoCReporting(t *testing.T) {
	r, err := ParseSoCReporting("POST")
	require.NoError(t, err)
	assert.Equal(t, ReportPostUpdate, r)
	r, err = ParseSoCReporting("")
	require.NoError(t, err)
	assert.Equal(t, ReportPreUpdate, r)
	_, err = ParseSoCReporting("mid")
	assert.Error(t, err)
}
