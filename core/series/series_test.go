package series

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvsim/core/model"
)

func TestCheckAligned(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	prod := model.NewSeries(start, 0.25, []float64{1, 2, 3})
	cons := model.NewSeries(start, 0.25, []float64{1, 1, 1})
	require.NoError(t, CheckAligned(prod, cons))

	gapped := model.NewSeries(start, 0.25, []float64{1, 1, 1})
	gapped.Samples[2].Timestamp = start.Add(5 * time.Hour)
	positional := model.NewSeries(time.Time{}, 0.25, []float64{1, 1, 1})
	unordered := model.NewSeries(start, 0.25, []float64{1, 1, 1})
	unordered.Samples[2].Timestamp = start

	tests := []struct {
		name       string
		prod, cons model.PowerSeries
		constraint string
	}{
		{"length", prod, model.NewSeries(start, 0.25, []float64{1, 1}), model.ConstraintLength},
		{"empty", model.PowerSeries{TimeStepHours: 0.25}, model.PowerSeries{TimeStepHours: 0.25}, model.ConstraintEmpty},
		{"step", prod, model.NewSeries(start, 0.5, []float64{1, 1, 1}), model.ConstraintTimeStep},
		{"zero step", model.NewSeries(time.Time{}, 0, []float64{1}), model.NewSeries(time.Time{}, 0, []float64{1}), model.ConstraintTimeStep},
		{"timestamps", prod, model.NewSeries(start.Add(time.Hour), 0.25, []float64{1, 1, 1}), model.ConstraintTimestamps},
		{"nan", model.NewSeries(time.Time{}, 1, []float64{1, math.NaN()}), model.NewSeries(time.Time{}, 1, []float64{1, 1}), model.ConstraintValue},
		{"gap", gapped, gapped, model.ConstraintGap},
		{"consumption order", positional, unordered, model.ConstraintOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAligned(tt.prod, tt.cons)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrValidation))
			assert.Equal(t, tt.constraint, model.ConstraintOf(err))
		})
	}
}

func TestCheckAlignedPositional(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	prod := model.NewSeries(start, 1, []float64{1, 2})
	cons := model.NewSeries(time.Time{}, 1, []float64{3, 4})
	assert.NoError(t, CheckAligned(prod, cons))
}

func TestCheckOrder(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := model.NewSeries(start, 1, []float64{1, 2})
	s.Samples[1].Timestamp = start
	err := CheckOrder("production", s)
	assert.Equal(t, model.ConstraintOrder, model.ConstraintOf(err))
}

func TestCheckContiguous(t *testing.T) {
	start := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)

	// whole days may be missing
	s := model.NewSeries(start, 1, []float64{1, 2, 3})
	s.Samples[2].Timestamp = start.Add(49 * time.Hour)
	assert.NoError(t, CheckContiguous("production", s))

	s = model.NewSeries(start, 1.0/12, []float64{1, 2})
	s.TimeStepHours = 0.0833
	assert.NoError(t, CheckContiguous("production", s))

	s = model.NewSeries(start.Add(-12*time.Hour), 0.25, []float64{1, 2, 3})
	s.Samples[2].Timestamp = s.Samples[1].Timestamp.Add(time.Hour)
	err := CheckContiguous("production", s)
	assert.Equal(t, model.ConstraintGap, model.ConstraintOf(err))
}

func TestSplitDays(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	start := time.Date(2024, 3, 1, 22, 0, 0, 0, loc)
	vals := []float64{1, 2, 3, 4, 5}
	prod := model.NewSeries(start, 1, vals)
	cons := model.NewSeries(start, 1, vals)

	days, err := SplitDays(prod, cons, loc)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-01", days[0].Key)
	assert.Equal(t, 2, days[0].Production.Len())
	assert.Equal(t, "2024-03-02", days[1].Key)
	assert.Equal(t, 3, days[1].Consumption.Len())
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, loc), days[1].Date)
}

func TestSplitDaysPositional(t *testing.T) {
	prod := model.NewSeries(time.Time{}, 1, []float64{1, 2})
	days, err := SplitDays(prod, prod, time.UTC)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "", days[0].Key)
	assert.Equal(t, 2, days[0].Production.Len())
}

func TestInterpolate(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	hourly := model.NewSeries(start, 1, []float64{0, 4, 8})
	out, err := Interpolate(hourly, 0.25)
	require.NoError(t, err)
	require.Equal(t, 12, out.Len())
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 8, 8, 8}, out.Values())
	assert.Equal(t, start.Add(45*time.Minute), out.Samples[3].Timestamp)
	assert.Equal(t, 0.25, out.TimeStepHours)

	_, err = Interpolate(hourly, 0.4)
	assert.Equal(t, model.ConstraintTimeStep, model.ConstraintOf(err))
}

func TestScaleToMatch(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	prod := model.NewSeries(start, 12, []float64{1, 1, 1, 1})
	cons := model.NewSeries(start, 12, []float64{2, 2, 2, 2})

	scaled, meta, err := ScaleToMatch(prod, cons, time.UTC)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, meta.ScaleFactor, 1e-9)
	assert.InDelta(t, 24.0, meta.AvgDailyProductionKWh, 1e-9)
	assert.InDelta(t, 48.0, meta.AvgDailyConsumptionKWh, 1e-9)
	assert.Equal(t, "2024-06-01", meta.DateStart)
	assert.Equal(t, "2024-06-02", meta.DateEnd)
	assert.Equal(t, []float64{2, 2, 2, 2}, scaled.Values())

	_, _, err = ScaleToMatch(model.NewSeries(start, 1, []float64{0}), cons, time.UTC)
	assert.Error(t, err)
}
