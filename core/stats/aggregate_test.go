package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvsim/core/dispatch"
	"github.com/kilianp07/pvsim/core/model"
)

func TestAggregateFullSelfConsumption(t *testing.T) {
	start := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
	prod := model.NewSeries(start, 0.25, []float64{4, 4, 4, 4})
	cons := model.NewSeries(start, 0.25, []float64{1, 1, 1, 1})
	res, err := dispatch.Simulate(prod, cons, model.NewBatteryConfig(10, 0.05, 0.95))
	require.NoError(t, err)

	st, err := Aggregate(prod, cons, res.GridValues())
	require.NoError(t, err)
	assert.InDelta(t, 4.0, st.ProductionTotalKWh, 1e-9)
	assert.InDelta(t, 1.0, st.ConsumptionTotalKWh, 1e-9)
	assert.Equal(t, 4.0, st.ProductionMaxKW)
	assert.Equal(t, start, st.ProductionMaxAt)
	assert.InDelta(t, 0.0, st.GridBalanceKWh, 1e-9)
	// All production is stored, so self-consumption exceeds consumption and clamps.
	assert.Equal(t, 100.0, st.SelfConsumptionPct)
}

func TestAggregateNoBattery(t *testing.T) {
	start := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	prod := model.NewSeries(start, 1, []float64{0, 5, 3, 0})
	cons := model.NewSeries(start, 1, []float64{2, 2, 4, 2})
	grid := []float64{-2, 3, -1, -2}

	st, err := Aggregate(prod, cons, grid)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, st.ProductionTotalKWh, 1e-9)
	assert.InDelta(t, 10.0, st.ConsumptionTotalKWh, 1e-9)
	assert.InDelta(t, -2.0, st.GridBalanceKWh, 1e-9)
	assert.InDelta(t, 3.0, st.InjectedKWh, 1e-9)
	assert.InDelta(t, 5.0, st.ImportedKWh, 1e-9)
	assert.InDelta(t, 5.0, st.SelfConsumedKWh, 1e-9)
	assert.InDelta(t, 50.0, st.SelfConsumptionPct, 1e-9)
	assert.Equal(t, start.Add(time.Hour), st.ProductionMaxAt)
	assert.Equal(t, 4.0, st.ConsumptionMaxKW)
	assert.Equal(t, start.Add(2*time.Hour), st.ConsumptionMaxAt)
}

func TestAggregateFirstMaximumWins(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prod := model.NewSeries(start, 1, []float64{1, 3, 3})
	cons := model.NewSeries(start, 1, []float64{1, 1, 1})
	st, err := Aggregate(prod, cons, []float64{0, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Hour), st.ProductionMaxAt)
	assert.Equal(t, start, st.ConsumptionMaxAt)
}

func TestAggregateZeroConsumption(t *testing.T) {
	prod := model.NewSeries(time.Time{}, 1, []float64{3})
	cons := model.NewSeries(time.Time{}, 1, []float64{0})
	st, err := Aggregate(prod, cons, []float64{3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, st.SelfConsumptionPct)
}

func TestAggregateErrors(t *testing.T) {
	empty := model.PowerSeries{TimeStepHours: 1}
	_, err := Aggregate(empty, empty, nil)
	assert.True(t, errors.Is(err, model.ErrEmptySeries))

	s := model.NewSeries(time.Time{}, 1, []float64{1, 2})
	_, err = Aggregate(s, s, []float64{1})
	assert.Equal(t, model.ConstraintLength, model.ConstraintOf(err))
}

func TestSummarize(t *testing.T) {
	d1 := model.DailyStats{ProductionTotalKWh: 10, ConsumptionTotalKWh: 20, SelfConsumedKWh: 10, ProductionMaxKW: 5, ConsumptionMaxKW: 4, InjectedKWh: 0}
	d2 := model.DailyStats{ProductionTotalKWh: 30, ConsumptionTotalKWh: 20, SelfConsumedKWh: 20, ProductionMaxKW: 9, ConsumptionMaxKW: 3, InjectedKWh: 10}
	ps := Summarize([]model.DailyStats{d1, d2})
	assert.Equal(t, 2, ps.Days)
	assert.InDelta(t, 40.0, ps.ProductionTotalKWh, 1e-9)
	assert.InDelta(t, 75.0, ps.SelfConsumptionPct, 1e-9)
	assert.Equal(t, 9.0, ps.ProductionMaxKW)
	assert.Equal(t, 4.0, ps.ConsumptionMaxKW)
	assert.Equal(t, 0, Summarize(nil).Days)
}
