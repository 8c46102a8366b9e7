package chart

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvsim/core/engine"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/series"
)

func TestRenderDay(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	prod := model.NewSeries(start, 0.25, []float64{0, 5, 10, 5})
	cons := model.NewSeries(start, 0.25, []float64{2, 2, 2, 2})
	eng := engine.New(engine.Options{})
	rep, err := eng.SimulateDay(series.Day{Key: "2024-06-01", Date: start, Production: prod, Consumption: cons}, model.NewBatteryConfig(10, 0.1, 0.9))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderDay(&buf, rep))
	html := buf.String()
	assert.Contains(t, html, "State of charge 2024-06-01")
	assert.Contains(t, html, "00:45")
	assert.Contains(t, html, "echarts")
}

func TestRenderDayEmpty(t *testing.T) {
	assert.ErrorIs(t, RenderDay(&bytes.Buffer{}, engine.DayReport{}), model.ErrEmptySeries)
}
