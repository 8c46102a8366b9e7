// Package chart renders simulated days as standalone HTML pages.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/pvsim/core/engine"
	"github.com/kilianp07/pvsim/core/model"
)

func axis(rep engine.DayReport) []string {
	out := make([]string, len(rep.Samples))
	for i, s := range rep.Samples {
		if s.Timestamp.IsZero() {
			out[i] = fmt.Sprintf("#%d", i)
			continue
		}
		out[i] = s.Timestamp.Format("15:04")
	}
	return out
}

func lineData(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

func newLine(title, unit string, x []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: unit}),
	)
	line.SetXAxis(x)
	return line
}

// RenderDay writes an HTML page with the production, consumption, grid and
// state of charge curves of rep.
func RenderDay(w io.Writer, rep engine.DayReport) error {
	if len(rep.Samples) == 0 {
		return model.ErrEmptySeries
	}
	x := axis(rep)
	res := model.DispatchResult{Samples: rep.Samples}
	title := rep.Day
	if title == "" {
		title = "simulation"
	}

	production := newLine("Production "+title, "kW", x).
		AddSeries("production", lineData(rep.Production.Values()))
	consumption := newLine("Consumption "+title, "kW", x).
		AddSeries("consumption", lineData(rep.Consumption.Values()))
	grid := newLine("Grid exchange "+title, "kW", x).
		AddSeries("grid", lineData(res.GridValues())).
		AddSeries("battery", lineData(res.BatteryValues()))
	soc := newLine("State of charge "+title, "%", x)
	soc.SetGlobalOptions(charts.WithYAxisOpts(opts.YAxis{Name: "%", Min: 0, Max: 100}))
	soc.AddSeries("soc", lineData(res.SoCValues()))

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("pvsim %s: %.1f %% self-consumption", title, rep.Stats.SelfConsumptionPct)
	page.AddCharts(production, consumption, grid, soc)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
