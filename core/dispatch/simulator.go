package dispatch

import (
	"fmt"
	"math"
	"strings"

	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/series"
)

// SoCReporting selects which state of charge is attached to a sample.
type SoCReporting int

const (
	// ReportPreUpdate reports the level held at the start of the interval.
	ReportPreUpdate SoCReporting = iota
	// ReportPostUpdate reports the level reached at the end of the interval.
	ReportPostUpdate
)

func (r SoCReporting) String() string {
	if r == ReportPostUpdate {
		return "post"
	}
	return "pre"
}

// ParseSoCReporting maps "pre" and "post" to a reporting mode. An empty string
// selects pre-update reporting.
func ParseSoCReporting(s string) (SoCReporting, error) {
	switch strings.ToLower(s) {
	case "", "pre":
		return ReportPreUpdate, nil
	case "post":
		return ReportPostUpdate, nil
	default:
		return ReportPreUpdate, fmt.Errorf("unknown soc reporting %q", s)
	}
}

type options struct {
	reporting SoCReporting
}

// Option customises a simulation.
type Option func(*options)

// WithSoCReporting sets the state of charge reporting mode for every sample.
func WithSoCReporting(r SoCReporting) Option {
	return func(o *options) { o.reporting = r }
}

// Simulate runs the battery through every interval of production and
// consumption, starting from the configured initial state of charge.
func Simulate(production, consumption model.PowerSeries, battery model.BatteryConfig, opts ...Option) (model.DispatchResult, error) {
	if err := series.CheckAligned(production, consumption); err != nil {
		return model.DispatchResult{}, err
	}
	if err := battery.Validate(); err != nil {
		return model.DispatchResult{}, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	n := len(production.Samples)
	out := make([]model.DispatchSample, n)
	capacity := battery.CapacityKWh

	if capacity == 0 {
		for i := range out {
			out[i] = model.DispatchSample{
				Timestamp:   series.TimestampAt(i, production, consumption),
				GridPowerKW: production.Samples[i].PowerKW - consumption.Samples[i].PowerKW,
			}
		}
		return model.DispatchResult{Samples: out, FinalSoCKWh: 0}, nil
	}

	step := production.TimeStepHours
	floor, ceiling := battery.MinKWh(), battery.MaxKWh()
	soc := battery.InitialKWh()

	for i := 0; i < n; i++ {
		before := soc
		net := production.Samples[i].PowerKW - consumption.Samples[i].PowerKW

		var batteryKW float64
		if net > 0 {
			charge := math.Max(0, math.Min(net, (ceiling-soc)/step))
			soc += charge * step
			batteryKW = -charge
		} else {
			available := math.Max(0, soc-floor)
			discharge := math.Max(0, math.Min(-net, available/step))
			soc -= discharge * step
			batteryKW = discharge
		}
		soc = clamp(soc, floor, ceiling)

		reported := before
		if o.reporting == ReportPostUpdate {
			reported = soc
		}
		out[i] = model.DispatchSample{
			Timestamp:      series.TimestampAt(i, production, consumption),
			BatteryPowerKW: batteryKW,
			SoCPercent:     reported / capacity * 100,
			GridPowerKW:    net + batteryKW,
		}
	}
	return model.DispatchResult{Samples: out, FinalSoCKWh: soc}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
