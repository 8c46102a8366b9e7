package model

import "time"

// Sample is one average power reading over a time step.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	PowerKW   float64   `json:"power_kw"`
}

// PowerSeries is an ordered sequence of power samples at a fixed step.
// Timestamps may be left zero when series are aligned by position only.
type PowerSeries struct {
	TimeStepHours float64  `json:"time_step_hours"`
	Samples       []Sample `json:"samples"`
}

// NewSeries builds a series starting at start with one sample per value.
// A zero start yields positional samples without timestamps.
func NewSeries(start time.Time, stepHours float64, values []float64) PowerSeries {
	s := PowerSeries{TimeStepHours: stepHours, Samples: make([]Sample, len(values))}
	step := HoursToDuration(stepHours)
	for i, v := range values {
		s.Samples[i].PowerKW = v
		if !start.IsZero() {
			s.Samples[i].Timestamp = start.Add(time.Duration(i) * step)
		}
	}
	return s
}

// Len returns the number of samples.
func (s PowerSeries) Len() int { return len(s.Samples) }

// Values returns the power values in order.
func (s PowerSeries) Values() []float64 {
	out := make([]float64, len(s.Samples))
	for i, p := range s.Samples {
		out[i] = p.PowerKW
	}
	return out
}

// Step returns the time step as a duration.
func (s PowerSeries) Step() time.Duration { return HoursToDuration(s.TimeStepHours) }

// Slice returns the sub-series [i, j) sharing the same step.
func (s PowerSeries) Slice(i, j int) PowerSeries {
	return PowerSeries{TimeStepHours: s.TimeStepHours, Samples: s.Samples[i:j]}
}

// Timestamped reports whether any sample carries a timestamp.
func (s PowerSeries) Timestamped() bool {
	for _, p := range s.Samples {
		if !p.Timestamp.IsZero() {
			return true
		}
	}
	return false
}

// HoursToDuration converts fractional hours into a duration.
func HoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
