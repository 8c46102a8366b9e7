package metrics

import (
	"time"

	"github.com/kilianp07/pvsim/core/model"
)

// DayEvent carries the outcome of one simulated day.
type DayEvent struct {
	RunID   string
	Day     string
	Date    time.Time
	Battery model.BatteryConfig
	Stats   model.DailyStats
	// FinalSoCKWh is the energy left in the battery at the end of the day.
	FinalSoCKWh float64
}

// MetricsSink records simulated days for observability purposes.
type MetricsSink interface {
	RecordDay(ev DayEvent) error
}

// RunEvent summarises a completed simulation run.
type RunEvent struct {
	RunID    string
	Period   model.PeriodStats
	Duration time.Duration
	Workers  int
	Time     time.Time
}

// RunRecorder records run summaries.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// SamplesEvent carries the per-interval trace of one day.
type SamplesEvent struct {
	RunID       string
	Day         string
	Production  model.PowerSeries
	Consumption model.PowerSeries
	Samples     []model.DispatchSample
}

// SampleRecorder is implemented by sinks able to store interval traces.
type SampleRecorder interface {
	RecordSamples(ev SamplesEvent) error
}

// FailureEvent reports a day that could not be simulated.
type FailureEvent struct {
	RunID string
	Day   string
	Err   error
	Time  time.Time
}

// FailureRecorder records simulation failures.
type FailureRecorder interface {
	RecordFailure(ev FailureEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDay(DayEvent) error         { return nil }
func (NopSink) RecordRun(RunEvent) error         { return nil }
func (NopSink) RecordSamples(SamplesEvent) error { return nil }
func (NopSink) RecordFailure(FailureEvent) error { return nil }
