package events

import (
	"time"

	"github.com/kilianp07/pvsim/core/model"
)

// DayCompleted is published once a day has been simulated and stored.
type DayCompleted struct {
	RunID       string           `json:"run_id"`
	Day         string           `json:"day"`
	Stats       model.DailyStats `json:"stats"`
	FinalSoCKWh float64          `json:"final_soc_kwh"`
}

// DayFailed is published when simulating a day returned an error.
type DayFailed struct {
	RunID string `json:"run_id"`
	Day   string `json:"day"`
	Err   error  `json:"-"`
}

// RunCompleted is published at the end of a run.
type RunCompleted struct {
	RunID    string            `json:"run_id"`
	Period   model.PeriodStats `json:"period"`
	Duration time.Duration     `json:"duration_ns"`
}
