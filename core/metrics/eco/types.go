// Package eco derives environmental indicators from daily energy figures.
package eco

import (
	"time"

	"github.com/kilianp07/pvsim/core/model"
)

// Record holds the grid-facing energy of one simulated day.
type Record struct {
	Day             string
	Date            time.Time
	SelfConsumedKWh float64
	InjectedKWh     float64
	ImportedKWh     float64
	ConsumedKWh     float64
}

// FromStats builds a Record from daily statistics.
func FromStats(day string, date time.Time, st model.DailyStats) Record {
	return Record{
		Day:             day,
		Date:            Day(date),
		SelfConsumedKWh: st.SelfConsumedKWh,
		InjectedKWh:     st.InjectedKWh,
		ImportedKWh:     st.ImportedKWh,
		ConsumedKWh:     st.ConsumptionTotalKWh,
	}
}

// CO2Avoided returns the grams of CO2 not drawn from the grid given an
// emission factor in gCO2/kWh.
func (r Record) CO2Avoided(factor float64) float64 {
	return r.SelfConsumedKWh * factor
}

// Autonomy is the share of consumption not imported from the grid, in [0, 1].
func (r Record) Autonomy() float64 {
	if r.ConsumedKWh <= 0 {
		return 0
	}
	a := 1 - r.ImportedKWh/r.ConsumedKWh
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}

// Day aligns t to the start of its day, keeping its location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
