// Package ecokpi recomputes environmental indicators from stored reports.
package ecokpi

import (
	"context"

	"github.com/kilianp07/pvsim/core/metrics/eco"
	"github.com/kilianp07/pvsim/core/report"
)

// Day is the eco record of one stored report with its derived indicators.
type Day struct {
	RunID       string     `json:"run_id"`
	Record      eco.Record `json:"record"`
	CO2Grams    float64    `json:"co2_avoided_grams"`
	AutonomyPct float64    `json:"autonomy_pct"`
}

// Summary aggregates the backfilled days.
type Summary struct {
	Days        []Day   `json:"days"`
	CO2Grams    float64 `json:"co2_avoided_grams"`
	AutonomyPct float64 `json:"autonomy_pct"`
}

// Backfill derives eco indicators for every report matching q. The period
// autonomy is weighted by consumption.
func Backfill(ctx context.Context, store report.Store, q report.Query, factor float64) (Summary, error) {
	recs, err := store.Query(ctx, q)
	if err != nil {
		return Summary{}, err
	}
	var sum Summary
	var total eco.Record
	for _, r := range recs {
		rec := eco.FromStats(r.Day, r.Date, r.Stats)
		d := Day{
			RunID:       r.RunID,
			Record:      rec,
			CO2Grams:    rec.CO2Avoided(factor),
			AutonomyPct: rec.Autonomy() * 100,
		}
		sum.Days = append(sum.Days, d)
		sum.CO2Grams += d.CO2Grams
		total.ConsumedKWh += rec.ConsumedKWh
		total.ImportedKWh += rec.ImportedKWh
	}
	sum.AutonomyPct = total.Autonomy() * 100
	return sum, nil
}
