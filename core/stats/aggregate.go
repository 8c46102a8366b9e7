// Package stats derives daily and period energy figures from simulated days.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/series"
)

// Aggregate computes the statistics of one day from its raw series and the
// simulated grid exchange.
func Aggregate(production, consumption model.PowerSeries, grid []float64) (model.DailyStats, error) {
	if len(production.Samples) == 0 || len(consumption.Samples) == 0 {
		return model.DailyStats{}, model.ErrEmptySeries
	}
	if err := series.CheckAligned(production, consumption); err != nil {
		return model.DailyStats{}, err
	}
	if len(grid) != len(production.Samples) {
		return model.DailyStats{}, model.Invalid(model.ConstraintLength,
			"grid has %d samples, production has %d", len(grid), len(production.Samples))
	}

	step := production.TimeStepHours
	prod := production.Values()
	cons := consumption.Values()
	pi := floats.MaxIdx(prod)
	ci := floats.MaxIdx(cons)

	var injected, imported float64
	for _, g := range grid {
		if g > 0 {
			injected += g
		} else {
			imported -= g
		}
	}

	st := model.DailyStats{
		ProductionTotalKWh:  floats.Sum(prod) * step,
		ConsumptionTotalKWh: floats.Sum(cons) * step,
		ProductionMaxKW:     prod[pi],
		ProductionMaxAt:     series.TimestampAt(pi, production, consumption),
		ConsumptionMaxKW:    cons[ci],
		ConsumptionMaxAt:    series.TimestampAt(ci, consumption, production),
		GridBalanceKWh:      floats.Sum(grid) * step,
		InjectedKWh:         injected * step,
		ImportedKWh:         imported * step,
	}
	st.SelfConsumedKWh = st.ProductionTotalKWh - st.InjectedKWh
	st.SelfConsumptionPct = selfConsumptionPct(st.SelfConsumedKWh, st.ConsumptionTotalKWh)
	return st, nil
}

// Summarize combines daily statistics into period totals. Self-consumption is
// weighted by energy rather than averaged across days.
func Summarize(days []model.DailyStats) model.PeriodStats {
	ps := model.PeriodStats{Days: len(days)}
	for i, d := range days {
		ps.ProductionTotalKWh += d.ProductionTotalKWh
		ps.ConsumptionTotalKWh += d.ConsumptionTotalKWh
		ps.GridBalanceKWh += d.GridBalanceKWh
		ps.InjectedKWh += d.InjectedKWh
		ps.ImportedKWh += d.ImportedKWh
		ps.SelfConsumedKWh += d.SelfConsumedKWh
		if i == 0 || d.ProductionMaxKW > ps.ProductionMaxKW {
			ps.ProductionMaxKW, ps.ProductionMaxAt = d.ProductionMaxKW, d.ProductionMaxAt
		}
		if i == 0 || d.ConsumptionMaxKW > ps.ConsumptionMaxKW {
			ps.ConsumptionMaxKW, ps.ConsumptionMaxAt = d.ConsumptionMaxKW, d.ConsumptionMaxAt
		}
	}
	ps.SelfConsumptionPct = selfConsumptionPct(ps.SelfConsumedKWh, ps.ConsumptionTotalKWh)
	return ps
}

func selfConsumptionPct(selfConsumed, consumption float64) float64 {
	if consumption <= 0 {
		return 0
	}
	return math.Max(0, math.Min(100, selfConsumed/consumption*100))
}
