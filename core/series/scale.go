package series

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/pvsim/core/model"
)

// ScaleMetadata documents how a production series was rescaled.
type ScaleMetadata struct {
	ScaleFactor            float64   `json:"scale_factor"`
	AvgDailyProductionKWh  float64   `json:"avg_daily_production_kwh"`
	AvgDailyConsumptionKWh float64   `json:"avg_daily_consumption_kwh"`
	ProductionRecords      int       `json:"production_records"`
	ConsumptionRecords     int       `json:"consumption_records"`
	DateStart              string    `json:"date_start"`
	DateEnd                string    `json:"date_end"`
	GeneratedAt            time.Time `json:"generation_date"`
	Latitude               float64   `json:"latitude,omitempty"`
	Longitude              float64   `json:"longitude,omitempty"`
	Year                   int       `json:"year,omitempty"`
}

// DailyEnergy integrates s per calendar day in loc, in kWh.
func DailyEnergy(s model.PowerSeries, loc *time.Location) map[string]float64 {
	out := make(map[string]float64)
	for _, p := range s.Samples {
		out[DayKey(p.Timestamp, loc)] += p.PowerKW * s.TimeStepHours
	}
	return out
}

func meanDaily(s model.PowerSeries, loc *time.Location) (float64, []string) {
	daily := DailyEnergy(s, loc)
	if len(daily) == 0 {
		return 0, nil
	}
	keys := make([]string, 0, len(daily))
	vals := make([]float64, 0, len(daily))
	for k, v := range daily {
		keys = append(keys, k)
		vals = append(vals, v)
	}
	sort.Strings(keys)
	return floats.Sum(vals) / float64(len(vals)), keys
}

// ScaleToMatch rescales production so that its mean daily energy equals the
// mean daily energy of consumption.
func ScaleToMatch(production, consumption model.PowerSeries, loc *time.Location) (model.PowerSeries, ScaleMetadata, error) {
	if len(production.Samples) == 0 || len(consumption.Samples) == 0 {
		return model.PowerSeries{}, ScaleMetadata{}, model.ErrEmptySeries
	}
	prodMean, prodDays := meanDaily(production, loc)
	consMean, _ := meanDaily(consumption, loc)
	if prodMean <= 0 {
		return model.PowerSeries{}, ScaleMetadata{}, fmt.Errorf("scale: production averages %v kWh/day", prodMean)
	}
	factor := consMean / prodMean
	meta := ScaleMetadata{
		ScaleFactor:            factor,
		AvgDailyProductionKWh:  prodMean,
		AvgDailyConsumptionKWh: consMean,
		ProductionRecords:      len(production.Samples),
		ConsumptionRecords:     len(consumption.Samples),
		DateStart:              prodDays[0],
		DateEnd:                prodDays[len(prodDays)-1],
		GeneratedAt:            time.Now().UTC(),
	}
	return Scale(production, factor), meta, nil
}
