// Package export writes series, dispatch ledgers and run summaries to files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/series"
)

// TimestampLayout matches the layout read back by the CSV source.
const TimestampLayout = "2006-01-02 15:04:05"

func ff(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func stamp(s model.Sample, i int) string {
	if s.Timestamp.IsZero() {
		return strconv.Itoa(i)
	}
	return s.Timestamp.Format(TimestampLayout)
}

// WriteSeriesCSV writes s as timestamp,<column> rows.
func WriteSeriesCSV(w io.Writer, s model.PowerSeries, column string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", column}); err != nil {
		return err
	}
	for i, p := range s.Samples {
		if err := cw.Write([]string{stamp(p, i), ff(p.PowerKW)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSamplesCSV writes the interval ledger of a simulated day.
func WriteSamplesCSV(w io.Writer, production, consumption model.PowerSeries, samples []model.DispatchSample) error {
	if len(production.Samples) != len(samples) || len(consumption.Samples) != len(samples) {
		return fmt.Errorf("ledger needs %d production and consumption samples, got %d and %d",
			len(samples), len(production.Samples), len(consumption.Samples))
	}
	cw := csv.NewWriter(w)
	header := []string{"timestamp", "production_kw", "consumption_kw", "battery_kw", "soc_percent", "grid_kw"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, s := range samples {
		rec := []string{
			stamp(production.Samples[i], i),
			ff(production.Samples[i].PowerKW),
			ff(consumption.Samples[i].PowerKW),
			ff(s.BatteryPowerKW),
			ff(s.SoCPercent),
			ff(s.GridPowerKW),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReportsJSON writes v as indented JSON.
func WriteReportsJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteMetadata writes the scaling metadata of a generated data set.
func WriteMetadata(w io.Writer, meta series.ScaleMetadata) error {
	return WriteReportsJSON(w, meta)
}
