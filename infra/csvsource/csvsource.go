// Package csvsource reads power series from timestamp,power_kw CSV files.
//
// Expected format:
//
//	timestamp,production_kw
//	2024-06-01 00:00:00,0.0
//	2024-06-01 00:15:00,0.0
//
// Timestamps use the 2006-01-02 15:04:05 layout in the configured location,
// or RFC3339. Blank, malformed and NaN rows are skipped.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/series"
	"github.com/kilianp07/pvsim/infra/logger"
)

// TimestampLayout is the naive timestamp layout written by the exporters.
const TimestampLayout = "2006-01-02 15:04:05"

// Options controls how a file is read.
type Options struct {
	// Date keeps only the samples of this day (YYYY-MM-DD) when set.
	Date string
	// Location interprets naive timestamps and day boundaries. Defaults to UTC.
	Location *time.Location
	// TimeStepHours overrides the step inferred from the first two samples.
	TimeStepHours float64
	Logger        logger.Logger
}

// ErrNoData is returned when no usable row remains.
var ErrNoData = errors.New("csv contains no usable rows")

// ReadSeries parses r into a power series.
func ReadSeries(r io.Reader, opts Options) (model.PowerSeries, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger{}
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out model.PowerSeries
	skipped := 0
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				log.Debugf("line %d: %v", line, err)
				skipped++
				continue
			}
			return model.PowerSeries{}, fmt.Errorf("reading CSV line %d: %w", line, err)
		}
		s, err := parseRecord(rec, loc)
		if err != nil {
			if line > 1 {
				log.Debugf("line %d: %v", line, err)
				skipped++
			}
			continue
		}
		out.Samples = append(out.Samples, s)
	}
	if skipped > 0 {
		log.Warnf("skipped %d malformed row(s)", skipped)
	}
	if len(out.Samples) == 0 {
		return model.PowerSeries{}, ErrNoData
	}

	out.TimeStepHours = opts.TimeStepHours
	if out.TimeStepHours <= 0 {
		if len(out.Samples) < 2 {
			return model.PowerSeries{}, model.Invalid(model.ConstraintTimeStep, "cannot infer the time step from a single row")
		}
		out.TimeStepHours = out.Samples[1].Timestamp.Sub(out.Samples[0].Timestamp).Hours()
	}
	if err := series.CheckStep("csv", out); err != nil {
		return model.PowerSeries{}, err
	}
	if err := series.CheckOrder("csv", out); err != nil {
		return model.PowerSeries{}, err
	}
	if err := series.CheckContiguous("csv", out); err != nil {
		return model.PowerSeries{}, err
	}
	if opts.Date != "" {
		out = series.FilterDay(out, opts.Date, loc)
		if len(out.Samples) == 0 {
			return model.PowerSeries{}, ErrNoData
		}
	}
	return out, nil
}

func parseRecord(rec []string, loc *time.Location) (model.Sample, error) {
	if len(rec) < 2 {
		return model.Sample{}, fmt.Errorf("expected 2 fields, got %d", len(rec))
	}
	ts, err := ParseTimestamp(strings.TrimSpace(rec[0]), loc)
	if err != nil {
		return model.Sample{}, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return model.Sample{}, fmt.Errorf("parsing value %q: %w", rec[1], err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return model.Sample{}, fmt.Errorf("value %q is not finite", rec[1])
	}
	return model.Sample{Timestamp: ts, PowerKW: v}, nil
}

// ParseTimestamp accepts the naive layout in loc or RFC3339.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if ts, err := time.ParseInLocation(TimestampLayout, s, loc); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return ts, nil
}

// LoadFile reads the series stored at path.
func LoadFile(path string, opts Options) (model.PowerSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.PowerSeries{}, err
	}
	defer func() { _ = f.Close() }()
	s, err := ReadSeries(f, opts)
	if err != nil {
		return model.PowerSeries{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
