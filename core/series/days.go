package series

import (
	"time"

	"github.com/kilianp07/pvsim/core/model"
)

// DayLayout formats day keys.
const DayLayout = "2006-01-02"

// Day is one calendar day of aligned production and consumption.
type Day struct {
	Key         string
	Date        time.Time
	Production  model.PowerSeries
	Consumption model.PowerSeries
}

// DayKey returns the calendar day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// SplitDays cuts aligned series at calendar-day boundaries in loc.
// Positional series without timestamps come back as a single day with an
// empty key.
func SplitDays(production, consumption model.PowerSeries, loc *time.Location) ([]Day, error) {
	if err := CheckAligned(production, consumption); err != nil {
		return nil, err
	}
	first := TimestampAt(0, production, consumption)
	if first.IsZero() {
		return []Day{{Production: production, Consumption: consumption}}, nil
	}
	n := len(production.Samples)
	var days []Day
	start, key, date := 0, DayKey(first, loc), StartOfDay(first, loc)
	for i := 1; i <= n; i++ {
		k := key
		var ts time.Time
		if i < n {
			if ts = TimestampAt(i, production, consumption); !ts.IsZero() {
				k = DayKey(ts, loc)
			}
		}
		if i < n && k == key {
			continue
		}
		days = append(days, Day{
			Key:         key,
			Date:        date,
			Production:  production.Slice(start, i),
			Consumption: consumption.Slice(start, i),
		})
		if i < n {
			start, key, date = i, k, StartOfDay(ts, loc)
		}
	}
	return days, nil
}

// FilterDay keeps the samples of s falling on the given day key.
func FilterDay(s model.PowerSeries, key string, loc *time.Location) model.PowerSeries {
	out := model.PowerSeries{TimeStepHours: s.TimeStepHours}
	for _, p := range s.Samples {
		if DayKey(p.Timestamp, loc) == key {
			out.Samples = append(out.Samples, p)
		}
	}
	return out
}
