// Package series holds validation and shaping helpers shared by the
// simulator, the aggregator and the data sources.
package series

import (
	"math"
	"time"

	"github.com/kilianp07/pvsim/core/model"
)

const (
	stepTolerance = 1e-9
	// gapTolerance is relative to the step and absorbs steps typed with few
	// decimals, e.g. 0.0833 h.
	gapTolerance = 1e-3
)

// CheckStep verifies that s has a usable time step.
func CheckStep(name string, s model.PowerSeries) error {
	h := s.TimeStepHours
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return model.Invalid(model.ConstraintTimeStep, "%s time step %v h must be > 0", name, h)
	}
	return nil
}

// CheckFinite rejects NaN and infinite power values.
func CheckFinite(name string, s model.PowerSeries) error {
	for i, p := range s.Samples {
		if math.IsNaN(p.PowerKW) || math.IsInf(p.PowerKW, 0) {
			return model.Invalid(model.ConstraintValue, "%s sample %d is %v", name, i, p.PowerKW)
		}
	}
	return nil
}

// CheckOrder rejects timestamps that do not strictly increase.
// Series without timestamps are accepted.
func CheckOrder(name string, s model.PowerSeries) error {
	for i := 1; i < len(s.Samples); i++ {
		prev, cur := s.Samples[i-1].Timestamp, s.Samples[i].Timestamp
		if prev.IsZero() || cur.IsZero() {
			continue
		}
		if !cur.After(prev) {
			return model.Invalid(model.ConstraintOrder, "%s sample %d at %s is not after %s",
				name, i, cur.Format("2006-01-02 15:04:05"), prev.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

// CheckContiguous rejects gaps inside a calendar day: consecutive samples of
// the same day must be exactly one time step apart. Day changes are only
// checked for order, so a series may skip whole days.
func CheckContiguous(name string, s model.PowerSeries) error {
	for i := 1; i < len(s.Samples); i++ {
		prev, cur := s.Samples[i-1].Timestamp, s.Samples[i].Timestamp
		if prev.IsZero() || cur.IsZero() || !sameDay(prev, cur) {
			continue
		}
		gap := cur.Sub(prev).Hours()
		if math.Abs(gap-s.TimeStepHours) > gapTolerance*s.TimeStepHours {
			return model.Invalid(model.ConstraintGap, "%s sample %d at %s is %v h after the previous one, step is %v h",
				name, i, cur.Format("2006-01-02 15:04:05"), gap, s.TimeStepHours)
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// CheckAligned validates that production and consumption can be simulated
// together. Samples are compared by position; when both sides carry a
// timestamp they must be equal. Timestamped series must also be ordered and
// contiguous within each day.
func CheckAligned(production, consumption model.PowerSeries) error {
	if len(production.Samples) == 0 || len(consumption.Samples) == 0 {
		return model.Invalid(model.ConstraintEmpty, "production has %d samples, consumption has %d",
			len(production.Samples), len(consumption.Samples))
	}
	if len(production.Samples) != len(consumption.Samples) {
		return model.Invalid(model.ConstraintLength, "production has %d samples, consumption has %d",
			len(production.Samples), len(consumption.Samples))
	}
	if err := CheckStep("production", production); err != nil {
		return err
	}
	if err := CheckStep("consumption", consumption); err != nil {
		return err
	}
	if math.Abs(production.TimeStepHours-consumption.TimeStepHours) > stepTolerance {
		return model.Invalid(model.ConstraintTimeStep, "production step %v h differs from consumption step %v h",
			production.TimeStepHours, consumption.TimeStepHours)
	}
	for i := range production.Samples {
		pt, ct := production.Samples[i].Timestamp, consumption.Samples[i].Timestamp
		if pt.IsZero() || ct.IsZero() {
			continue
		}
		if !pt.Equal(ct) {
			return model.Invalid(model.ConstraintTimestamps, "sample %d: production at %s, consumption at %s",
				i, pt.Format("2006-01-02 15:04:05"), ct.Format("2006-01-02 15:04:05"))
		}
	}
	for _, named := range []struct {
		name string
		s    model.PowerSeries
	}{{"production", production}, {"consumption", consumption}} {
		if err := CheckOrder(named.name, named.s); err != nil {
			return err
		}
		if err := CheckContiguous(named.name, named.s); err != nil {
			return err
		}
	}
	if err := CheckFinite("production", production); err != nil {
		return err
	}
	return CheckFinite("consumption", consumption)
}

// TimestampAt returns the timestamp of sample i, preferring the first series
// that carries one.
func TimestampAt(i int, all ...model.PowerSeries) time.Time {
	for _, s := range all {
		if i < len(s.Samples) && !s.Samples[i].Timestamp.IsZero() {
			return s.Samples[i].Timestamp
		}
	}
	return time.Time{}
}
