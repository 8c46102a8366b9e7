package series

import (
	"math"
	"time"

	"github.com/kilianp07/pvsim/core/model"
)

// Interpolate resamples s onto a finer step by linear interpolation between
// consecutive samples. Each source interval yields the same number of target
// samples; the last interval holds its value.
func Interpolate(s model.PowerSeries, stepHours float64) (model.PowerSeries, error) {
	if err := CheckStep("source", s); err != nil {
		return model.PowerSeries{}, err
	}
	target := model.PowerSeries{TimeStepHours: stepHours}
	if err := CheckStep("target", target); err != nil {
		return model.PowerSeries{}, err
	}
	ratio := s.TimeStepHours / stepHours
	k := int(math.Round(ratio))
	if k < 1 || math.Abs(ratio-float64(k)) > 1e-6 {
		return model.PowerSeries{}, model.Invalid(model.ConstraintTimeStep,
			"source step %v h is not a whole multiple of %v h", s.TimeStepHours, stepHours)
	}
	n := len(s.Samples)
	if n == 0 {
		return target, nil
	}
	step := model.HoursToDuration(stepHours)
	target.Samples = make([]model.Sample, 0, n*k)
	for i, cur := range s.Samples {
		next := cur.PowerKW
		if i+1 < n {
			next = s.Samples[i+1].PowerKW
		}
		for j := 0; j < k; j++ {
			frac := float64(j) / float64(k)
			p := model.Sample{PowerKW: cur.PowerKW + (next-cur.PowerKW)*frac}
			if !cur.Timestamp.IsZero() {
				p.Timestamp = cur.Timestamp.Add(time.Duration(j) * step)
			}
			target.Samples = append(target.Samples, p)
		}
	}
	return target, nil
}

// Scale multiplies every sample of s by factor.
func Scale(s model.PowerSeries, factor float64) model.PowerSeries {
	out := model.PowerSeries{TimeStepHours: s.TimeStepHours, Samples: make([]model.Sample, len(s.Samples))}
	for i, p := range s.Samples {
		out.Samples[i] = model.Sample{Timestamp: p.Timestamp, PowerKW: p.PowerKW * factor}
	}
	return out
}
