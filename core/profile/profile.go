// Package profile generates synthetic production and consumption series.
//
// Every generator is deterministic for a given seed so that runs can be
// reproduced and compared.
package profile

import (
	"math"
	"math/rand"
	"time"

	"github.com/kilianp07/pvsim/core/model"
)

// Generator produces a power value for every timestamp of a timeline.
type Generator interface {
	Generate(timeline []time.Time, stepHours float64) model.PowerSeries
}

// Timeline returns contiguous timestamps from start up to and including end.
func Timeline(start, end time.Time, step time.Duration) []time.Time {
	if step <= 0 || end.Before(start) {
		return nil
	}
	var out []time.Time
	for t := start; !t.After(end); t = t.Add(step) {
		out = append(out, t)
	}
	return out
}

// Year returns the timeline covering a whole calendar year in loc.
func Year(year int, loc *time.Location, step time.Duration) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc).Add(-step)
	return Timeline(start, end, step)
}

// Noise is a multiplicative gaussian factor clipped to [Min, Max].
type Noise struct {
	Sigma float64
	Min   float64
	Max   float64
}

func (n Noise) draw(r *rand.Rand) float64 {
	if n.Sigma == 0 {
		return 1
	}
	v := 1 + n.Sigma*r.NormFloat64()
	return math.Min(math.Max(v, n.Min), n.Max)
}

func hourOf(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

func build(timeline []time.Time, stepHours float64, f func(t time.Time) float64) model.PowerSeries {
	s := model.PowerSeries{TimeStepHours: stepHours, Samples: make([]model.Sample, len(timeline))}
	for i, t := range timeline {
		s.Samples[i] = model.Sample{Timestamp: t, PowerKW: f(t)}
	}
	return s
}
