package profile

import (
	"math"
	"math/rand"
	"time"

	"github.com/kilianp07/pvsim/core/model"
)

const (
	residentialFloorKW  = 5
	appliancePeakChance = 0.05
	appliancePeakFactor = 1.5
	weekendFactor       = 0.85
)

// DefaultResidentialNoise is the household variability model.
var DefaultResidentialNoise = Noise{Sigma: 0.1, Min: 0.7, Max: 1.3}

// Residential models the load of a neighbourhood of homes with morning and
// evening peaks, heating in winter and cooling in summer.
type Residential struct {
	Homes         int
	BaseKWPerHome float64
	Seed          int64
	Noise         Noise
}

// NewResidential returns a generator with the default noise model.
func NewResidential(homes int, baseKW float64, seed int64) Residential {
	return Residential{Homes: homes, BaseKWPerHome: baseKW, Seed: seed, Noise: DefaultResidentialNoise}
}

// Generate implements Generator.
func (g Residential) Generate(timeline []time.Time, stepHours float64) model.PowerSeries {
	r := rand.New(rand.NewSource(g.Seed))
	base := g.BaseKWPerHome * float64(g.Homes)
	return build(timeline, stepHours, func(t time.Time) float64 {
		h := float64(t.Hour())
		p := base * dailyShape(h) * seasonal(t.Month())
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			p *= weekendFactor
		}
		p *= g.Noise.draw(r)
		if r.Float64() < appliancePeakChance {
			p *= appliancePeakFactor
		}
		return math.Max(p, residentialFloorKW)
	})
}

func dailyShape(h float64) float64 {
	morning := math.Exp(-(h - 8) * (h - 8) / 4)
	evening := 1.5 * math.Exp(-(h-19)*(h-19)/6)
	night := 0.3 + 0.2*math.Exp(-(h-3)*(h-3)/8)
	return math.Max(morning, math.Max(evening, night))
}

func seasonal(m time.Month) float64 {
	switch m {
	case time.January, time.February, time.March, time.November, time.December:
		return 2.5
	case time.June, time.July, time.August:
		return 1.8
	default:
		return 1
	}
}
