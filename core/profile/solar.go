package profile

import (
	"math"
	"math/rand"
	"time"

	"github.com/sixdouglas/suncalc"

	"github.com/kilianp07/pvsim/core/model"
)

// DefaultSolarNoise models passing clouds.
var DefaultSolarNoise = Noise{Sigma: 0.15, Min: 0.3, Max: 1.2}

// GaussianSolar is a bell-shaped daily curve centred on solar noon, scaled by
// a cosine seasonal factor peaking at the summer solstice.
type GaussianSolar struct {
	PeakKW float64
	Seed   int64
	Noise  Noise
}

// NewGaussianSolar returns a generator with the default noise model.
func NewGaussianSolar(peakKW float64, seed int64) GaussianSolar {
	return GaussianSolar{PeakKW: peakKW, Seed: seed, Noise: DefaultSolarNoise}
}

// Generate implements Generator.
func (g GaussianSolar) Generate(timeline []time.Time, stepHours float64) model.PowerSeries {
	r := rand.New(rand.NewSource(g.Seed))
	return build(timeline, stepHours, func(t time.Time) float64 {
		season := 0.5 + 0.5*math.Cos(2*math.Pi*float64(t.YearDay()-172)/365)
		h := hourOf(t)
		p := g.PeakKW * season * math.Exp(-(h-12)*(h-12)/18) * g.Noise.draw(r)
		if h < 6 || h > 20 {
			return 0
		}
		return math.Max(p, 0)
	})
}

// SunSolar derives production from the sun altitude at a location.
type SunSolar struct {
	PeakKW    float64
	Latitude  float64
	Longitude float64
	Seed      int64
	Noise     Noise
}

// NewSunSolar returns a generator with the default noise model.
func NewSunSolar(peakKW, lat, lon float64, seed int64) SunSolar {
	return SunSolar{PeakKW: peakKW, Latitude: lat, Longitude: lon, Seed: seed, Noise: DefaultSolarNoise}
}

// Generate implements Generator.
func (g SunSolar) Generate(timeline []time.Time, stepHours float64) model.PowerSeries {
	r := rand.New(rand.NewSource(g.Seed))
	return build(timeline, stepHours, func(t time.Time) float64 {
		noise := g.Noise.draw(r)
		// sample at mid-interval so the average power is represented
		mid := t.Add(model.HoursToDuration(stepHours / 2))
		alt := suncalc.GetPosition(mid, g.Latitude, g.Longitude).Altitude
		if alt <= 0 {
			return 0
		}
		return g.PeakKW * math.Sin(alt) * noise
	})
}
