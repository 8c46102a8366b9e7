package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	core "github.com/kilianp07/pvsim/core/metrics"
	eco "github.com/kilianp07/pvsim/core/metrics/eco"
)

// DefaultEmissionFactor is the average carbon intensity of the French grid
// in gCO2/kWh.
const DefaultEmissionFactor = 52.0

// EcoSink records simulated days as ecological KPIs.
type EcoSink struct {
	factor   float64
	autonomy *prometheus.GaugeVec
	co2      *prometheus.GaugeVec

	mu   sync.Mutex
	last map[string]eco.Record
}

// NewEcoSink creates a sink with Prometheus gauges registered on reg.
func NewEcoSink(factor float64, reg prometheus.Registerer) (*EcoSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if factor <= 0 {
		factor = DefaultEmissionFactor
	}
	autonomy, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pvsim_autonomy_ratio",
		Help: "Daily share of consumption not imported from the grid",
	}, []string{"day"}))
	if err != nil {
		return nil, err
	}
	co2, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pvsim_co2_avoided_grams",
		Help: "Daily CO2 avoided by self-consumed production",
	}, []string{"day"}))
	if err != nil {
		return nil, err
	}
	return &EcoSink{factor: factor, autonomy: autonomy, co2: co2, last: make(map[string]eco.Record)}, nil
}

// RecordDay updates the KPIs of the simulated day.
func (s *EcoSink) RecordDay(ev core.DayEvent) error {
	rec := eco.FromStats(ev.Day, ev.Date, ev.Stats)
	s.mu.Lock()
	s.last[ev.Day] = rec
	s.mu.Unlock()
	s.autonomy.WithLabelValues(ev.Day).Set(rec.Autonomy())
	s.co2.WithLabelValues(ev.Day).Set(rec.CO2Avoided(s.factor))
	return nil
}

// Record returns the last KPI record of the given day.
func (s *EcoSink) Record(day string) (eco.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.last[day]
	return r, ok
}
