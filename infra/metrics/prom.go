package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/pvsim/core/metrics"
)

// PromSink exposes simulated days and runs as Prometheus metrics.
type PromSink struct {
	selfConsumption *prometheus.GaugeVec
	energy          *prometheus.GaugeVec
	gridBalance     *prometheus.GaugeVec
	finalSoC        *prometheus.GaugeVec
	days            prometheus.Counter
	failures        prometheus.Counter
	runDuration     prometheus.Histogram
}

// NewPromSink registers simulation metrics on the default Prometheus registerer.
// The HTTP endpoint is served separately, see StartPromServer.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		selfConsumption: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pvsim_self_consumption_percent",
			Help: "Share of consumption covered by local production",
		}, []string{"day"}),
		energy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pvsim_energy_kwh",
			Help: "Daily energy per flow",
		}, []string{"day", "flow"}),
		gridBalance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pvsim_grid_balance_kwh",
			Help: "Net daily grid exchange, positive when exporting",
		}, []string{"day"}),
		finalSoC: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pvsim_final_soc_kwh",
			Help: "Battery energy left at the end of the day",
		}, []string{"day"}),
		days: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pvsim_days_simulated_total",
			Help: "Total number of simulated days",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pvsim_day_failures_total",
			Help: "Total number of days that failed to simulate",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pvsim_run_duration_seconds",
			Help:    "Wall time of simulation runs",
			Buckets: prometheus.DefBuckets,
		}),
	}
	var err error
	if s.selfConsumption, err = register(reg, s.selfConsumption); err != nil {
		return nil, err
	}
	if s.energy, err = register(reg, s.energy); err != nil {
		return nil, err
	}
	if s.gridBalance, err = register(reg, s.gridBalance); err != nil {
		return nil, err
	}
	if s.finalSoC, err = register(reg, s.finalSoC); err != nil {
		return nil, err
	}
	if s.days, err = register(reg, s.days); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, s.failures); err != nil {
		return nil, err
	}
	if s.runDuration, err = register(reg, s.runDuration); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when an identical one
// exists so that several sinks can share a registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDay sets the per-day gauges and counts the day.
func (s *PromSink) RecordDay(ev coremetrics.DayEvent) error {
	st := ev.Stats
	s.selfConsumption.WithLabelValues(ev.Day).Set(st.SelfConsumptionPct)
	s.energy.WithLabelValues(ev.Day, "production").Set(st.ProductionTotalKWh)
	s.energy.WithLabelValues(ev.Day, "consumption").Set(st.ConsumptionTotalKWh)
	s.energy.WithLabelValues(ev.Day, "injected").Set(st.InjectedKWh)
	s.energy.WithLabelValues(ev.Day, "imported").Set(st.ImportedKWh)
	s.energy.WithLabelValues(ev.Day, "self_consumed").Set(st.SelfConsumedKWh)
	s.gridBalance.WithLabelValues(ev.Day).Set(st.GridBalanceKWh)
	s.finalSoC.WithLabelValues(ev.Day).Set(ev.FinalSoCKWh)
	s.days.Inc()
	return nil
}

// RecordRun observes the run duration.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runDuration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordFailure counts a failed day.
func (s *PromSink) RecordFailure(coremetrics.FailureEvent) error {
	s.failures.Inc()
	return nil
}
