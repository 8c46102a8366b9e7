package scenarios

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/pvsim/core/engine"
	coremetrics "github.com/kilianp07/pvsim/core/metrics"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/report"
	"github.com/kilianp07/pvsim/infra/logger"
	"github.com/kilianp07/pvsim/infra/metrics"
	"github.com/kilianp07/pvsim/infra/mqtt"
	"github.com/kilianp07/pvsim/internal/eventbus"
)

// RunScenario simulates sc through a fully wired engine and reports every
// mismatch on t.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	mode, err := sc.Reporting()
	if err != nil {
		t.Fatalf("reporting: %v", err)
	}
	store := report.NewMemoryStore()
	pub := mqtt.NewMockPublisher()
	eng := engine.New(engine.Options{
		Workers:      1,
		SoCReporting: mode,
		Store:        store,
		Sink:         sink,
		Bus:          eventbus.New(),
		Publisher:    pub,
		Logger:       logger.NopLogger{},
	})

	prod := model.NewSeries(time.Time{}, sc.TimeStepHours, sc.Production)
	cons := model.NewSeries(time.Time{}, sc.TimeStepHours, sc.Consumption)
	battery := sc.Battery.ToModel()
	res, err := eng.Run(context.Background(), prod, cons, battery)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Days) != 1 {
		t.Fatalf("expected one day, got %d", len(res.Days))
	}
	day := res.Days[0]
	exp := sc.Expected
	tol := exp.Tolerance

	trace := func(name string, want []float64, get func(model.DispatchSample) float64) {
		if len(want) == 0 {
			return
		}
		if len(want) != len(day.Samples) {
			t.Errorf("%s: expected %d values, got %d samples", name, len(want), len(day.Samples))
			return
		}
		for i, w := range want {
			if got := get(day.Samples[i]); math.Abs(got-w) > tol {
				t.Errorf("%s[%d] = %v, want %v", name, i, got, w)
			}
		}
	}
	trace("grid", exp.Grid, func(s model.DispatchSample) float64 { return s.GridPowerKW })
	trace("battery", exp.Battery, func(s model.DispatchSample) float64 { return s.BatteryPowerKW })
	trace("soc_percent", exp.SoCPercent, func(s model.DispatchSample) float64 { return s.SoCPercent })
	if exp.FinalSoCKWh != nil && math.Abs(day.FinalSoCKWh-*exp.FinalSoCKWh) > tol {
		t.Errorf("final soc %v kWh, want %v", day.FinalSoCKWh, *exp.FinalSoCKWh)
	}
	if exp.SelfConsumptionPct != nil && math.Abs(day.Stats.SelfConsumptionPct-*exp.SelfConsumptionPct) > tol {
		t.Errorf("self-consumption %v %%, want %v", day.Stats.SelfConsumptionPct, *exp.SelfConsumptionPct)
	}

	checkProperties(t, sc, battery, day.Samples)

	recs, err := store.Query(context.Background(), report.Query{RunID: res.RunID})
	if err != nil || len(recs) != 1 {
		t.Errorf("expected one stored record, got %d (%v)", len(recs), err)
	}
	if pub.Count() != 1 {
		t.Errorf("expected one published report, got %d", pub.Count())
	}
	if got := counterValue(t, reg, "pvsim_days_simulated_total"); got != 1 {
		t.Errorf("days simulated counter = %v", got)
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

// checkProperties verifies conservation, SOC bounds and that the battery
// never moves more energy than the interval's surplus or deficit.
func checkProperties(t *testing.T, sc *Scenario, battery model.BatteryConfig, samples []model.DispatchSample) {
	t.Helper()
	const eps = 1e-9
	for i, s := range samples {
		net := sc.Production[i] - sc.Consumption[i]
		if d := net + s.BatteryPowerKW - s.GridPowerKW; math.Abs(d) > eps {
			t.Errorf("sample %d: energy not conserved (%v kW)", i, d)
		}
		if net > 0 && (s.BatteryPowerKW > eps || s.BatteryPowerKW < -net-eps) {
			t.Errorf("sample %d: battery %v kW outside [-%v, 0]", i, s.BatteryPowerKW, net)
		}
		if net <= 0 && (s.BatteryPowerKW < -eps || s.BatteryPowerKW > -net+eps) {
			t.Errorf("sample %d: battery %v kW outside [0, %v]", i, s.BatteryPowerKW, -net)
		}
		if battery.CapacityKWh == 0 {
			if s.BatteryPowerKW != 0 || s.SoCPercent != 0 {
				t.Errorf("sample %d: battery-less site reports %v kW at %v %%", i, s.BatteryPowerKW, s.SoCPercent)
			}
			continue
		}
		lo, hi := battery.MinSoCFraction*100, battery.MaxSoCFraction*100
		if s.SoCPercent < lo-eps || s.SoCPercent > hi+eps {
			t.Errorf("sample %d: soc %v %% outside [%v, %v]", i, s.SoCPercent, lo, hi)
		}
	}
}
