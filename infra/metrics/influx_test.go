package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/pvsim/core/metrics"
	"github.com/kilianp07/pvsim/core/model"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordDay(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ev := coremetrics.DayEvent{
		RunID:   "r1",
		Day:     "2024-06-01",
		Date:    date,
		Battery: model.NewBatteryConfig(10, 0.1, 0.9),
		Stats: model.DailyStats{
			ProductionTotalKWh:  12.5,
			ConsumptionTotalKWh: 10,
			ProductionMaxKW:     4,
			ConsumptionMaxKW:    2,
			GridBalanceKWh:      1.25,
			InjectedKWh:         2.5,
			ImportedKWh:         1.25,
			SelfConsumedKWh:     10,
			SelfConsumptionPct:  100,
		},
		FinalSoCKWh: 4.12345,
	}
	if err := sink.RecordDay(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("daily_stats").
		AddTag("run_id", "r1").
		AddTag("day", "2024-06-01").
		AddField("production_kwh", 12.5).
		AddField("consumption_kwh", 10.0).
		AddField("production_max_kw", 4.0).
		AddField("consumption_max_kw", 2.0).
		AddField("grid_balance_kwh", 1.25).
		AddField("injected_kwh", 2.5).
		AddField("imported_kwh", 1.25).
		AddField("self_consumed_kwh", 10.0).
		AddField("self_consumption_pct", 100.0).
		AddField("final_soc_kwh", 4.123).
		AddField("capacity_kwh", 10.0).
		SetTime(date)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(rec.bodies) != 1 || rec.bodies[0] != expected {
		t.Errorf("unexpected bodies: %#v", rec.bodies)
	}
}

func TestInfluxSink_RecordSamples(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	prod := model.NewSeries(start, 0.25, []float64{3, 3})
	cons := model.NewSeries(start, 0.25, []float64{1, 1})
	ev := coremetrics.SamplesEvent{
		RunID:       "r1",
		Day:         "2024-06-01",
		Production:  prod,
		Consumption: cons,
		Samples: []model.DispatchSample{
			{Timestamp: start, BatteryPowerKW: -2, SoCPercent: 50},
			{Timestamp: start.Add(15 * time.Minute), BatteryPowerKW: -2, SoCPercent: 55},
		},
	}
	if err := sink.RecordSamples(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if len(rec.bodies) != 1 {
		t.Fatalf("expected one batch, got %d", len(rec.bodies))
	}
	lines := strings.Split(rec.bodies[0], "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 points, got %d", len(lines))
	}
	p := write.NewPointWithMeasurement("dispatch_sample").
		AddTag("run_id", "r1").
		AddTag("day", "2024-06-01").
		AddField("battery_kw", -2.0).
		AddField("grid_kw", 0.0).
		AddField("soc_percent", 55.0).
		AddField("production_kw", 3.0).
		AddField("consumption_kw", 1.0).
		SetTime(start.Add(15 * time.Minute))
	if lines[1] != strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond)) {
		t.Errorf("unexpected point: %s", lines[1])
	}

	// positional traces have nothing to stamp
	rec.bodies = nil
	ev.Samples = []model.DispatchSample{{BatteryPowerKW: 1}}
	if err := sink.RecordSamples(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if len(rec.bodies) != 0 {
		t.Errorf("unexpected write: %#v", rec.bodies)
	}
}

func TestInfluxSink_RecordRunAndFailure(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()

	if err := sink.RecordRun(coremetrics.RunEvent{RunID: "r1", Period: model.PeriodStats{Days: 3}, Duration: 1500 * time.Millisecond, Workers: 2, Time: now}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := sink.RecordFailure(coremetrics.FailureEvent{RunID: "r1", Day: "2024-06-02", Err: errors.New("boom"), Time: now}); err != nil {
		t.Fatalf("failure: %v", err)
	}
	run := write.NewPointWithMeasurement("run").
		AddTag("run_id", "r1").
		AddField("days", 3).
		AddField("workers", 2).
		AddField("duration_ms", 1500.0).
		AddField("production_kwh", 0.0).
		AddField("consumption_kwh", 0.0).
		AddField("self_consumption_pct", 0.0).
		SetTime(now)
	fail := write.NewPointWithMeasurement("day_failure").
		AddTag("run_id", "r1").
		AddTag("day", "2024-06-02").
		AddField("error", "boom").
		SetTime(now)
	exp := []string{
		strings.TrimSpace(write.PointToLineProtocol(run, time.Nanosecond)),
		strings.TrimSpace(write.PointToLineProtocol(fail, time.Nanosecond)),
	}
	if len(rec.bodies) != 2 || rec.bodies[0] != exp[0] || rec.bodies[1] != exp[1] {
		t.Errorf("unexpected bodies: %#v", rec.bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
