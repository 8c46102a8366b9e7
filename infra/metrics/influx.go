package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/pvsim/core/metrics"
	"github.com/kilianp07/pvsim/infra/logger"
)

// InfluxSink writes simulated days to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordDay writes the daily statistics as one point stamped at the start of the day.
func (s *InfluxSink) RecordDay(ev coremetrics.DayEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st := ev.Stats
	p := write.NewPointWithMeasurement("daily_stats").
		AddTag("run_id", ev.RunID).
		AddTag("day", ev.Day).
		AddField("production_kwh", round3(st.ProductionTotalKWh)).
		AddField("consumption_kwh", round3(st.ConsumptionTotalKWh)).
		AddField("production_max_kw", round3(st.ProductionMaxKW)).
		AddField("consumption_max_kw", round3(st.ConsumptionMaxKW)).
		AddField("grid_balance_kwh", round3(st.GridBalanceKWh)).
		AddField("injected_kwh", round3(st.InjectedKWh)).
		AddField("imported_kwh", round3(st.ImportedKWh)).
		AddField("self_consumed_kwh", round3(st.SelfConsumedKWh)).
		AddField("self_consumption_pct", round3(st.SelfConsumptionPct)).
		AddField("final_soc_kwh", round3(ev.FinalSoCKWh)).
		AddField("capacity_kwh", round3(ev.Battery.CapacityKWh)).
		SetTime(ev.Date)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSamples writes the interval trace of a day. Positional samples
// without a timestamp are skipped.
func (s *InfluxSink) RecordSamples(ev coremetrics.SamplesEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(ev.Samples))
	for i, smp := range ev.Samples {
		if smp.Timestamp.IsZero() {
			continue
		}
		p := write.NewPointWithMeasurement("dispatch_sample").
			AddTag("run_id", ev.RunID).
			AddTag("day", ev.Day).
			AddField("battery_kw", round3(smp.BatteryPowerKW)).
			AddField("grid_kw", round3(smp.GridPowerKW)).
			AddField("soc_percent", round3(smp.SoCPercent))
		if i < ev.Production.Len() {
			p = p.AddField("production_kw", round3(ev.Production.Samples[i].PowerKW))
		}
		if i < ev.Consumption.Len() {
			p = p.AddField("consumption_kw", round3(ev.Consumption.Samples[i].PowerKW))
		}
		points = append(points, p.SetTime(smp.Timestamp))
	}
	if len(points) == 0 {
		return nil
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordRun writes the period summary of a run.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("run").
		AddTag("run_id", ev.RunID).
		AddField("days", ev.Period.Days).
		AddField("workers", ev.Workers).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		AddField("production_kwh", round3(ev.Period.ProductionTotalKWh)).
		AddField("consumption_kwh", round3(ev.Period.ConsumptionTotalKWh)).
		AddField("self_consumption_pct", round3(ev.Period.SelfConsumptionPct)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFailure writes a failed day.
func (s *InfluxSink) RecordFailure(ev coremetrics.FailureEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msg := ""
	if ev.Err != nil {
		msg = ev.Err.Error()
	}
	p := write.NewPointWithMeasurement("day_failure").
		AddTag("run_id", ev.RunID).
		AddTag("day", ev.Day).
		AddField("error", msg).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
