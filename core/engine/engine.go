package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/pvsim/core/dispatch"
	"github.com/kilianp07/pvsim/core/events"
	"github.com/kilianp07/pvsim/core/logger"
	"github.com/kilianp07/pvsim/core/metrics"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/monitoring"
	"github.com/kilianp07/pvsim/core/report"
	"github.com/kilianp07/pvsim/core/series"
	"github.com/kilianp07/pvsim/core/stats"
	"github.com/kilianp07/pvsim/internal/eventbus"
)

// Publisher forwards day reports to an external system.
type Publisher interface {
	PublishDay(ctx context.Context, runID string, rep DayReport) error
}

// Options configures an Engine. Nil collaborators are replaced by no-ops.
type Options struct {
	// Workers bounds the number of days simulated concurrently.
	Workers      int
	Location     *time.Location
	SoCReporting dispatch.SoCReporting
	// StoreSamples keeps the per-interval trace in report records.
	StoreSamples bool
	Store        report.Store
	Sink         metrics.MetricsSink
	Bus          eventbus.EventBus
	Publisher    Publisher
	Logger       logger.Logger
}

// DayReport is the outcome of one simulated day.
type DayReport struct {
	Day         string                 `json:"day"`
	Date        time.Time              `json:"date"`
	Stats       model.DailyStats       `json:"stats"`
	FinalSoCKWh float64                `json:"final_soc_kwh"`
	Samples     []model.DispatchSample `json:"samples"`
	Production  model.PowerSeries      `json:"-"`
	Consumption model.PowerSeries      `json:"-"`
}

// RunResult gathers every day of a run.
type RunResult struct {
	RunID    string              `json:"run_id"`
	Battery  model.BatteryConfig `json:"battery"`
	Days     []DayReport         `json:"days"`
	Period   model.PeriodStats   `json:"period"`
	Started  time.Time           `json:"started"`
	Duration time.Duration       `json:"duration_ns"`
}

// Day returns the report of the given day key.
func (r *RunResult) Day(key string) (DayReport, bool) {
	for _, d := range r.Days {
		if d.Day == key {
			return d, true
		}
	}
	return DayReport{}, false
}

// Engine simulates days and distributes their results.
type Engine struct {
	opts Options
	log  logger.Logger
}

// New creates an Engine.
func New(opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Store == nil {
		opts.Store = report.NopStore{}
	}
	if opts.Sink == nil {
		opts.Sink = metrics.NopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &Engine{opts: opts, log: opts.Logger}
}

// SimulateDay dispatches a single day and aggregates its statistics.
func (e *Engine) SimulateDay(day series.Day, battery model.BatteryConfig) (DayReport, error) {
	res, err := dispatch.Simulate(day.Production, day.Consumption, battery, dispatch.WithSoCReporting(e.opts.SoCReporting))
	if err != nil {
		return DayReport{}, err
	}
	st, err := stats.Aggregate(day.Production, day.Consumption, res.GridValues())
	if err != nil {
		return DayReport{}, err
	}
	return DayReport{
		Day:         day.Key,
		Date:        day.Date,
		Stats:       st,
		FinalSoCKWh: res.FinalSoCKWh,
		Samples:     res.Samples,
		Production:  day.Production,
		Consumption: day.Consumption,
	}, nil
}

// Run simulates every calendar day found in the inputs. Each day starts from
// the battery's initial state of charge. Store failures abort the run; other
// side channels only log.
func (e *Engine) Run(ctx context.Context, production, consumption model.PowerSeries, battery model.BatteryConfig) (*RunResult, error) {
	if err := battery.Validate(); err != nil {
		return nil, err
	}
	days, err := series.SplitDays(production, consumption, e.opts.Location)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	runID := uuid.NewString()
	log := e.log.With(map[string]any{"run_id": runID})
	log.Infof("simulating %d day(s) with %d worker(s)", len(days), e.opts.Workers)

	reports := make([]DayReport, len(days))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, d := range days {
		i, d := i, d
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					monitoring.CapturePanic(r, map[string]string{"run_id": runID, "day": d.Key})
					err = fmt.Errorf("day %s: panic: %v", d.Key, r)
				}
				if err != nil {
					e.publish(events.DayFailed{RunID: runID, Day: d.Key, Err: err})
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := e.SimulateDay(d, battery)
			if err != nil {
				return fmt.Errorf("day %s: %w", d.Key, err)
			}
			reports[i] = rep
			log.Debugw("day simulated", map[string]any{
				"day":                  d.Key,
				"self_consumption_pct": rep.Stats.SelfConsumptionPct,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(reports, func(i, j int) bool { return reports[i].Date.Before(reports[j].Date) })
	daily := make([]model.DailyStats, len(reports))
	for i, r := range reports {
		daily[i] = r.Stats
	}
	res := &RunResult{
		RunID:   runID,
		Battery: battery,
		Days:    reports,
		Period:  stats.Summarize(daily),
		Started: started,
	}

	if err := e.persist(ctx, res); err != nil {
		monitoring.CaptureException(err, map[string]string{"run_id": runID, "stage": "store"})
		return nil, fmt.Errorf("store reports: %w", err)
	}
	for _, d := range res.Days {
		e.distribute(ctx, log, res, d)
	}
	res.Duration = time.Since(started)

	if rr, ok := e.opts.Sink.(metrics.RunRecorder); ok {
		ev := metrics.RunEvent{RunID: runID, Period: res.Period, Duration: res.Duration, Workers: e.opts.Workers, Time: time.Now()}
		if err := rr.RecordRun(ev); err != nil {
			e.sideError(log, "record run", err, runID, "")
		}
	}
	e.publish(events.RunCompleted{RunID: runID, Period: res.Period, Duration: res.Duration})
	log.Infow("run completed", map[string]any{
		"days":                 res.Period.Days,
		"self_consumption_pct": res.Period.SelfConsumptionPct,
		"duration":             res.Duration.String(),
	})
	return res, nil
}

func (e *Engine) persist(ctx context.Context, res *RunResult) error {
	now := time.Now().UTC()
	recs := make([]report.Record, len(res.Days))
	for i, d := range res.Days {
		recs[i] = report.Record{
			RunID:       res.RunID,
			Day:         d.Day,
			Date:        d.Date,
			Battery:     res.Battery,
			Stats:       d.Stats,
			FinalSoCKWh: d.FinalSoCKWh,
			CreatedAt:   now,
		}
		if e.opts.StoreSamples {
			recs[i].Samples = d.Samples
		}
	}
	return report.AppendAll(ctx, e.opts.Store, recs)
}

func (e *Engine) distribute(ctx context.Context, log logger.Logger, res *RunResult, d DayReport) {
	ev := metrics.DayEvent{
		RunID:       res.RunID,
		Day:         d.Day,
		Date:        d.Date,
		Battery:     res.Battery,
		Stats:       d.Stats,
		FinalSoCKWh: d.FinalSoCKWh,
	}
	if err := e.opts.Sink.RecordDay(ev); err != nil {
		e.sideError(log, "record day", err, res.RunID, d.Day)
	}
	if sr, ok := e.opts.Sink.(metrics.SampleRecorder); ok {
		sev := metrics.SamplesEvent{RunID: res.RunID, Day: d.Day, Production: d.Production, Consumption: d.Consumption, Samples: d.Samples}
		if err := sr.RecordSamples(sev); err != nil {
			e.sideError(log, "record samples", err, res.RunID, d.Day)
		}
	}
	e.publish(events.DayCompleted{RunID: res.RunID, Day: d.Day, Stats: d.Stats, FinalSoCKWh: d.FinalSoCKWh})
	if e.opts.Publisher != nil {
		if err := e.opts.Publisher.PublishDay(ctx, res.RunID, d); err != nil {
			e.sideError(log, "publish day", err, res.RunID, d.Day)
		}
	}
}

func (e *Engine) sideError(log logger.Logger, stage string, err error, runID, day string) {
	log.Errorf("%s %s: %v", stage, day, err)
	monitoring.CaptureException(err, map[string]string{"run_id": runID, "day": day, "stage": stage})
}

func (e *Engine) publish(ev eventbus.Event) {
	if e.opts.Bus != nil {
		e.opts.Bus.Publish(ev)
	}
}

// IsInputError reports whether err stems from invalid caller input rather
// than a failing collaborator.
func IsInputError(err error) bool {
	return errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrEmptySeries)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)              {}
func (nopLogger) Debugw(string, map[string]any)      {}
func (nopLogger) Infof(string, ...any)               {}
func (nopLogger) Infow(string, map[string]any)       {}
func (nopLogger) Warnf(string, ...any)               {}
func (nopLogger) Errorf(string, ...any)              {}
func (n nopLogger) With(map[string]any) logger.Logger { return n }
