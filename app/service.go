package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/pvsim/api/reports"
	"github.com/kilianp07/pvsim/api/stream"
	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/core/engine"
	coremetrics "github.com/kilianp07/pvsim/core/metrics"
	coremon "github.com/kilianp07/pvsim/core/monitoring"
	"github.com/kilianp07/pvsim/core/report"
	"github.com/kilianp07/pvsim/infra/logger"
	"github.com/kilianp07/pvsim/infra/metrics"
	"github.com/kilianp07/pvsim/infra/monitoring"
	"github.com/kilianp07/pvsim/infra/mqtt"
	_ "github.com/kilianp07/pvsim/infra/report" // store backends
	"github.com/kilianp07/pvsim/internal/eventbus"
)

// Service wires the engine to its stores, sinks and HTTP surfaces.
type Service struct {
	Engine    *engine.Engine
	Store     report.Store
	cfg       *config.Config
	sink      coremetrics.MetricsSink
	bus       eventbus.EventBus
	publisher *mqtt.PahoPublisher
	latest    *latestRun
	log       logger.Logger
}

// latestRun holds the last completed run for replay.
type latestRun struct {
	mu  sync.RWMutex
	res *engine.RunResult
}

func (l *latestRun) set(res *engine.RunResult) {
	l.mu.Lock()
	l.res = res
	l.mu.Unlock()
}

func (l *latestRun) get() *engine.RunResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.res
}

// Day implements stream.DaySource.
func (l *latestRun) Day(key string) (engine.DayReport, bool) {
	res := l.get()
	if res == nil {
		return engine.DayReport{}, false
	}
	return res.Day(key)
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	loc, err := cfg.Simulation.Location()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.Simulation.Reporting()
	if err != nil {
		return nil, err
	}

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := report.NewStore(cfg.Reports.Store)
	if err != nil {
		return nil, fmt.Errorf("report store: %w", err)
	}

	svc := &Service{
		Store:  store,
		cfg:    cfg,
		sink:   sink,
		bus:    eventbus.New(),
		latest: &latestRun{},
		log:    logg,
	}

	var pub engine.Publisher
	if cfg.MQTT.Enabled() {
		p, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = p
		pub = p
	}

	svc.Engine = engine.New(engine.Options{
		Workers:      cfg.Simulation.Workers,
		Location:     loc,
		SoCReporting: mode,
		StoreSamples: cfg.Reports.StoreSamples,
		Store:        store,
		Sink:         sink,
		Bus:          svc.bus,
		Publisher:    pub,
		Logger:       logger.New("engine"),
	})
	return svc, nil
}

// Simulate loads the configured inputs and runs the engine over them.
func (s *Service) Simulate(ctx context.Context) (*engine.RunResult, error) {
	prod, cons, err := LoadInputs(s.cfg.Simulation, logger.New("csv"))
	if err != nil {
		return nil, err
	}
	res, err := s.Engine.Run(ctx, prod, cons, s.cfg.Battery)
	if err != nil {
		return nil, err
	}
	s.latest.set(res)
	s.log.Infow("simulation complete", map[string]any{
		"run_id":           res.RunID,
		"days":             res.Period.Days,
		"self_consumption": res.Period.SelfConsumptionPct,
		"duration":         res.Duration.String(),
	})
	return res, nil
}

// Latest returns the last completed run, nil before the first one.
func (s *Service) Latest() *engine.RunResult { return s.latest.get() }

// Handler builds the HTTP surface: report API, replay and event streams.
func (s *Service) Handler() http.Handler {
	r := reports.NewRouter(reports.Options{
		Store:       s.Store,
		Engine:      s.Engine,
		Battery:     s.cfg.Battery,
		Token:       s.cfg.API.Token,
		CORSOrigins: s.cfg.API.CORSOrigins,
		Logger:      logger.New("api"),
	})
	ws := stream.NewHandler(s.latest, s.bus, s.cfg.API.ReplayInterval(), logger.New("stream"))
	ws.Register(func(pattern string, h http.Handler) { r.GET(pattern, gin.WrapH(h)) })
	return reports.Handler(r, s.cfg.API.CORSOrigins)
}

// Run simulates the configured inputs once, then serves the HTTP API until
// the context is cancelled. Without an API address it returns after the run.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	_, simErr := s.Simulate(ctx)
	if s.cfg.API.Addr == "" {
		return simErr
	}
	if simErr != nil {
		s.log.Errorf("simulation failed: %v", simErr)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
		cancel()
	}()
	s.log.Infof("serving API on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	coremon.Flush(2 * time.Second)
	return s.Store.Close()
}
