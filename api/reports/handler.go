package reports

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/kilianp07/pvsim/core/engine"
	"github.com/kilianp07/pvsim/core/logger"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/report"
	"github.com/kilianp07/pvsim/core/series"
	infralogger "github.com/kilianp07/pvsim/infra/logger"
)

// Options configures the router.
type Options struct {
	Store  report.Store
	Engine *engine.Engine
	// Battery is used by /api/simulate when the request carries none.
	Battery model.BatteryConfig
	// Token protects /api routes when set.
	Token       string
	CORSOrigins []string
	// Metrics is served on /metrics, promhttp.Handler() when nil.
	Metrics http.Handler
	Logger  logger.Logger
}

// SimulateRequest is the body of POST /api/simulate.
type SimulateRequest struct {
	Production    []float64            `json:"production" binding:"required"`
	Consumption   []float64            `json:"consumption" binding:"required"`
	TimeStepHours float64              `json:"time_step_hours" binding:"required"`
	Start         *time.Time           `json:"start,omitempty"`
	Battery       *model.BatteryConfig `json:"battery,omitempty"`
}

// SimulateResponse carries the simulated day.
type SimulateResponse struct {
	Day         string                 `json:"day,omitempty"`
	Samples     []model.DispatchSample `json:"samples"`
	Stats       model.DailyStats       `json:"stats"`
	FinalSoCKWh float64                `json:"final_soc_kwh"`
}

type handler struct {
	opts Options
	log  logger.Logger
}

// NewRouter builds the gin engine serving the report API. Callers may mount
// further routes before wrapping it with Handler.
func NewRouter(opts Options) *gin.Engine {
	if opts.Store == nil {
		opts.Store = report.NopStore{}
	}
	if opts.Engine == nil {
		opts.Engine = engine.New(engine.Options{})
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}
	if opts.Logger == nil {
		opts.Logger = infralogger.NopLogger{}
	}
	h := &handler{opts: opts, log: opts.Logger}

	r := gin.New()
	r.Use(recovery(), requestLogger(h.log))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(opts.Metrics))

	api := r.Group("/api", bearer(opts.Token))
	api.GET("/reports", h.listReports)
	api.POST("/simulate", h.simulate)
	return r
}

// Handler wraps the router with CORS handling.
func Handler(r http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}

// New returns the complete HTTP handler.
func New(opts Options) http.Handler {
	return Handler(NewRouter(opts), opts.CORSOrigins)
}

func (h *handler) listReports(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_QUERY", err)
		return
	}
	recs, err := h.opts.Store.Query(c.Request.Context(), q)
	if err != nil {
		h.log.Errorf("query reports: %v", err)
		abort(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	if c.Query("samples") != "true" {
		for i := range recs {
			recs[i].Samples = nil
		}
	}
	if recs == nil {
		recs = []report.Record{}
	}
	c.JSON(http.StatusOK, recs)
}

// parseQuery accepts RFC 3339 instants or plain dates for start and end.
func parseQuery(c *gin.Context) (report.Query, error) {
	q := report.Query{RunID: c.Query("run_id"), Day: c.Query("day")}
	var err error
	if s := c.Query("start"); s != "" {
		if q.Start, err = parseTime(s); err != nil {
			return q, fmt.Errorf("start: %w", err)
		}
	}
	if s := c.Query("end"); s != "" {
		if q.End, err = parseTime(s); err != nil {
			return q, fmt.Errorf("end: %w", err)
		}
	}
	if s := c.Query("min_self_consumption"); s != "" {
		if q.MinSelfConsumption, err = strconv.ParseFloat(s, 64); err != nil {
			return q, fmt.Errorf("min_self_consumption: %w", err)
		}
	}
	if s := c.Query("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil || q.Limit < 0 {
			return q, fmt.Errorf("limit must be a non-negative integer")
		}
	}
	return q, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(series.DayLayout, s)
}

func (h *handler) simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	battery := h.opts.Battery
	if req.Battery != nil {
		battery = *req.Battery
	}
	var start time.Time
	if req.Start != nil {
		start = *req.Start
	}
	day := series.Day{
		Production:  model.NewSeries(start, req.TimeStepHours, req.Production),
		Consumption: model.NewSeries(start, req.TimeStepHours, req.Consumption),
	}
	if !start.IsZero() {
		day.Key = series.DayKey(start, start.Location())
		day.Date = series.StartOfDay(start, start.Location())
	}
	if err := battery.Validate(); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_INPUT", err)
		return
	}
	rep, err := h.opts.Engine.SimulateDay(day, battery)
	if err != nil {
		status, code := statusOf(err)
		if status >= http.StatusInternalServerError {
			h.log.Errorf("simulate: %v", err)
		}
		abort(c, status, code, err)
		return
	}
	c.JSON(http.StatusOK, SimulateResponse{
		Day:         rep.Day,
		Samples:     rep.Samples,
		Stats:       rep.Stats,
		FinalSoCKWh: rep.FinalSoCKWh,
	})
}
