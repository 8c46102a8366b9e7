// Package stream pushes simulated days and engine events to WebSocket
// clients.
package stream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kilianp07/pvsim/core/engine"
	"github.com/kilianp07/pvsim/core/events"
	"github.com/kilianp07/pvsim/core/logger"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/series"
	infralogger "github.com/kilianp07/pvsim/infra/logger"
	"github.com/kilianp07/pvsim/internal/eventbus"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// DaySource resolves simulated days by key. *engine.RunResult implements it.
type DaySource interface {
	Day(key string) (engine.DayReport, bool)
}

// Frame is one replayed interval.
type Frame struct {
	Index       int        `json:"index"`
	Timestamp   time.Time  `json:"timestamp"`
	Production  float64    `json:"production"`
	Consumption float64    `json:"consumption"`
	Battery     float64    `json:"battery"`
	SoC         float64    `json:"soc"`
	Grid        float64    `json:"grid"`
	Flow        model.Flow `json:"flow"`
}

// Frames turns a day report into replay frames.
func Frames(rep engine.DayReport) []Frame {
	out := make([]Frame, len(rep.Samples))
	for i, s := range rep.Samples {
		f := Frame{
			Index:     i,
			Timestamp: s.Timestamp,
			Battery:   s.BatteryPowerKW,
			SoC:       s.SoCPercent,
			Grid:      s.GridPowerKW,
		}
		if i < len(rep.Production.Samples) {
			f.Production = rep.Production.Samples[i].PowerKW
		}
		if i < len(rep.Consumption.Samples) {
			f.Consumption = rep.Consumption.Samples[i].PowerKW
		}
		f.Flow = model.ClassifyFlow(f.Production, f.Battery, f.Grid)
		out[i] = f
	}
	return out
}

// Envelope wraps bus events sent on /ws/events.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type dayFailure struct {
	RunID string `json:"run_id"`
	Day   string `json:"day"`
	Error string `json:"error"`
}

// envelopeOf maps engine events; other bus traffic is ignored.
func envelopeOf(ev eventbus.Event) (Envelope, bool) {
	switch e := ev.(type) {
	case events.DayCompleted:
		return Envelope{Type: "day_completed", Data: e}, true
	case events.DayFailed:
		msg := ""
		if e.Err != nil {
			msg = e.Err.Error()
		}
		return Envelope{Type: "day_failed", Data: dayFailure{RunID: e.RunID, Day: e.Day, Error: msg}}, true
	case events.RunCompleted:
		return Envelope{Type: "run_completed", Data: e}, true
	default:
		return Envelope{}, false
	}
}

// Handler serves /ws/replay and /ws/events.
type Handler struct {
	src      DaySource
	bus      eventbus.EventBus
	interval time.Duration
	log      logger.Logger
}

// NewHandler creates a Handler. A zero interval sends frames back to back.
func NewHandler(src DaySource, bus eventbus.EventBus, interval time.Duration, log logger.Logger) *Handler {
	if log == nil {
		log = infralogger.NopLogger{}
	}
	return &Handler{src: src, bus: bus, interval: interval, log: log}
}

// Replay streams every interval of ?date=YYYY-MM-DD then closes the socket.
func (h *Handler) Replay(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("date")
	if _, err := time.Parse(series.DayLayout, key); err != nil {
		http.Error(w, fmt.Sprintf("date must be YYYY-MM-DD: %q", key), http.StatusBadRequest)
		return
	}
	if h.src == nil {
		http.Error(w, "no simulation available", http.StatusNotFound)
		return
	}
	rep, ok := h.src.Day(key)
	if !ok {
		http.Error(w, "unknown day "+key, http.StatusNotFound)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go drain(conn, cancel)

	var tick <-chan time.Time
	if h.interval > 0 {
		t := time.NewTicker(h.interval)
		defer t.Stop()
		tick = t.C
	}
	for i, f := range Frames(rep) {
		if i > 0 && tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		}
		if ctx.Err() != nil {
			return
		}
		if err := write(conn, f); err != nil {
			h.log.Debugf("replay %s aborted: %v", key, err)
			return
		}
	}
	closeNormal(conn, "replay complete")
}

// Events forwards engine events until the client leaves or the bus closes.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if h.bus == nil {
		http.Error(w, "no event bus", http.StatusNotFound)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go drain(conn, cancel)

	sub := h.bus.Subscribe()
	defer h.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				closeNormal(conn, "bus closed")
				return
			}
			env, ok := envelopeOf(ev)
			if !ok {
				continue
			}
			if err := write(conn, env); err != nil {
				h.log.Debugf("events stream aborted: %v", err)
				return
			}
		}
	}
}

// Register mounts both endpoints on mux-like routers.
func (h *Handler) Register(handle func(pattern string, handler http.Handler)) {
	handle("/ws/replay", http.HandlerFunc(h.Replay))
	handle("/ws/events", http.HandlerFunc(h.Events))
}

// drain reads until the peer goes away so that close frames are processed.
func drain(conn *websocket.Conn, done context.CancelFunc) {
	defer done()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func write(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

func closeNormal(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
