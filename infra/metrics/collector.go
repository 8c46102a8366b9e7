package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/pvsim/core/events"
	coremetrics "github.com/kilianp07/pvsim/core/metrics"
	"github.com/kilianp07/pvsim/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records failed days on
// sinks implementing FailureRecorder. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.FailureRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if e, ok := ev.(events.DayFailed); ok {
					_ = rec.RecordFailure(coremetrics.FailureEvent{RunID: e.RunID, Day: e.Day, Err: e.Err, Time: time.Now()})
				}
			}
		}
	}()
}
