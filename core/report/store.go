// Package report defines how simulated days are persisted and queried.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/kilianp07/pvsim/core/model"
)

// Record captures one simulated day of one run.
type Record struct {
	RunID       string                 `json:"run_id"`
	Day         string                 `json:"day"`
	Date        time.Time              `json:"date"`
	Battery     model.BatteryConfig    `json:"battery"`
	Stats       model.DailyStats       `json:"stats"`
	FinalSoCKWh float64                `json:"final_soc_kwh"`
	Samples     []model.DispatchSample `json:"samples,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Query defines filters for retrieving records. Zero values do not filter.
type Query struct {
	Start              time.Time
	End                time.Time
	RunID              string
	Day                string
	MinSelfConsumption float64
	Limit              int
}

// Match reports whether r passes every filter of q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Date.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Date.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Day != "" && r.Day != q.Day {
		return false
	}
	if q.MinSelfConsumption > 0 && r.Stats.SelfConsumptionPct < q.MinSelfConsumption {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// BatchAppender is implemented by stores able to persist a run atomically.
type BatchAppender interface {
	AppendBatch(ctx context.Context, recs []Record) error
}

// AppendAll persists recs, in one batch when the store supports it.
func AppendAll(ctx context.Context, s Store, recs []Record) error {
	if b, ok := s.(BatchAppender); ok {
		return b.AppendBatch(ctx, recs)
	}
	for _, r := range recs {
		if err := s.Append(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Filter applies q to records, sorts them by date then run and honours Limit.
func Filter(records []Record, q Query) []Record {
	var out []Record
	for _, r := range records {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	Sort(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Sort orders records by date, then run id.
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].RunID < records[j].RunID
	})
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error          { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
