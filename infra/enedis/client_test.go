package enedis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvsim/core/model"
)

func f(v float64) *float64 { return &v }

// monthServer serves recs for the refined month in pages and nothing for the
// other months. It records the offsets requested.
func monthServer(t *testing.T, month string, recs []Record) (*httptest.Server, *[]int) {
	t.Helper()
	var (
		mu      sync.Mutex
		offsets []int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "horodate", q.Get("order_by"))
		if q.Get("refine") != "horodate:"+month {
			_, _ = w.Write([]byte(`{"total_count":0,"results":[]}`))
			return
		}
		offset, _ := strconv.Atoi(q.Get("offset"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		mu.Lock()
		offsets = append(offsets, offset)
		mu.Unlock()
		end := offset + limit
		if end > len(recs) {
			end = len(recs)
		}
		_ = json.NewEncoder(w).Encode(page{TotalCount: len(recs), Results: recs[offset:end]})
	}))
	t.Cleanup(srv.Close)
	return srv, &offsets
}

func halfHours(start string, wh ...float64) []Record {
	t0, _ := time.Parse(time.RFC3339, start)
	out := make([]Record, len(wh))
	for i, v := range wh {
		out[i] = Record{
			Horodate:           t0.Add(time.Duration(i) * 30 * time.Minute).Format(time.RFC3339),
			ConsommationTotale: f(v),
		}
	}
	return out
}

func TestFetchMonthPaging(t *testing.T) {
	recs := halfHours("2024-03-01T00:00:00+01:00", 1000, 2000, 3000, 4000, 5000)
	srv, offsets := monthServer(t, "2024/03", recs)

	c := NewClient(srv.URL, time.Second)
	c.PageSize = 2
	got, err := c.FetchMonth(context.Background(), 2024, time.March)
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Equal(t, []int{0, 2, 4}, *offsets)
}

func TestFetchYear(t *testing.T) {
	recs := halfHours("2024-06-01T12:00:00+02:00", 1000, 2000, 3000)
	srv, _ := monthServer(t, "2024/06", recs)

	s, err := NewClient(srv.URL, time.Second).FetchYear(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, StepHours, s.TimeStepHours)
	// Wh per half hour to kW
	assert.Equal(t, []float64{2, 4, 6}, s.Values())
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), s.Samples[0].Timestamp)
	assert.Equal(t, time.UTC, s.Samples[0].Timestamp.Location())
}

func TestFetchInterpolates(t *testing.T) {
	recs := halfHours("2024-06-01T12:00:00+02:00", 1000, 2000)
	srv, _ := monthServer(t, "2024/06", recs)

	s, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), 2024, 0.25)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4, 4}, s.Values())
	assert.Equal(t, time.Date(2024, 6, 1, 10, 15, 0, 0, time.UTC), s.Samples[1].Timestamp)
}

func TestToSeries(t *testing.T) {
	recs := []Record{
		{Horodate: "2024-01-01T00:30:00+01:00", SoutirageRTE: f(3000), InjectionRTE: f(1000)},
		{Horodate: "2024-01-01T00:00:00+01:00", SoutirageRTE: f(1500)},
		{Horodate: "2024-01-01T00:00:00+01:00", ConsommationTotale: f(9999)},
		{Horodate: "2024-01-01T01:00:00+01:00"},
	}
	s, err := ToSeries(recs)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, s.Values())
	assert.True(t, s.Samples[0].Timestamp.Before(s.Samples[1].Timestamp))
}

func TestToSeriesErrors(t *testing.T) {
	_, err := ToSeries([]Record{{Horodate: "2024-01-01T00:00:00Z"}})
	assert.Error(t, err)

	_, err = ToSeries([]Record{{Horodate: "01/01/2024", ConsommationTotale: f(1)}})
	assert.Error(t, err)

	gap := []Record{
		{Horodate: "2024-01-01T10:00:00Z", ConsommationTotale: f(1)},
		{Horodate: "2024-01-01T10:30:00Z", ConsommationTotale: f(1)},
		{Horodate: "2024-01-01T15:00:00Z", ConsommationTotale: f(1)},
	}
	_, err = ToSeries(gap)
	assert.Equal(t, model.ConstraintGap, model.ConstraintOf(err))
}

func TestFetchErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		},
		"bad json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
		"empty year": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"total_count":0,"results":[]}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			_, err := NewClient(srv.URL, time.Second).FetchYear(context.Background(), 2024)
			assert.Error(t, err)
		})
	}
}
