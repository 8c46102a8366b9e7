package pvgis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
  "inputs": {"location": {"latitude": 48.85, "longitude": 2.35}},
  "outputs": {
    "hourly": [
      {"time": "20240101:0010", "P": 0.0, "G(i)": 0.0},
      {"time": "20240101:0110", "P": 4000.0, "G(i)": 12.0},
      {"time": "20240101:0210", "P": 8000.0, "G(i)": 30.0}
    ]
  }
}`

func TestFetchHourly(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	s, err := c.FetchHourly(context.Background(), DefaultRequest(48.85, 2.35, 2024))
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, 1.0, s.TimeStepHours)
	assert.Equal(t, []float64{0, 4, 8}, s.Values())
	assert.Equal(t, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), s.Samples[1].Timestamp)

	assert.Equal(t, "48.85", query["lat"])
	assert.Equal(t, "2024", query["startyear"])
	assert.Equal(t, "100", query["peakpower"])
	assert.Equal(t, "14", query["loss"])
	assert.Equal(t, "json", query["outputformat"])
}

func TestFetchInterpolates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	s, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), DefaultRequest(0, 0, 2024), 0.25)
	require.NoError(t, err)
	require.Equal(t, 12, s.Len())
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 8, 8, 8}, s.Values())
}

func TestFetchErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "location over sea", http.StatusBadRequest)
		},
		"empty": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"outputs": {"hourly": []}}`))
		},
		"bad time": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"outputs": {"hourly": [{"time": "yesterday", "P": 1}]}}`))
		},
		"bad json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			_, err := NewClient(srv.URL, time.Second).FetchHourly(context.Background(), DefaultRequest(0, 0, 2024))
			assert.Error(t, err)
		})
	}
}
