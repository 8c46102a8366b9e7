package csvsource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvsim/core/model"
)

const twoDaysCSV = `timestamp,production_kw
2024-06-01 23:30:00,1.5
2024-06-01 23:45:00,2

2024-06-02 00:00:00,NaN
2024-06-02 00:15:00,oops
2024-06-02 00:30:00,3.25
2024-06-02 00:45:00
`

func TestReadSeries(t *testing.T) {
	s, err := ReadSeries(strings.NewReader(twoDaysCSV), Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2, 3.25}, s.Values())
	assert.Equal(t, 0.25, s.TimeStepHours)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 30, 0, 0, time.UTC), s.Samples[2].Timestamp)
}

func TestReadSeriesDayFilter(t *testing.T) {
	s, err := ReadSeries(strings.NewReader(twoDaysCSV), Options{Date: "2024-06-01"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2}, s.Values())

	_, err = ReadSeries(strings.NewReader(twoDaysCSV), Options{Date: "2024-06-03"})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestReadSeriesLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	s, err := ReadSeries(strings.NewReader(twoDaysCSV), Options{Location: paris, Date: "2024-06-02"})
	require.NoError(t, err)
	assert.Equal(t, []float64{3.25}, s.Values())
	assert.Equal(t, 0.25, s.TimeStepHours, "step is inferred before the day filter")
}

func TestReadSeriesRFC3339AndStep(t *testing.T) {
	in := "timestamp,power_kw\n2024-06-01T10:00:00Z,4\n"
	_, err := ReadSeries(strings.NewReader(in), Options{})
	assert.Equal(t, model.ConstraintTimeStep, model.ConstraintOf(err))

	s, err := ReadSeries(strings.NewReader(in), Options{TimeStepHours: 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.TimeStepHours)
	assert.Equal(t, 10, s.Samples[0].Timestamp.Hour())
}

func TestReadSeriesOrder(t *testing.T) {
	in := "timestamp,power_kw\n2024-06-01 10:00:00,4\n2024-06-01 10:15:00,4\n2024-06-01 10:00:00,4\n"
	_, err := ReadSeries(strings.NewReader(in), Options{})
	assert.Equal(t, model.ConstraintOrder, model.ConstraintOf(err))
}

func TestReadSeriesGap(t *testing.T) {
	in := "timestamp,power_kw\n2024-06-01 10:00:00,4\n2024-06-01 10:15:00,4\n2024-06-01 15:00:00,4\n"
	_, err := ReadSeries(strings.NewReader(in), Options{})
	assert.Equal(t, model.ConstraintGap, model.ConstraintOf(err))

	// a malformed row leaves a hole in the day
	in = "timestamp,power_kw\n2024-06-01 10:00:00,4\n2024-06-01 10:15:00,x\n2024-06-01 10:30:00,4\n"
	_, err = ReadSeries(strings.NewReader(in), Options{TimeStepHours: 0.25})
	assert.Equal(t, model.ConstraintGap, model.ConstraintOf(err))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "production.csv")
	require.NoError(t, os.WriteFile(path, []byte(twoDaysCSV), 0o644))
	s, err := LoadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)
}
