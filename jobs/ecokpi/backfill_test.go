package ecokpi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/report"
)

type brokenStore struct{ report.NopStore }

func (brokenStore) Query(context.Context, report.Query) ([]report.Record, error) {
	return nil, errors.New("unavailable")
}

func TestBackfill(t *testing.T) {
	store := report.NewMemoryStore()
	ctx := context.Background()
	for i, st := range []model.DailyStats{
		{ConsumptionTotalKWh: 10, ImportedKWh: 5, SelfConsumedKWh: 5},
		{ConsumptionTotalKWh: 30, ImportedKWh: 5, SelfConsumedKWh: 25},
	} {
		date := time.Date(2024, 6, 1+i, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.Append(ctx, report.Record{RunID: "r1", Day: date.Format("2006-01-02"), Date: date, Stats: st}))
	}

	sum, err := Backfill(ctx, store, report.Query{RunID: "r1"}, 50)
	require.NoError(t, err)
	require.Len(t, sum.Days, 2)
	assert.InDelta(t, 250, sum.Days[0].CO2Grams, 1e-9)
	assert.InDelta(t, 50, sum.Days[0].AutonomyPct, 1e-9)
	assert.InDelta(t, 1500, sum.CO2Grams, 1e-9)
	// 10 kWh imported out of 40 consumed
	assert.InDelta(t, 75, sum.AutonomyPct, 1e-9)

	sum, err = Backfill(ctx, store, report.Query{RunID: "other"}, 50)
	require.NoError(t, err)
	assert.Empty(t, sum.Days)
	assert.Zero(t, sum.AutonomyPct)

	_, err = Backfill(ctx, brokenStore{}, report.Query{}, 50)
	assert.Error(t, err)
}
