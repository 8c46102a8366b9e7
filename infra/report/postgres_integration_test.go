//go:build !no_containers

package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	corereport "github.com/kilianp07/pvsim/core/report"
	"github.com/kilianp07/pvsim/test/util"
)

func TestPostgresStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	dsn, cleanup, err := util.StartPostgres(ctx)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	defer cleanup()

	s, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)

	require.NoError(t, corereport.AppendAll(ctx, s, []corereport.Record{
		sampleRecord("r1", "2024-06-01", 55),
		sampleRecord("r3", "2024-06-03", 60),
	}))
	out, err := s.Query(ctx, corereport.Query{RunID: "r1"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, 55.0, out[0].Stats.SelfConsumptionPct)
}
