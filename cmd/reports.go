package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/core/report"
	"github.com/kilianp07/pvsim/core/series"
	"github.com/kilianp07/pvsim/infra/metrics"
	_ "github.com/kilianp07/pvsim/infra/report" // store backends
	"github.com/kilianp07/pvsim/jobs/ecokpi"
)

var reportsFlags struct {
	start string
	end   string
	run   string
	limit int
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect stored day reports",
}

var reportsEcoCmd = &cobra.Command{
	Use:   "eco",
	Short: "Derive CO2 avoided and autonomy from stored day reports",
	RunE:  ecoReports,
}

var reportsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored day reports",
	RunE:  listReports,
}

func init() {
	for _, c := range []*cobra.Command{reportsLsCmd, reportsEcoCmd} {
		f := c.Flags()
		f.StringVar(&reportsFlags.start, "start", "", "first day (YYYY-MM-DD)")
		f.StringVar(&reportsFlags.end, "end", "", "last day (YYYY-MM-DD)")
		f.StringVar(&reportsFlags.run, "run", "", "run id")
		f.IntVar(&reportsFlags.limit, "limit", 0, "maximum number of reports")
	}
	reportsCmd.AddCommand(reportsLsCmd, reportsEcoCmd)
	rootCmd.AddCommand(reportsCmd)
}

func reportsQuery() (report.Query, error) {
	q := report.Query{RunID: reportsFlags.run, Limit: reportsFlags.limit}
	if s := reportsFlags.start; s != "" {
		t, err := time.Parse(series.DayLayout, s)
		if err != nil {
			return q, fmt.Errorf("start: %w", err)
		}
		q.Start = t
	}
	if s := reportsFlags.end; s != "" {
		t, err := time.Parse(series.DayLayout, s)
		if err != nil {
			return q, fmt.Errorf("end: %w", err)
		}
		// inclusive
		q.End = t.Add(24*time.Hour - time.Nanosecond)
	}
	return q, nil
}

// openReports loads the configuration and opens the report store.
func openReports() (*config.Config, report.Store, report.Query, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, report.Query{}, err
	}
	q, err := reportsQuery()
	if err != nil {
		return nil, nil, q, err
	}
	store, err := report.NewStore(cfg.Reports.Store)
	if err != nil {
		return nil, nil, q, err
	}
	return cfg, store, q, nil
}

func listReports(cmd *cobra.Command, args []string) error {
	_, store, q, err := openReports()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	recs, err := store.Query(context.Background(), q)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tDAY\tCAPACITY kWh\tSELF-CONSUMPTION %\tINJECTED kWh\tIMPORTED kWh")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%.2f\t%.2f\n", r.RunID, r.Day, r.Battery.CapacityKWh,
			r.Stats.SelfConsumptionPct, r.Stats.InjectedKWh, r.Stats.ImportedKWh)
	}
	return tw.Flush()
}

func ecoReports(cmd *cobra.Command, args []string) error {
	cfg, store, q, err := openReports()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	factor := cfg.Metrics.EmissionFactor
	if factor <= 0 {
		factor = metrics.DefaultEmissionFactor
	}
	sum, err := ecokpi.Backfill(context.Background(), store, q, factor)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tDAY\tCO2 AVOIDED g\tAUTONOMY %")
	for _, d := range sum.Days {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.1f\n", d.RunID, d.Record.Day, d.CO2Grams, d.AutonomyPct)
	}
	fmt.Fprintf(tw, "total\t%d days\t%.0f\t%.1f\n", len(sum.Days), sum.CO2Grams, sum.AutonomyPct)
	return tw.Flush()
}
