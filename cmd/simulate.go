package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvsim/app"
	"github.com/kilianp07/pvsim/core/engine"
	"github.com/kilianp07/pvsim/pkg/chart"
	"github.com/kilianp07/pvsim/pkg/export"
)

var simulateFlags struct {
	date     string
	capacity float64
	ledger   string
	chart    string
	json     string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the simulation once and print per-day statistics",
	RunE:  simulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simulateFlags.date, "date", "", "simulate a single day (YYYY-MM-DD)")
	f.Float64Var(&simulateFlags.capacity, "capacity", -1, "battery capacity in kWh, overrides the configuration")
	f.StringVar(&simulateFlags.ledger, "ledger", "", "write the interval ledger of the first day to this CSV file")
	f.StringVar(&simulateFlags.chart, "chart", "", "render the first day to this HTML file")
	f.StringVar(&simulateFlags.json, "json", "", "write the run result to this JSON file")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if simulateFlags.date != "" {
		cfg.Simulation.Date = simulateFlags.date
	}
	if simulateFlags.capacity >= 0 {
		cfg.Battery.CapacityKWh = simulateFlags.capacity
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	res, err := svc.Simulate(ctx)
	if err != nil {
		return err
	}
	if err := printRun(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if len(res.Days) == 0 {
		return nil
	}
	first := res.Days[0]
	if p := simulateFlags.ledger; p != "" {
		if err := writeTo(p, func(w io.Writer) error {
			return export.WriteSamplesCSV(w, first.Production, first.Consumption, first.Samples)
		}); err != nil {
			return err
		}
	}
	if p := simulateFlags.chart; p != "" {
		if err := writeTo(p, func(w io.Writer) error { return chart.RenderDay(w, first) }); err != nil {
			return err
		}
	}
	if p := simulateFlags.json; p != "" {
		if err := writeTo(p, func(w io.Writer) error { return export.WriteReportsJSON(w, res) }); err != nil {
			return err
		}
	}
	return nil
}

func printRun(out io.Writer, res *engine.RunResult) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "day\tproduction kWh\tconsumption kWh\tinjected kWh\timported kWh\tself-consumption %\tfinal SOC kWh\t")
	for _, d := range res.Days {
		s := d.Stats
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f\t%.2f\t\n", d.Day,
			s.ProductionTotalKWh, s.ConsumptionTotalKWh, s.InjectedKWh, s.ImportedKWh, s.SelfConsumptionPct, d.FinalSoCKWh)
	}
	p := res.Period
	fmt.Fprintf(tw, "total (%d days)\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f\t\t\n", p.Days,
		p.ProductionTotalKWh, p.ConsumptionTotalKWh, p.InjectedKWh, p.ImportedKWh, p.SelfConsumptionPct)
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "run %s in %s\n", res.RunID, res.Duration)
	return err
}

func writeTo(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
