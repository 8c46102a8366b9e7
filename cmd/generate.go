package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvsim/app"
	"github.com/kilianp07/pvsim/infra/logger"
)

var generateFlags struct {
	source      string
	consumption string
	year        int
	out    string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a year of production and consumption data",
	RunE:  generate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateFlags.source, "source", "", "production source: synthetic, sun or pvgis")
	f.StringVar(&generateFlags.consumption, "consumption", "", "consumption source: synthetic or enedis")
	f.IntVar(&generateFlags.year, "year", 0, "calendar year to generate")
	f.StringVar(&generateFlags.out, "out", "", "output directory")
	rootCmd.AddCommand(generateCmd)
}

func generate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if generateFlags.source != "" {
		cfg.Generator.Source = generateFlags.source
	}
	if generateFlags.consumption != "" {
		cfg.Generator.ConsumptionSource = generateFlags.consumption
	}
	if generateFlags.year != 0 {
		cfg.Generator.Year = generateFlags.year
	}
	if generateFlags.out != "" {
		cfg.Generator.OutDir = generateFlags.out
	}
	if err := cfg.Generator.Validate(); err != nil {
		return err
	}
	ds, err := app.Generate(ctx, cfg, logger.New("generate"))
	if err != nil {
		return err
	}
	m := ds.Metadata
	_, err = fmt.Fprintf(cmd.OutOrStdout(),
		"%s production, %s consumption, %s to %s, %d records\nmean daily production %.1f kWh, consumption %.1f kWh, scale factor %.4f\n",
		ds.Source, ds.ConsumptionSource, m.DateStart, m.DateEnd, m.ConsumptionRecords,
		m.AvgDailyProductionKWh, m.AvgDailyConsumptionKWh, m.ScaleFactor)
	return err
}
