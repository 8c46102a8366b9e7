package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/core/logger"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/profile"
	"github.com/kilianp07/pvsim/core/series"
	"github.com/kilianp07/pvsim/infra/enedis"
	"github.com/kilianp07/pvsim/infra/pvgis"
	"github.com/kilianp07/pvsim/pkg/export"
)

// Generated data set file names.
const (
	ProductionFile       = "production.csv"
	ConsumptionFile      = "consumption.csv"
	ScaledProductionFile = "production_scaled.csv"
	MetadataFile         = "metadata.json"
)

// Dataset is the outcome of Generate.
type Dataset struct {
	// Source is the production source actually used.
	Source string
	// ConsumptionSource is the consumption source actually used.
	ConsumptionSource string
	Production  model.PowerSeries
	Consumption model.PowerSeries
	Scaled      model.PowerSeries
	Metadata    series.ScaleMetadata
}

// Generate builds one year of production and consumption for the configured
// site, scales production to match consumption and writes the data set to
// cfg.Generator.OutDir. A failing PVGIS or Enedis fetch falls back to the
// synthetic curve.
func Generate(ctx context.Context, cfg *config.Config, log logger.Logger) (*Dataset, error) {
	g := cfg.Generator
	seed := g.SeedValue()
	step := model.HoursToDuration(g.TimeStepHours)
	timeline := profile.Year(g.Year, time.UTC, step)
	cons := profile.NewResidential(g.Homes, g.BaseKWPerHome, seed).Generate(timeline, g.TimeStepHours)

	ds := &Dataset{Source: g.Source, ConsumptionSource: config.SourceSynthetic}
	if g.ConsumptionSource == config.SourceEnedis {
		measured, err := fetchEnedis(ctx, cfg, cons)
		if err != nil {
			log.Warnf("Enedis unavailable (%v), falling back to synthetic consumption", err)
		} else {
			cons = measured
			ds.ConsumptionSource = config.SourceEnedis
		}
	}
	ds.Consumption = cons

	switch g.Source {
	case config.SourcePVGIS:
		client := pvgis.NewClient(cfg.PVGIS.BaseURL, cfg.PVGIS.Timeout())
		req := pvgis.Request{
			Latitude:    g.Latitude,
			Longitude:   g.Longitude,
			StartYear:   g.Year,
			EndYear:     g.Year,
			PeakPowerKW: cfg.PVGIS.PeakPowerKW,
			LossPercent: cfg.PVGIS.LossPercent,
			Angle:       cfg.PVGIS.Angle,
			Aspect:      cfg.PVGIS.Aspect,
		}
		prod, err := client.Fetch(ctx, req, g.TimeStepHours)
		if err == nil {
			prod, ds.Consumption = Intersect(prod, cons)
			if len(prod.Samples) == 0 {
				err = fmt.Errorf("PVGIS series does not cover %d", g.Year)
			}
		}
		if err != nil {
			log.Warnf("PVGIS unavailable (%v), falling back to synthetic production", err)
			ds.Source = config.SourceSynthetic
			ds.Consumption = cons
			ds.Production = profile.NewGaussianSolar(g.PeakKW, seed).Generate(timeline, g.TimeStepHours)
		} else {
			ds.Production = prod
		}
	case config.SourceSun:
		ds.Production = profile.NewSunSolar(g.PeakKW, g.Latitude, g.Longitude, seed).Generate(timeline, g.TimeStepHours)
	default:
		ds.Production = profile.NewGaussianSolar(g.PeakKW, seed).Generate(timeline, g.TimeStepHours)
	}
	if ds.ConsumptionSource == config.SourceEnedis {
		// measured stamps follow the French calendar year, not the UTC one
		ds.Production, ds.Consumption = Intersect(ds.Production, ds.Consumption)
		if len(ds.Production.Samples) == 0 {
			return nil, fmt.Errorf("enedis consumption does not overlap production for %d", g.Year)
		}
	}

	scaled, meta, err := series.ScaleToMatch(ds.Production, ds.Consumption, time.UTC)
	if err != nil {
		return nil, err
	}
	meta.Latitude, meta.Longitude, meta.Year = g.Latitude, g.Longitude, g.Year
	ds.Scaled, ds.Metadata = scaled, meta

	if err := ds.Write(g.OutDir); err != nil {
		return nil, err
	}
	log.Infow("data set generated", map[string]any{
		"source":       ds.Source,
		"consumption":  ds.ConsumptionSource,
		"out_dir":      g.OutDir,
		"records":      len(ds.Consumption.Samples),
		"scale_factor": meta.ScaleFactor,
	})
	return ds, nil
}

// Write stores the data set files in dir.
func (ds *Dataset) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := []struct {
		name  string
		write func(f *os.File) error
	}{
		{ProductionFile, func(f *os.File) error { return export.WriteSeriesCSV(f, ds.Production, "production_kw") }},
		{ConsumptionFile, func(f *os.File) error { return export.WriteSeriesCSV(f, ds.Consumption, "consumption_kw") }},
		{ScaledProductionFile, func(f *os.File) error { return export.WriteSeriesCSV(f, ds.Scaled, "production_kw") }},
		{MetadataFile, func(f *os.File) error { return export.WriteMetadata(f, ds.Metadata) }},
	}
	for _, file := range files {
		if err := writeFile(filepath.Join(dir, file.name), file.write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
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

// Intersect keeps the samples whose timestamps appear in both series.
func Intersect(a, b model.PowerSeries) (model.PowerSeries, model.PowerSeries) {
	seen := make(map[int64]struct{}, len(b.Samples))
	for _, s := range b.Samples {
		seen[s.Timestamp.UnixNano()] = struct{}{}
	}
	outA := model.PowerSeries{TimeStepHours: a.TimeStepHours}
	common := make(map[int64]struct{}, len(a.Samples))
	for _, s := range a.Samples {
		if _, ok := seen[s.Timestamp.UnixNano()]; ok {
			outA.Samples = append(outA.Samples, s)
			common[s.Timestamp.UnixNano()] = struct{}{}
		}
	}
	outB := model.PowerSeries{TimeStepHours: b.TimeStepHours}
	for _, s := range b.Samples {
		if _, ok := common[s.Timestamp.UnixNano()]; ok {
			outB.Samples = append(outB.Samples, s)
		}
	}
	return outA, outB
}

// fetchEnedis returns the regional Enedis load shape resampled to the
// generator step and scaled to the mean daily energy of the synthetic site.
func fetchEnedis(ctx context.Context, cfg *config.Config, site model.PowerSeries) (model.PowerSeries, error) {
	client := enedis.NewClient(cfg.Enedis.BaseURL, cfg.Enedis.Timeout())
	client.PageSize = cfg.Enedis.PageSize
	measured, err := client.Fetch(ctx, cfg.Generator.Year, cfg.Generator.TimeStepHours)
	if err != nil {
		return model.PowerSeries{}, err
	}
	scaled, _, err := series.ScaleToMatch(measured, site, time.UTC)
	if err != nil {
		return model.PowerSeries{}, fmt.Errorf("scale enedis consumption: %w", err)
	}
	return scaled, nil
}
