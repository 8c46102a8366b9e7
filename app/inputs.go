package app

import (
	"fmt"

	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/core/logger"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/infra/csvsource"
)

// LoadInputs reads the production and consumption files of a simulation.
func LoadInputs(cfg config.SimulationConfig, log logger.Logger) (model.PowerSeries, model.PowerSeries, error) {
	loc, err := cfg.Location()
	if err != nil {
		return model.PowerSeries{}, model.PowerSeries{}, err
	}
	opts := csvsource.Options{
		Date:          cfg.Date,
		Location:      loc,
		TimeStepHours: cfg.TimeStepHours,
		Logger:        log,
	}
	prod, err := csvsource.LoadFile(cfg.ProductionPath, opts)
	if err != nil {
		return model.PowerSeries{}, model.PowerSeries{}, fmt.Errorf("production: %w", err)
	}
	cons, err := csvsource.LoadFile(cfg.ConsumptionPath, opts)
	if err != nil {
		return model.PowerSeries{}, model.PowerSeries{}, fmt.Errorf("consumption: %w", err)
	}
	return prod, cons, nil
}
