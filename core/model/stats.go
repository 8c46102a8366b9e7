package model

import "time"

// DailyStats summarises one simulated day.
type DailyStats struct {
	ProductionTotalKWh  float64   `json:"production_total_kwh"`
	ConsumptionTotalKWh float64   `json:"consumption_total_kwh"`
	ProductionMaxKW     float64   `json:"production_max_kw"`
	ProductionMaxAt     time.Time `json:"production_max_at"`
	ConsumptionMaxKW    float64   `json:"consumption_max_kw"`
	ConsumptionMaxAt    time.Time `json:"consumption_max_at"`
	GridBalanceKWh      float64   `json:"grid_balance_kwh"`
	InjectedKWh         float64   `json:"injected_kwh"`
	ImportedKWh         float64   `json:"imported_kwh"`
	SelfConsumedKWh     float64   `json:"self_consumed_kwh"`
	SelfConsumptionPct  float64   `json:"self_consumption_pct"`
}

// PeriodStats aggregates several days.
type PeriodStats struct {
	Days                int       `json:"days"`
	ProductionTotalKWh  float64   `json:"production_total_kwh"`
	ConsumptionTotalKWh float64   `json:"consumption_total_kwh"`
	ProductionMaxKW     float64   `json:"production_max_kw"`
	ProductionMaxAt     time.Time `json:"production_max_at"`
	ConsumptionMaxKW    float64   `json:"consumption_max_kw"`
	ConsumptionMaxAt    time.Time `json:"consumption_max_at"`
	GridBalanceKWh      float64   `json:"grid_balance_kwh"`
	InjectedKWh         float64   `json:"injected_kwh"`
	ImportedKWh         float64   `json:"imported_kwh"`
	SelfConsumedKWh     float64   `json:"self_consumed_kwh"`
	SelfConsumptionPct  float64   `json:"self_consumption_pct"`
}
