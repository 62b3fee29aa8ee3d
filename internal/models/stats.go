package models

import "time"

// ReturnStatistics summarizes an account's daily return series in one
// currency. Computed on demand from daily records, never persisted.
type ReturnStatistics struct {
	Account  string    `json:"account"`
	Currency string    `json:"currency"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Days     int       `json:"days"`

	MeanDailyReturnPct      float64 `json:"mean_daily_return_pct"`
	AnnualizedVolatilityPct float64 `json:"annualized_volatility_pct"`
	MaxDrawdownPct          float64 `json:"max_drawdown_pct"`
	BestDayPct              float64 `json:"best_day_pct"`
	WorstDayPct             float64 `json:"worst_day_pct"`
	CumulativeReturnPct     float64 `json:"cumulative_return_pct"`
}
