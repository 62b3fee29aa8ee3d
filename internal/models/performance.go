package models

import (
	"time"
)

// PerformanceSchemaVersion is the current schema version written into daily
// and consolidated records. Bump when the record shape changes and add a
// migration in migrate.go.
const PerformanceSchemaVersion = 2

// OverallAccount is the synthetic account name used for the per-user record
// that aggregates all real accounts.
const OverallAccount = "overall"

// DateKeyLayout is the canonical date key format for daily records.
const DateKeyLayout = "2006-01-02"

// AssetDay holds one asset's performance figures for one day, in one currency.
type AssetDay struct {
	TotalValue              float64 `json:"total_value"`
	TotalInvestment         float64 `json:"total_investment"` // cost basis
	TotalCashFlow           float64 `json:"total_cash_flow"`  // signed: negative = money out to buy
	DoneProfitAndLoss       float64 `json:"done_profit_and_loss"`
	UnrealizedProfitAndLoss float64 `json:"unrealized_profit_and_loss"`
	TotalROIPct             float64 `json:"total_roi_pct"`
	DailyChangePct          float64 `json:"daily_change_pct"`
	AdjustedDailyChangePct  float64 `json:"adjusted_daily_change_pct"`
	DailyReturn             float64 `json:"daily_return"` // AdjustedDailyChangePct / 100
	Units                   float64 `json:"units"`
	// MissingPrice flags a held asset with no market price today. The asset
	// contributes zero value rather than failing the day.
	MissingPrice bool `json:"missing_price,omitempty"`
	// Anomalous flags a day where the asset's adjusted change exceeded the
	// configured magnitude guard and was suppressed to zero.
	Anomalous bool `json:"anomalous,omitempty"`
}

// CurrencyDay holds one currency's view of a day, including the per-asset
// breakdown.
type CurrencyDay struct {
	TotalValue              float64               `json:"total_value"`
	TotalInvestment         float64               `json:"total_investment"`
	TotalCashFlow           float64               `json:"total_cash_flow"`
	DoneProfitAndLoss       float64               `json:"done_profit_and_loss"`
	UnrealizedProfitAndLoss float64               `json:"unrealized_profit_and_loss"`
	TotalROIPct             float64               `json:"total_roi_pct"`
	DailyChangePct          float64               `json:"daily_change_pct"`
	AdjustedDailyChangePct  float64               `json:"adjusted_daily_change_pct"`
	DailyReturn             float64               `json:"daily_return"`
	AssetPerformance        map[AssetKey]AssetDay `json:"asset_performance"`
}

// DailyPerformanceRecord is one account's performance for one day, broken
// down per reporting currency. Immutable once the day is closed; the current
// day's record may be overwritten intraday.
type DailyPerformanceRecord struct {
	Account       string                 `json:"account"`
	Date          time.Time              `json:"date"`
	PerCurrency   map[string]CurrencyDay `json:"per_currency"`
	SchemaVersion int                    `json:"schema_version"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// DateKey returns the canonical storage key for the record's date.
func (r *DailyPerformanceRecord) DateKey() string {
	return r.Date.Format(DateKeyLayout)
}

// Currency returns the named currency day, or a zero value if absent.
func (r *DailyPerformanceRecord) Currency(code string) CurrencyDay {
	if r == nil || r.PerCurrency == nil {
		return CurrencyDay{}
	}
	return r.PerCurrency[code]
}
