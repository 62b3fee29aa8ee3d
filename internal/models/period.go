package models

import (
	"fmt"
	"time"
)

// PeriodType distinguishes monthly from yearly consolidated records.
type PeriodType string

const (
	PeriodMonth PeriodType = "month"
	PeriodYear  PeriodType = "year"
)

// MonthKeyLayout and YearKeyLayout are the canonical period key formats.
const (
	MonthKeyLayout = "2006-01"
	YearKeyLayout  = "2006"
)

// PeriodBounds returns the inclusive [start, end] date range for a period key.
// Month keys look like "2024-03", year keys like "2024".
func PeriodBounds(periodType PeriodType, periodKey string) (start, end time.Time, err error) {
	switch periodType {
	case PeriodMonth:
		start, err = time.Parse(MonthKeyLayout, periodKey)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid month key '%s': %w", periodKey, err)
		}
		end = start.AddDate(0, 1, -1)
	case PeriodYear:
		start, err = time.Parse(YearKeyLayout, periodKey)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid year key '%s': %w", periodKey, err)
		}
		end = start.AddDate(1, 0, -1)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period type '%s'", periodType)
	}
	return start, end, nil
}

// AssetPeriod is one asset's compressed summary over a consolidated period.
type AssetPeriod struct {
	StartFactor     float64 `json:"start_factor"`
	EndFactor       float64 `json:"end_factor"`
	PeriodReturnPct float64 `json:"period_return_pct"`
	StartTotalValue float64 `json:"start_total_value"`
	EndTotalValue   float64 `json:"end_total_value"`
	TotalCashFlow   float64 `json:"total_cash_flow"`
	DocsCount       int     `json:"docs_count"`
}

// CurrencyPeriod is one currency's compressed summary over a consolidated
// period. Factors compound the daily adjusted changes, so
// EndFactor = StartFactor x Prod(1 + dailyAdjustedChange_i/100) in date order.
type CurrencyPeriod struct {
	StartFactor       float64                  `json:"start_factor"`
	EndFactor         float64                  `json:"end_factor"`
	PeriodReturnPct   float64                  `json:"period_return_pct"`
	StartTotalValue   float64                  `json:"start_total_value"`
	EndTotalValue     float64                  `json:"end_total_value"`
	TotalCashFlow     float64                  `json:"total_cash_flow"`
	PersonalReturnPct float64                  `json:"personal_return_pct"` // money-weighted (Modified Dietz)
	AssetPerformance  map[AssetKey]AssetPeriod `json:"asset_performance"`
}

// ConsolidatedPeriodRecord compresses a closed month's or year's daily
// records into one summary record per currency. Re-creation from the same
// inputs yields an identical record.
type ConsolidatedPeriodRecord struct {
	Account       string                    `json:"account"`
	PeriodType    PeriodType                `json:"period_type"`
	PeriodKey     string                    `json:"period_key"`
	StartDate     time.Time                 `json:"start_date"`
	EndDate       time.Time                 `json:"end_date"`
	DocsCount     int                       `json:"docs_count"`
	SchemaVersion int                       `json:"schema_version"`
	PerCurrency   map[string]CurrencyPeriod `json:"per_currency"`
}

// Currency returns the named currency period, or a zero value if absent.
func (r *ConsolidatedPeriodRecord) Currency(code string) CurrencyPeriod {
	if r == nil || r.PerCurrency == nil {
		return CurrencyPeriod{}
	}
	return r.PerCurrency[code]
}

// Factor returns the period's compounding factor (EndFactor/StartFactor) for
// a currency, defaulting to 1 when the currency is absent or degenerate.
func (r *ConsolidatedPeriodRecord) Factor(code string) float64 {
	cp := r.Currency(code)
	if cp.StartFactor == 0 {
		return 1
	}
	return cp.EndFactor / cp.StartFactor
}
