package performance

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/foliotrack/folio/internal/models"
)

// tradingDaysPerYear is the conventional annualization factor for daily
// return volatility.
const tradingDaysPerYear = 252

// ComputeReturnStatistics summarizes an account's daily return series in one
// currency: mean daily return, annualized volatility, max drawdown, and the
// best and worst single days. Returns nil when no record carries the
// requested currency.
func ComputeReturnStatistics(days []models.DailyPerformanceRecord, currency string) *models.ReturnStatistics {
	sorted := make([]models.DailyPerformanceRecord, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var (
		returns  []float64
		account  string
		cumul    = 1.0
		peak     = 1.0
		drawdown float64
	)

	result := &models.ReturnStatistics{Currency: currency}

	for _, day := range sorted {
		cd, ok := day.PerCurrency[currency]
		if !ok {
			continue
		}
		if account == "" {
			account = day.Account
			result.From = day.Date
		}
		result.To = day.Date

		returns = append(returns, cd.AdjustedDailyChangePct)

		cumul *= 1 + cd.AdjustedDailyChangePct/100
		if cumul > peak {
			peak = cumul
		}
		if peak > 0 {
			if dd := (peak - cumul) / peak * 100; dd > drawdown {
				drawdown = dd
			}
		}
	}

	if len(returns) == 0 {
		return nil
	}

	result.Account = account
	result.Days = len(returns)
	result.CumulativeReturnPct = (cumul - 1) * 100
	result.MaxDrawdownPct = drawdown

	if mean, err := stats.Mean(returns); err == nil {
		result.MeanDailyReturnPct = mean
	}
	if len(returns) > 1 {
		if sd, err := stats.StandardDeviationSample(returns); err == nil {
			result.AnnualizedVolatilityPct = sd * math.Sqrt(tradingDaysPerYear)
		}
	}
	if best, err := stats.Max(returns); err == nil {
		result.BestDayPct = best
	}
	if worst, err := stats.Min(returns); err == nil {
		result.WorstDayPct = worst
	}

	return result
}
