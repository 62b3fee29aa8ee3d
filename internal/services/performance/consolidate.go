package performance

import (
	"fmt"
	"sort"
	"time"

	"github.com/foliotrack/folio/internal/models"
)

// Consolidate compresses a closed period's daily records into one summary
// record per currency and asset. Returns nil for empty input.
//
// The period must be fully closed: now strictly after the period's end date.
// Consolidating an open period is a caller error and fails loudly, as does a
// daily record dated outside the period bounds.
//
// Consolidation is a pure function of its inputs: the same closed period's
// records always produce an identical result, so re-running it is idempotent.
func Consolidate(dailyRecords []models.DailyPerformanceRecord, periodType models.PeriodType, periodKey string, now time.Time) (*models.ConsolidatedPeriodRecord, error) {
	if len(dailyRecords) == 0 {
		return nil, nil
	}

	start, end, err := models.PeriodBounds(periodType, periodKey)
	if err != nil {
		return nil, err
	}
	// Closed means the current date is strictly past the period's last day.
	if now.Before(end.AddDate(0, 0, 1)) {
		return nil, fmt.Errorf("%w: %s %s ends %s, now is %s", ErrOpenPeriod, periodType, periodKey,
			end.Format(models.DateKeyLayout), now.Format(models.DateKeyLayout))
	}

	days := make([]models.DailyPerformanceRecord, len(dailyRecords))
	copy(days, dailyRecords)
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	for _, d := range days {
		if d.Date.Before(start) || !d.Date.Before(end.AddDate(0, 0, 1)) {
			return nil, fmt.Errorf("%w: record dated %s in %s %s", ErrOutsidePeriod,
				d.Date.Format(models.DateKeyLayout), periodType, periodKey)
		}
	}

	record := &models.ConsolidatedPeriodRecord{
		Account:       days[0].Account,
		PeriodType:    periodType,
		PeriodKey:     periodKey,
		StartDate:     start,
		EndDate:       end,
		DocsCount:     len(days),
		SchemaVersion: models.PerformanceSchemaVersion,
		PerCurrency:   make(map[string]models.CurrencyPeriod),
	}

	for _, cur := range currenciesOf(days) {
		record.PerCurrency[cur] = consolidateCurrency(days, cur)
	}

	return record, nil
}

// consolidateCurrency compresses one currency's daily sequence. Each period
// starts its own local compounding base: startFactor is 1 and endFactor is
// the product of (1 + dailyAdjustedChange/100) in date order.
func consolidateCurrency(days []models.DailyPerformanceRecord, cur string) models.CurrencyPeriod {
	cp := models.CurrencyPeriod{
		StartFactor:      1,
		EndFactor:        1,
		AssetPerformance: make(map[models.AssetKey]models.AssetPeriod),
	}

	first := true
	for _, day := range days {
		cd, ok := day.PerCurrency[cur]
		if !ok {
			continue
		}
		if first {
			cp.StartTotalValue = cd.TotalValue
			first = false
		}
		cp.EndFactor *= 1 + cd.AdjustedDailyChangePct/100
		cp.TotalCashFlow += cd.TotalCashFlow
		cp.EndTotalValue = cd.TotalValue

		for key, ad := range cd.AssetPerformance {
			ap, seen := cp.AssetPerformance[key]
			if !seen {
				ap = models.AssetPeriod{StartFactor: 1, EndFactor: 1, StartTotalValue: ad.TotalValue}
			}
			ap.EndFactor *= 1 + ad.AdjustedDailyChangePct/100
			ap.TotalCashFlow += ad.TotalCashFlow
			ap.EndTotalValue = ad.TotalValue
			ap.DocsCount++
			cp.AssetPerformance[key] = ap
		}
	}

	cp.PeriodReturnPct = (cp.EndFactor/cp.StartFactor - 1) * 100
	cp.PersonalReturnPct = modifiedDietz(cp.StartTotalValue, cp.EndTotalValue, -cp.TotalCashFlow)

	for key, ap := range cp.AssetPerformance {
		ap.PeriodReturnPct = (ap.EndFactor/ap.StartFactor - 1) * 100
		cp.AssetPerformance[key] = ap
	}

	return cp
}

// modifiedDietz approximates the money-weighted return from start/end values
// and the period's net external contribution (money put in minus taken out,
// positive when investing). Half the net flow is assumed invested for the
// whole period. Returns a percentage, zero when the base is zero.
//
// Stored cash flows are investor-signed (buys negative), so callers negate
// the stored sum to get the contribution.
func modifiedDietz(startValue, endValue, netContribution float64) float64 {
	base := startValue + netContribution/2
	if base == 0 {
		return 0
	}
	return (endValue - startValue - netContribution) / base * 100
}
