package performance

import (
	"sort"
	"time"

	"github.com/foliotrack/folio/internal/models"
)

// Aggregate combines several accounts' daily records for the same day into
// one "overall" record.
//
// Values, investments, cash flows, and realized P&L sum directly. Daily
// change percentages are combined by pre-change-value weighting: each
// account's weight is its value before the day's change, value/(1+chg/100).
// The combination is convex, so the combined change always lies between the
// minimum and maximum of the constituent changes. A simple or value-weighted
// average does not guarantee that, and a combined figure outside its parts'
// range reads as mathematically impossible.
func Aggregate(accountDays []models.DailyPerformanceRecord) *models.DailyPerformanceRecord {
	if len(accountDays) == 0 {
		return nil
	}

	now := time.Now()
	overall := &models.DailyPerformanceRecord{
		Account:       models.OverallAccount,
		Date:          accountDays[0].Date,
		PerCurrency:   make(map[string]models.CurrencyDay),
		SchemaVersion: models.PerformanceSchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, cur := range currenciesOf(accountDays) {
		overall.PerCurrency[cur] = aggregateCurrency(accountDays, cur)
	}

	return overall
}

// aggregateCurrency merges one currency's view across all accounts.
func aggregateCurrency(accountDays []models.DailyPerformanceRecord, cur string) models.CurrencyDay {
	combined := models.CurrencyDay{
		AssetPerformance: make(map[models.AssetKey]models.AssetDay),
	}

	var rawAcc, adjAcc weightedChange
	assetRaw := make(map[models.AssetKey]*weightedChange)
	assetAdj := make(map[models.AssetKey]*weightedChange)

	for _, day := range accountDays {
		cd, ok := day.PerCurrency[cur]
		if !ok {
			continue
		}

		combined.TotalValue += cd.TotalValue
		combined.TotalInvestment += cd.TotalInvestment
		combined.TotalCashFlow += cd.TotalCashFlow
		combined.DoneProfitAndLoss += cd.DoneProfitAndLoss

		rawAcc.add(cd.TotalValue, cd.DailyChangePct)
		adjAcc.add(cd.TotalValue, cd.AdjustedDailyChangePct)

		for key, ad := range cd.AssetPerformance {
			merged := combined.AssetPerformance[key]
			merged.Units += ad.Units
			merged.TotalValue += ad.TotalValue
			merged.TotalInvestment += ad.TotalInvestment
			merged.TotalCashFlow += ad.TotalCashFlow
			merged.DoneProfitAndLoss += ad.DoneProfitAndLoss
			merged.MissingPrice = merged.MissingPrice || ad.MissingPrice
			merged.Anomalous = merged.Anomalous || ad.Anomalous
			combined.AssetPerformance[key] = merged

			if assetRaw[key] == nil {
				assetRaw[key] = &weightedChange{}
				assetAdj[key] = &weightedChange{}
			}
			assetRaw[key].add(ad.TotalValue, ad.DailyChangePct)
			assetAdj[key].add(ad.TotalValue, ad.AdjustedDailyChangePct)
		}
	}

	combined.DailyChangePct = rawAcc.combined()
	combined.AdjustedDailyChangePct = adjAcc.combined()
	combined.DailyReturn = combined.AdjustedDailyChangePct / 100
	combined.UnrealizedProfitAndLoss = combined.TotalValue - combined.TotalInvestment
	combined.TotalROIPct = roi(combined.UnrealizedProfitAndLoss, combined.DoneProfitAndLoss, combined.TotalInvestment)

	for key, ad := range combined.AssetPerformance {
		ad.DailyChangePct = assetRaw[key].combined()
		ad.AdjustedDailyChangePct = assetAdj[key].combined()
		ad.DailyReturn = ad.AdjustedDailyChangePct / 100
		ad.UnrealizedProfitAndLoss = ad.TotalValue - ad.TotalInvestment
		ad.TotalROIPct = roi(ad.UnrealizedProfitAndLoss, ad.DoneProfitAndLoss, ad.TotalInvestment)
		combined.AssetPerformance[key] = ad
	}

	return combined
}

// weightedChange accumulates the pre-change-value weighting combination.
type weightedChange struct {
	weightSum   float64 // sum of pre-change values
	weightedSum float64 // sum of pre-change value x change
}

// add folds in one constituent's value and change percentage. The pre-change
// value is value/(1+chg/100); a constituent wiped out on the day (factor
// <= 0) carries no resolvable weight and is skipped.
func (w *weightedChange) add(value, changePct float64) {
	factor := 1 + changePct/100
	if factor <= 0 || value == 0 {
		return
	}
	pre := value / factor
	w.weightSum += pre
	w.weightedSum += pre * changePct
}

// combined returns the convex combination, zero when every constituent had
// zero pre-change value.
func (w *weightedChange) combined() float64 {
	if w == nil || w.weightSum == 0 {
		return 0
	}
	return w.weightedSum / w.weightSum
}

// currenciesOf returns the sorted union of currency codes across records.
func currenciesOf(records []models.DailyPerformanceRecord) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, r := range records {
		for cur := range r.PerCurrency {
			if !seen[cur] {
				seen[cur] = true
				codes = append(codes, cur)
			}
		}
	}
	sort.Strings(codes)
	return codes
}
