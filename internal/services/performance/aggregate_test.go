package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliotrack/folio/internal/models"
)

func accountDay(account string, value, changePct float64) models.DailyPerformanceRecord {
	return models.DailyPerformanceRecord{
		Account:       account,
		Date:          testDate,
		SchemaVersion: models.PerformanceSchemaVersion,
		PerCurrency: map[string]models.CurrencyDay{
			"USD": {
				TotalValue:             value,
				DailyChangePct:         changePct,
				AdjustedDailyChangePct: changePct,
			},
		},
	}
}

func TestAggregate_Empty(t *testing.T) {
	assert.Nil(t, Aggregate(nil))
}

func TestAggregate_SumsAndWeightsChanges(t *testing.T) {
	// $1000 up 2% and $3000 up 5%. The combined change is weighted by the
	// values before the day's move, 1000/1.02 and 3000/1.05, which lands
	// near but not exactly at the end-value-weighted 4.25%.
	a := accountDay("ira", 1000, 2)
	b := accountDay("broker", 3000, 5)

	overall := Aggregate([]models.DailyPerformanceRecord{a, b})
	require.NotNil(t, overall)
	assert.Equal(t, models.OverallAccount, overall.Account)

	cd := overall.Currency("USD")
	assert.InDelta(t, 4000.0, cd.TotalValue, 1e-9)

	preA := 1000.0 / 1.02
	preB := 3000.0 / 1.05
	want := (preA*2 + preB*5) / (preA + preB)
	assert.InDelta(t, want, cd.DailyChangePct, 1e-9)
	assert.Greater(t, cd.DailyChangePct, 2.0)
	assert.Less(t, cd.DailyChangePct, 5.0)
}

func TestAggregate_CombinedChangeBounded(t *testing.T) {
	days := []models.DailyPerformanceRecord{
		accountDay("a", 500, -3),
		accountDay("b", 2200, 1.4),
		accountDay("c", 90, 12),
		accountDay("d", 15000, -0.2),
	}

	overall := Aggregate(days)
	require.NotNil(t, overall)

	cd := overall.Currency("USD")
	assert.GreaterOrEqual(t, cd.DailyChangePct, -3.0)
	assert.LessOrEqual(t, cd.DailyChangePct, 12.0)
}

func TestAggregate_WipedOutConstituentSkipped(t *testing.T) {
	// A -100% move leaves no pre-change weight to resolve; the other
	// account alone determines the combined change.
	days := []models.DailyPerformanceRecord{
		accountDay("gone", 0, -100),
		accountDay("alive", 1000, 3),
	}

	overall := Aggregate(days)
	require.NotNil(t, overall)
	assert.InDelta(t, 3.0, overall.Currency("USD").DailyChangePct, 1e-9)
}

func TestAggregate_ZeroWeightGivesZeroChange(t *testing.T) {
	days := []models.DailyPerformanceRecord{
		accountDay("empty1", 0, 0),
		accountDay("empty2", 0, 0),
	}

	overall := Aggregate(days)
	require.NotNil(t, overall)
	assert.Zero(t, overall.Currency("USD").DailyChangePct)
	assert.Zero(t, overall.Currency("USD").AdjustedDailyChangePct)
}

func TestAggregate_MergesAssetsAcrossAccounts(t *testing.T) {
	key := keyOf(t, "ACME")
	a := accountDay("ira", 1000, 2)
	b := accountDay("broker", 3000, 5)

	aCur := a.PerCurrency["USD"]
	aCur.AssetPerformance = map[models.AssetKey]models.AssetDay{
		key: {Units: 10, TotalValue: 1000, TotalInvestment: 900, DailyChangePct: 2, AdjustedDailyChangePct: 2},
	}
	a.PerCurrency["USD"] = aCur

	bCur := b.PerCurrency["USD"]
	bCur.AssetPerformance = map[models.AssetKey]models.AssetDay{
		key: {Units: 30, TotalValue: 3000, TotalInvestment: 2500, DailyChangePct: 5, AdjustedDailyChangePct: 5, MissingPrice: true},
	}
	b.PerCurrency["USD"] = bCur

	overall := Aggregate([]models.DailyPerformanceRecord{a, b})
	require.NotNil(t, overall)

	merged := overall.Currency("USD").AssetPerformance[key]
	assert.InDelta(t, 40.0, merged.Units, 1e-9)
	assert.InDelta(t, 4000.0, merged.TotalValue, 1e-9)
	assert.InDelta(t, 3400.0, merged.TotalInvestment, 1e-9)
	assert.True(t, merged.MissingPrice)
	assert.Greater(t, merged.DailyChangePct, 2.0)
	assert.Less(t, merged.DailyChangePct, 5.0)
}

func TestAggregate_CurrencyUnion(t *testing.T) {
	a := accountDay("ira", 1000, 2)
	b := models.DailyPerformanceRecord{
		Account: "broker",
		Date:    testDate,
		PerCurrency: map[string]models.CurrencyDay{
			"EUR": {TotalValue: 800, DailyChangePct: 1, AdjustedDailyChangePct: 1},
		},
	}

	overall := Aggregate([]models.DailyPerformanceRecord{a, b})
	require.NotNil(t, overall)
	assert.InDelta(t, 1000.0, overall.Currency("USD").TotalValue, 1e-9)
	assert.InDelta(t, 800.0, overall.Currency("EUR").TotalValue, 1e-9)
}
