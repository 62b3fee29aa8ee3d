package performance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliotrack/folio/internal/models"
)

var (
	testDate      = time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	testYesterday = testDate.AddDate(0, 0, -1)
)

func usdCalculator(t *testing.T) *Calculator {
	t.Helper()
	return NewCalculator(CalculatorConfig{
		Currencies:          []string{"USD"},
		DefaultCurrency:     "USD",
		AnomalyThresholdPct: 50,
	}, nil)
}

func usdOnlyRates(t *testing.T) *models.RateTable {
	t.Helper()
	rates, err := models.NewRateTable("USD", nil)
	require.NoError(t, err)
	return rates
}

func holdingOf(t *testing.T, name string, units, unitCost float64) models.Holding {
	t.Helper()
	return models.Holding{
		AssetName:       name,
		AssetType:       models.AssetTypeStock,
		Units:           units,
		UnitCost:        unitCost,
		CostCurrency:    "USD",
		AcquisitionDate: testYesterday.AddDate(0, -6, 0),
	}
}

func priceOf(amount float64) models.AssetPrice {
	return models.AssetPrice{Amount: amount, Currency: "USD"}
}

func keyOf(t *testing.T, name string) models.AssetKey {
	t.Helper()
	key, err := models.NewAssetKey(name, models.AssetTypeStock)
	require.NoError(t, err)
	return key
}

// yesterdayRecord builds a prior-day record with one USD asset entry.
func yesterdayRecord(t *testing.T, name string, value, investment float64) *models.DailyPerformanceRecord {
	t.Helper()
	key := keyOf(t, name)
	return &models.DailyPerformanceRecord{
		Account:       "main",
		Date:          testYesterday,
		SchemaVersion: models.PerformanceSchemaVersion,
		PerCurrency: map[string]models.CurrencyDay{
			"USD": {
				TotalValue:      value,
				TotalInvestment: investment,
				AssetPerformance: map[models.AssetKey]models.AssetDay{
					key: {TotalValue: value, TotalInvestment: investment},
				},
			},
		},
	}
}

func TestComputeDay_NoTransactions(t *testing.T) {
	// 10 units valued $100 yesterday, no transactions, $110 today:
	// raw change = adjusted change = 10%, cash flow = 0.
	calc := usdCalculator(t)
	holdings := []models.Holding{holdingOf(t, "ACME", 10, 8)}
	prices := models.PriceTable{keyOf(t, "ACME"): priceOf(11)}
	yesterday := yesterdayRecord(t, "ACME", 100, 80)

	record, err := calc.ComputeDay("main", testDate, holdings, prices, usdOnlyRates(t), yesterday, nil)
	require.NoError(t, err)

	cd := record.Currency("USD")
	assert.InDelta(t, 110.0, cd.TotalValue, 1e-9)
	assert.InDelta(t, 10.0, cd.DailyChangePct, 1e-9)
	assert.InDelta(t, 10.0, cd.AdjustedDailyChangePct, 1e-9)
	assert.InDelta(t, 0.1, cd.DailyReturn, 1e-9)
	assert.Zero(t, cd.TotalCashFlow)
	assert.InDelta(t, cd.TotalValue-cd.TotalInvestment, cd.UnrealizedProfitAndLoss, 1e-9)
}

func TestComputeDay_BuyIsCashFlowNeutral(t *testing.T) {
	// Buy 5 units for $500; value goes from $100 to $600.
	// Adjusted change = (600-100-500)/100 = 0%, raw change = 500%.
	calc := usdCalculator(t)
	holdings := []models.Holding{holdingOf(t, "ACME", 10, 10)}
	buy, err := models.NewTransaction("main", "ACME", models.AssetTypeStock, models.TxBuy, 5, 100, "USD", testDate)
	require.NoError(t, err)

	// 15 units at $40 = $600 end-of-day value.
	prices := models.PriceTable{keyOf(t, "ACME"): priceOf(40)}
	yesterday := yesterdayRecord(t, "ACME", 100, 100)

	record, err := calc.ComputeDay("main", testDate, holdings, prices, usdOnlyRates(t), yesterday, []models.Transaction{*buy})
	require.NoError(t, err)

	cd := record.Currency("USD")
	assert.InDelta(t, 600.0, cd.TotalValue, 1e-9)
	assert.InDelta(t, -500.0, cd.TotalCashFlow, 1e-9)
	assert.InDelta(t, 500.0, cd.DailyChangePct, 1e-9)
	assert.InDelta(t, 0.0, cd.AdjustedDailyChangePct, 1e-9)
}

func TestComputeDay_NewInvestmentGuard(t *testing.T) {
	// No yesterday record: adjusted change forced to 0 even though value
	// appeared from nothing.
	calc := usdCalculator(t)
	holdings := []models.Holding{holdingOf(t, "ACME", 10, 10)}
	prices := models.PriceTable{keyOf(t, "ACME"): priceOf(12)}

	record, err := calc.ComputeDay("main", testDate, holdings, prices, usdOnlyRates(t), nil, nil)
	require.NoError(t, err)

	cd := record.Currency("USD")
	assert.InDelta(t, 120.0, cd.TotalValue, 1e-9)
	assert.Zero(t, cd.AdjustedDailyChangePct)
	assert.Zero(t, cd.DailyChangePct)

	ad := cd.AssetPerformance[keyOf(t, "ACME")]
	assert.Zero(t, ad.AdjustedDailyChangePct)
}

func TestComputeDay_MissingPriceFlagged(t *testing.T) {
	calc := usdCalculator(t)
	holdings := []models.Holding{
		holdingOf(t, "ACME", 10, 10),
		holdingOf(t, "NOPX", 5, 20),
	}
	prices := models.PriceTable{keyOf(t, "ACME"): priceOf(10)}
	yesterday := yesterdayRecord(t, "ACME", 100, 100)

	record, err := calc.ComputeDay("main", testDate, holdings, prices, usdOnlyRates(t), yesterday, nil)
	require.NoError(t, err)

	cd := record.Currency("USD")
	missing := cd.AssetPerformance[keyOf(t, "NOPX")]
	assert.True(t, missing.MissingPrice)
	assert.Zero(t, missing.TotalValue)

	// The priced asset is unaffected.
	assert.InDelta(t, 100.0, cd.AssetPerformance[keyOf(t, "ACME")].TotalValue, 1e-9)
}

func TestComputeDay_AnomalyGuardSuppressesExtremeMove(t *testing.T) {
	// An 80% single-asset move exceeds the 50% guard: the asset's change
	// fields reset to zero and the day is flagged.
	calc := usdCalculator(t)
	holdings := []models.Holding{holdingOf(t, "ACME", 10, 10)}
	prices := models.PriceTable{keyOf(t, "ACME"): priceOf(18)}
	yesterday := yesterdayRecord(t, "ACME", 100, 100)

	record, err := calc.ComputeDay("main", testDate, holdings, prices, usdOnlyRates(t), yesterday, nil)
	require.NoError(t, err)

	ad := record.Currency("USD").AssetPerformance[keyOf(t, "ACME")]
	assert.True(t, ad.Anomalous)
	assert.Zero(t, ad.AdjustedDailyChangePct)
	assert.Zero(t, ad.DailyChangePct)
}

func TestComputeDay_RealizedPnLWeightedAverageCost(t *testing.T) {
	// 10 units at average cost $10. Sell 5 at $20: realized P&L is
	// 5*20 - 5*10 = $50 against the weighted-average cost, and the
	// remaining position keeps the same average cost.
	calc := usdCalculator(t)
	holdings := []models.Holding{holdingOf(t, "ACME", 10, 10)}
	sell, err := models.NewTransaction("main", "ACME", models.AssetTypeStock, models.TxSell, 5, 20, "USD", testDate)
	require.NoError(t, err)

	prices := models.PriceTable{keyOf(t, "ACME"): priceOf(20)}
	yesterday := yesterdayRecord(t, "ACME", 180, 100)

	record, err := calc.ComputeDay("main", testDate, holdings, prices, usdOnlyRates(t), yesterday, []models.Transaction{*sell})
	require.NoError(t, err)

	cd := record.Currency("USD")
	assert.InDelta(t, 50.0, cd.DoneProfitAndLoss, 1e-9)
	assert.InDelta(t, 100.0, cd.TotalValue, 1e-9)     // 5 units left at $20
	assert.InDelta(t, 50.0, cd.TotalInvestment, 1e-9) // 5 units at avg cost $10
	assert.InDelta(t, 100.0, cd.TotalCashFlow, 1e-9)  // sell proceeds

	// Remaining holdings carry the unchanged average cost.
	endOfDay, err := ApplyTransactions(holdings, []models.Transaction{*sell})
	require.NoError(t, err)
	require.Len(t, endOfDay, 1)
	assert.InDelta(t, 5.0, endOfDay[0].Units, 1e-9)
	assert.InDelta(t, 10.0, endOfDay[0].UnitCost, 1e-9)
}

func TestComputeDay_DividendIsPositiveCashFlow(t *testing.T) {
	calc := usdCalculator(t)
	holdings := []models.Holding{holdingOf(t, "ACME", 10, 10)}
	div, err := models.NewTransaction("main", "ACME", models.AssetTypeStock, models.TxDividend, 10, 0.5, "USD", testDate)
	require.NoError(t, err)

	prices := models.PriceTable{keyOf(t, "ACME"): priceOf(10)}
	yesterday := yesterdayRecord(t, "ACME", 100, 100)

	record, err := calc.ComputeDay("main", testDate, holdings, prices, usdOnlyRates(t), yesterday, []models.Transaction{*div})
	require.NoError(t, err)

	cd := record.Currency("USD")
	assert.InDelta(t, 5.0, cd.TotalCashFlow, 1e-9)
	// Units unchanged by a dividend.
	assert.InDelta(t, 10.0, cd.AssetPerformance[keyOf(t, "ACME")].Units, 1e-9)
}

func TestComputeDay_OversellFailsLoudly(t *testing.T) {
	calc := usdCalculator(t)
	holdings := []models.Holding{holdingOf(t, "ACME", 10, 10)}
	sell, err := models.NewTransaction("main", "ACME", models.AssetTypeStock, models.TxSell, 11, 20, "USD", testDate)
	require.NoError(t, err)

	_, err = calc.ComputeDay("main", testDate, holdings, models.PriceTable{}, usdOnlyRates(t), nil, []models.Transaction{*sell})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOversell)
}

func TestComputeDay_HistoricalRatePreservesCostBasis(t *testing.T) {
	// Cost basis stored in the base unit converts into the declared default
	// currency at the acquisition-time rate, not today's.
	calc := NewCalculator(CalculatorConfig{
		Currencies:      []string{"EUR"},
		DefaultCurrency: "EUR",
	}, nil)

	rates, err := models.NewRateTable("USD", map[string]float64{"EUR": 0.8})
	require.NoError(t, err)

	h := holdingOf(t, "ACME", 10, 10) // $100 cost in USD
	h.HistoricalRate = 0.9
	prices := models.PriceTable{keyOf(t, "ACME"): priceOf(10)}

	record, err := calc.ComputeDay("main", testDate, []models.Holding{h}, prices, rates, nil, nil)
	require.NoError(t, err)

	cd := record.Currency("EUR")
	assert.InDelta(t, 90.0, cd.TotalInvestment, 1e-9) // 100 x 0.9 historical
	assert.InDelta(t, 80.0, cd.TotalValue, 1e-9)      // 100 x 0.8 current
	assert.InDelta(t, -10.0, cd.UnrealizedProfitAndLoss, 1e-9)
}

func TestComputeDay_UnrealizedInvariant(t *testing.T) {
	calc := usdCalculator(t)
	holdings := []models.Holding{
		holdingOf(t, "ACME", 10, 8),
		holdingOf(t, "GLOB", 4, 25),
	}
	prices := models.PriceTable{
		keyOf(t, "ACME"): priceOf(9),
		keyOf(t, "GLOB"): priceOf(30),
	}

	record, err := calc.ComputeDay("main", testDate, holdings, prices, usdOnlyRates(t), nil, nil)
	require.NoError(t, err)

	cd := record.Currency("USD")
	assert.InDelta(t, cd.TotalValue-cd.TotalInvestment, cd.UnrealizedProfitAndLoss, 1e-9)
	for _, ad := range cd.AssetPerformance {
		assert.InDelta(t, ad.TotalValue-ad.TotalInvestment, ad.UnrealizedProfitAndLoss, 1e-9)
	}
}
