package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func dailyFor(account string, date time.Time, value float64) *models.DailyPerformanceRecord {
	return &models.DailyPerformanceRecord{
		Account:       account,
		Date:          date,
		SchemaVersion: models.PerformanceSchemaVersion,
		PerCurrency: map[string]models.CurrencyDay{
			"USD": {TotalValue: value},
		},
	}
}

func TestPerformanceStorage_DailyRoundTrip(t *testing.T) {
	store := openTestStore(t)
	perf := NewPerformanceStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	date := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	require.NoError(t, perf.SaveDaily(ctx, dailyFor("main", date, 1000)))

	got, err := perf.GetDaily(ctx, "main", date)
	require.NoError(t, err)
	assert.Equal(t, "main", got.Account)
	assert.InDelta(t, 1000.0, got.Currency("USD").TotalValue, 1e-9)

	_, err = perf.GetDaily(ctx, "main", date.AddDate(0, 0, 1))
	assert.Error(t, err)
}

func TestPerformanceStorage_SaveDailyIdempotent(t *testing.T) {
	store := openTestStore(t)
	perf := NewPerformanceStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	date := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	require.NoError(t, perf.SaveDaily(ctx, dailyFor("main", date, 1000)))
	require.NoError(t, perf.SaveDaily(ctx, dailyFor("main", date, 1100)))

	got, err := perf.GetDaily(ctx, "main", date)
	require.NoError(t, err)
	assert.InDelta(t, 1100.0, got.Currency("USD").TotalValue, 1e-9)

	all, err := perf.GetDailyRange(ctx, "main", date.AddDate(0, 0, -1), date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPerformanceStorage_RangeAndLatestBefore(t *testing.T) {
	store := openTestStore(t)
	perf := NewPerformanceStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	base := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, perf.SaveDaily(ctx, dailyFor("main", base.AddDate(0, 0, i), float64(1000+i))))
	}
	require.NoError(t, perf.SaveDaily(ctx, dailyFor("other", base, 99)))

	got, err := perf.GetDailyRange(ctx, "main", base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Date.Before(got[1].Date))
	assert.True(t, got[1].Date.Before(got[2].Date))

	latest, err := perf.GetLatestDailyBefore(ctx, "main", base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, base.AddDate(0, 0, 2), latest.Date)

	none, err := perf.GetLatestDailyBefore(ctx, "main", base)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPerformanceStorage_PeriodRoundTrip(t *testing.T) {
	store := openTestStore(t)
	perf := NewPerformanceStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	record := &models.ConsolidatedPeriodRecord{
		Account:       "main",
		PeriodType:    models.PeriodMonth,
		PeriodKey:     "2025-05",
		StartDate:     time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		DocsCount:     21,
		SchemaVersion: models.PerformanceSchemaVersion,
		PerCurrency: map[string]models.CurrencyPeriod{
			"USD": {StartFactor: 1, EndFactor: 1.04},
		},
	}
	require.NoError(t, perf.SavePeriod(ctx, record))

	got, err := perf.GetPeriod(ctx, "main", models.PeriodMonth, "2025-05")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 21, got.DocsCount)
	assert.InDelta(t, 1.04, got.Factor("USD"), 1e-9)

	missing, err := perf.GetPeriod(ctx, "main", models.PeriodMonth, "2025-06")
	require.NoError(t, err)
	assert.Nil(t, missing)

	listed, err := perf.ListPeriods(ctx, "main", models.PeriodMonth)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "2025-05", listed[0].PeriodKey)
}

func TestLedgerStorage_AppendAndQuery(t *testing.T) {
	store := openTestStore(t)
	ledger := NewLedgerStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	base := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		tx, err := models.NewTransaction("main", "ACME", models.AssetTypeStock, models.TxBuy, 1, 100, "USD", base.AddDate(0, 0, i))
		require.NoError(t, err)
		require.NoError(t, ledger.Append(ctx, tx))
	}

	all, err := ledger.List(ctx, "main")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mid, err := ledger.GetTransactions(ctx, "main", base.AddDate(0, 0, 1), base.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, mid, 1)
	assert.Equal(t, base.AddDate(0, 0, 1), mid[0].Date)

	other, err := ledger.List(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestLedgerStorage_UpperBoundExclusive(t *testing.T) {
	store := openTestStore(t)
	ledger := NewLedgerStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	day := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	for _, date := range []time.Time{day, day.AddDate(0, 0, 1)} {
		tx, err := models.NewTransaction("main", "ACME", models.AssetTypeStock, models.TxBuy, 1, 100, "USD", date)
		require.NoError(t, err)
		require.NoError(t, ledger.Append(ctx, tx))
	}

	// A midnight-dated transaction on the next day belongs to that day's
	// close only, never to the preceding one.
	got, err := ledger.GetTransactions(ctx, "main", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, day, got[0].Date)
}

func TestHoldingStorage_Snapshots(t *testing.T) {
	store := openTestStore(t)
	holdings := NewHoldingStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	day := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

	none, err := holdings.GetHoldingsBefore(ctx, "main", day)
	require.NoError(t, err)
	assert.Nil(t, none)

	holdingOf := func(units float64) []models.Holding {
		return []models.Holding{{
			AssetName:    "ACME",
			AssetType:    models.AssetTypeStock,
			Units:        units,
			UnitCost:     12.5,
			CostCurrency: "USD",
		}}
	}
	require.NoError(t, holdings.SaveHoldings(ctx, "main", day, holdingOf(10)))
	require.NoError(t, holdings.SaveHoldings(ctx, "main", day.AddDate(0, 0, 1), holdingOf(15)))

	// The snapshot for a date is not visible to that date's own close.
	got, err := holdings.GetHoldingsBefore(ctx, "main", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 10.0, got[0].Units, 1e-9)

	got, err = holdings.GetHoldingsBefore(ctx, "main", day.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 15.0, got[0].Units, 1e-9)
}

func TestHoldingStorage_SaveIdempotentPerDate(t *testing.T) {
	store := openTestStore(t)
	holdings := NewHoldingStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	day := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	set := []models.Holding{{AssetName: "ACME", AssetType: models.AssetTypeStock, Units: 10, UnitCost: 12.5, CostCurrency: "USD"}}
	require.NoError(t, holdings.SaveHoldings(ctx, "main", day, set))
	require.NoError(t, holdings.SaveHoldings(ctx, "main", day, set))

	got, err := holdings.GetHoldingsBefore(ctx, "main", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 10.0, got[0].Units, 1e-9)
}
