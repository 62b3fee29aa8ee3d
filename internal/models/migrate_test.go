package models

import (
	"math"
	"testing"
	"time"
)

func TestMigrateDailyRecordFromV1(t *testing.T) {
	key, _ := NewAssetKey("ACME", AssetTypeStock)
	r := &DailyPerformanceRecord{
		Account:       "main",
		Date:          time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
		SchemaVersion: 1,
		PerCurrency: map[string]CurrencyDay{
			"USD": {
				AdjustedDailyChangePct: 2.5,
				AssetPerformance: map[AssetKey]AssetDay{
					key: {AdjustedDailyChangePct: 2.5},
				},
			},
		},
	}

	if err := MigrateDailyRecord(r); err != nil {
		t.Fatalf("MigrateDailyRecord failed: %v", err)
	}
	if r.SchemaVersion != PerformanceSchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", r.SchemaVersion, PerformanceSchemaVersion)
	}
	if got := r.Currency("USD").DailyReturn; math.Abs(got-0.025) > 1e-12 {
		t.Errorf("DailyReturn = %f, want 0.025", got)
	}
	if got := r.Currency("USD").AssetPerformance[key].DailyReturn; math.Abs(got-0.025) > 1e-12 {
		t.Errorf("asset DailyReturn = %f, want 0.025", got)
	}
}

func TestMigrateDailyRecordCurrentUnchanged(t *testing.T) {
	r := &DailyPerformanceRecord{
		SchemaVersion: PerformanceSchemaVersion,
		PerCurrency: map[string]CurrencyDay{
			"USD": {AdjustedDailyChangePct: 2.5, DailyReturn: 0.99},
		},
	}
	if err := MigrateDailyRecord(r); err != nil {
		t.Fatalf("MigrateDailyRecord failed: %v", err)
	}
	if got := r.Currency("USD").DailyReturn; got != 0.99 {
		t.Errorf("DailyReturn rewritten to %f", got)
	}
}

func TestMigrateDailyRecordFutureVersionRejected(t *testing.T) {
	r := &DailyPerformanceRecord{SchemaVersion: PerformanceSchemaVersion + 1}
	if err := MigrateDailyRecord(r); err == nil {
		t.Error("expected error for future schema version")
	}
}

func TestMigrateNilRecords(t *testing.T) {
	if err := MigrateDailyRecord(nil); err != nil {
		t.Errorf("MigrateDailyRecord(nil) = %v", err)
	}
	if err := MigratePeriodRecord(nil); err != nil {
		t.Errorf("MigratePeriodRecord(nil) = %v", err)
	}
}

func TestMigratePeriodRecordFromV1(t *testing.T) {
	r := &ConsolidatedPeriodRecord{
		Account:       "main",
		PeriodType:    PeriodMonth,
		PeriodKey:     "2025-05",
		SchemaVersion: 1,
		PerCurrency: map[string]CurrencyPeriod{
			"USD": {PeriodReturnPct: 4.5},
		},
	}

	if err := MigratePeriodRecord(r); err != nil {
		t.Fatalf("MigratePeriodRecord failed: %v", err)
	}
	cp := r.Currency("USD")
	if cp.StartFactor != 1 {
		t.Errorf("StartFactor = %f, want 1", cp.StartFactor)
	}
	if math.Abs(cp.EndFactor-1.045) > 1e-12 {
		t.Errorf("EndFactor = %f, want 1.045", cp.EndFactor)
	}
}
