package models

import "fmt"

// Schema history:
//   v1: daily records carried only AdjustedDailyChangePct; DailyReturn and
//       the per-asset Units field were added in v2. Consolidated records in
//       v1 stored PeriodReturnPct but not StartFactor/EndFactor.
//   v2: current.

// MigrateDailyRecord upgrades a stored daily record to the current schema
// version in place. Records already current are returned unchanged. A record
// from a future schema version is an error: it means a newer binary wrote it.
func MigrateDailyRecord(r *DailyPerformanceRecord) error {
	if r == nil {
		return nil
	}
	switch {
	case r.SchemaVersion == PerformanceSchemaVersion:
		return nil
	case r.SchemaVersion > PerformanceSchemaVersion:
		return fmt.Errorf("daily record %s/%s has schema v%d, newer than supported v%d",
			r.Account, r.DateKey(), r.SchemaVersion, PerformanceSchemaVersion)
	}

	// v1 -> v2: derive DailyReturn from the adjusted percentage.
	for code, cd := range r.PerCurrency {
		cd.DailyReturn = cd.AdjustedDailyChangePct / 100
		for key, ad := range cd.AssetPerformance {
			ad.DailyReturn = ad.AdjustedDailyChangePct / 100
			cd.AssetPerformance[key] = ad
		}
		r.PerCurrency[code] = cd
	}
	r.SchemaVersion = PerformanceSchemaVersion
	return nil
}

// MigratePeriodRecord upgrades a stored consolidated record to the current
// schema version in place.
func MigratePeriodRecord(r *ConsolidatedPeriodRecord) error {
	if r == nil {
		return nil
	}
	switch {
	case r.SchemaVersion == PerformanceSchemaVersion:
		return nil
	case r.SchemaVersion > PerformanceSchemaVersion:
		return fmt.Errorf("period record %s/%s/%s has schema v%d, newer than supported v%d",
			r.Account, r.PeriodType, r.PeriodKey, r.SchemaVersion, PerformanceSchemaVersion)
	}

	// v1 -> v2: reconstruct factors from the stored period return. StartFactor
	// is 1 by construction, so EndFactor follows directly.
	for code, cp := range r.PerCurrency {
		if cp.StartFactor == 0 {
			cp.StartFactor = 1
			cp.EndFactor = 1 + cp.PeriodReturnPct/100
		}
		r.PerCurrency[code] = cp
	}
	r.SchemaVersion = PerformanceSchemaVersion
	return nil
}
