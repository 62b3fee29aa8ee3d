package performance

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

// unitEpsilon absorbs float noise when deciding whether a position is empty
// or a sell exceeds the units held.
const unitEpsilon = 1e-9

// CalculatorConfig parameterizes the daily performance calculator.
type CalculatorConfig struct {
	// Currencies are the reporting currencies each daily record is broken
	// down into.
	Currencies []string
	// DefaultCurrency is the account's declared default currency, used by
	// the historical-rate conversion rule for cost basis.
	DefaultCurrency string
	// AnomalyThresholdPct suppresses a single asset's daily change when its
	// magnitude exceeds this percentage. Zero disables the guard.
	AnomalyThresholdPct float64
}

// Calculator computes one day's per-currency, per-asset performance record.
type Calculator struct {
	cfg    CalculatorConfig
	logger *common.Logger
}

// NewCalculator creates a daily performance calculator.
func NewCalculator(cfg CalculatorConfig, logger *common.Logger) *Calculator {
	if cfg.DefaultCurrency == "" && len(cfg.Currencies) > 0 {
		cfg.DefaultCurrency = cfg.Currencies[0]
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Calculator{cfg: cfg, logger: logger}
}

// position is the replay accumulator for one asset across a day. Cost is
// tracked with the weighted-average method: sells consume cost at the
// average unit cost across all historical buy lots, so the average is
// unchanged by a partial sell.
type position struct {
	key            models.AssetKey
	units          float64
	totalCost      float64 // in costCurrency
	costCurrency   string
	historicalRate float64 // cost-weighted average acquisition rate
	acquisition    time.Time
	todayTxs       []models.Transaction
	realizedToday  float64 // realized P&L from today's sells, in costCurrency
}

// replayDay builds start-of-day positions from holdings, then applies
// today's transactions in order. Returns positions keyed by asset, with a
// deterministic key order.
func replayDay(holdings []models.Holding, txs []models.Transaction) (map[models.AssetKey]*position, []models.AssetKey, error) {
	positions := make(map[models.AssetKey]*position)

	for _, h := range holdings {
		key := h.Key()
		pos := positions[key]
		if pos == nil {
			pos = &position{key: key, costCurrency: h.CostCurrency, acquisition: h.AcquisitionDate}
			positions[key] = pos
		}
		lotCost := h.Units * h.UnitCost
		// Cost-weighted average of the acquisition rates across lots.
		if pos.totalCost+lotCost > 0 {
			pos.historicalRate = (pos.historicalRate*pos.totalCost + h.HistoricalRate*lotCost) / (pos.totalCost + lotCost)
		}
		pos.units += h.Units
		pos.totalCost += lotCost
		if !h.AcquisitionDate.IsZero() && (pos.acquisition.IsZero() || h.AcquisitionDate.Before(pos.acquisition)) {
			pos.acquisition = h.AcquisitionDate
		}
	}

	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, tx := range sorted {
		key := tx.Key()
		pos := positions[key]
		if pos == nil {
			pos = &position{key: key, costCurrency: tx.Currency, historicalRate: tx.HistoricalRate, acquisition: tx.Date}
			positions[key] = pos
		}
		pos.todayTxs = append(pos.todayTxs, tx)

		switch tx.Type {
		case models.TxBuy:
			cost := tx.Amount()
			if pos.units <= unitEpsilon {
				// Re-opened position: the transaction defines the cost currency.
				pos.costCurrency = tx.Currency
				pos.totalCost = 0
				pos.historicalRate = tx.HistoricalRate
				pos.acquisition = tx.Date
			} else if pos.totalCost+cost > 0 {
				pos.historicalRate = (pos.historicalRate*pos.totalCost + tx.HistoricalRate*cost) / (pos.totalCost + cost)
			}
			pos.units += tx.Units
			pos.totalCost += cost

		case models.TxSell:
			if tx.Units > pos.units+unitEpsilon {
				return nil, nil, fmt.Errorf("%w: asset %s holds %.6f units, sell of %.6f", ErrOversell, key, pos.units, tx.Units)
			}
			avgCost := 0.0
			if pos.units > unitEpsilon {
				avgCost = pos.totalCost / pos.units
			}
			pos.realizedToday += tx.Amount() - avgCost*tx.Units
			pos.totalCost -= avgCost * tx.Units
			pos.units -= tx.Units
			if pos.units <= unitEpsilon {
				pos.units = 0
				pos.totalCost = 0
			}

		case models.TxDividend:
			// Cash out of the asset, no positional change.
		}
	}

	keys := make([]models.AssetKey, 0, len(positions))
	for key := range positions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return positions, keys, nil
}

// ApplyTransactions returns the end-of-day holdings after applying today's
// transactions to the start-of-day holdings. Positions whose units reach
// zero cease to exist.
func ApplyTransactions(holdings []models.Holding, txs []models.Transaction) ([]models.Holding, error) {
	positions, keys, err := replayDay(holdings, txs)
	if err != nil {
		return nil, err
	}

	result := make([]models.Holding, 0, len(keys))
	for _, key := range keys {
		pos := positions[key]
		if pos.units <= unitEpsilon {
			continue
		}
		result = append(result, models.Holding{
			AssetName:       key.Name(),
			AssetType:       key.Type(),
			Units:           pos.units,
			UnitCost:        pos.totalCost / pos.units,
			CostCurrency:    pos.costCurrency,
			AcquisitionDate: pos.acquisition,
			HistoricalRate:  pos.historicalRate,
		})
	}
	return result, nil
}

// ComputeDay computes one day's performance record for an account.
//
// holdings are the account's start-of-day positions; today's transactions
// are applied internally. yesterday may be nil (or missing a currency), in
// which case the day is treated as a new investment: the adjusted change is
// forced to zero because a time-weighted return is undefined for a first day.
//
// Errors are invariant violations only (oversell). Missing prices and
// anomalous changes are recovered locally and flagged on the record.
func (c *Calculator) ComputeDay(account string, date time.Time, holdings []models.Holding, prices models.PriceTable, rates *models.RateTable, yesterday *models.DailyPerformanceRecord, txs []models.Transaction) (*models.DailyPerformanceRecord, error) {
	positions, keys, err := replayDay(holdings, txs)
	if err != nil {
		return nil, fmt.Errorf("computing day %s for account '%s': %w", date.Format(models.DateKeyLayout), account, err)
	}

	now := time.Now()
	record := &models.DailyPerformanceRecord{
		Account:       account,
		Date:          date,
		PerCurrency:   make(map[string]models.CurrencyDay, len(c.cfg.Currencies)),
		SchemaVersion: models.PerformanceSchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, cur := range c.cfg.Currencies {
		record.PerCurrency[cur] = c.computeCurrencyDay(account, cur, date, positions, keys, prices, rates, yesterday)
	}

	return record, nil
}

// computeCurrencyDay builds one currency's view of the day.
func (c *Calculator) computeCurrencyDay(account, cur string, date time.Time, positions map[models.AssetKey]*position, keys []models.AssetKey, prices models.PriceTable, rates *models.RateTable, yesterday *models.DailyPerformanceRecord) models.CurrencyDay {
	ycd := yesterday.Currency(cur)

	cd := models.CurrencyDay{
		AssetPerformance:  make(map[models.AssetKey]models.AssetDay, len(keys)),
		DoneProfitAndLoss: ycd.DoneProfitAndLoss,
	}

	for _, key := range keys {
		pos := positions[key]
		if pos.units <= unitEpsilon && len(pos.todayTxs) == 0 {
			continue
		}

		ad := models.AssetDay{Units: pos.units}

		// Market value. A held asset with no price contributes zero value
		// for the day but is flagged, not an error.
		if pos.units > unitEpsilon {
			price, ok := prices[key]
			if !ok {
				ad.MissingPrice = true
				c.logger.Warn().
					Str("account", account).
					Str("asset", string(key)).
					Str("date", date.Format(models.DateKeyLayout)).
					Msg("No price for held asset, contributing zero value")
			} else {
				ad.TotalValue = Convert(pos.units*price.Amount, price.Currency, cur, rates, "", 0)
			}
		}

		// Cost basis, preserving the acquisition FX rate.
		ad.TotalInvestment = Convert(pos.totalCost, pos.costCurrency, cur, rates, c.cfg.DefaultCurrency, pos.historicalRate)

		// Today's cash flows: buys negative, sells and dividends positive.
		for _, tx := range pos.todayTxs {
			amount := Convert(tx.Amount(), tx.Currency, cur, rates, c.cfg.DefaultCurrency, tx.HistoricalRate)
			if tx.Type == models.TxBuy {
				cd.TotalCashFlow -= amount
				ad.TotalCashFlow -= amount
			} else {
				cd.TotalCashFlow += amount
				ad.TotalCashFlow += amount
			}
		}

		// Realized P&L from today's sells, accumulated onto yesterday's total.
		realized := Convert(pos.realizedToday, pos.costCurrency, cur, rates, "", 0)
		yAsset := ycd.AssetPerformance[key]
		ad.DoneProfitAndLoss = yAsset.DoneProfitAndLoss + realized
		cd.DoneProfitAndLoss += realized

		ad.DailyChangePct = percentChange(ad.TotalValue, yAsset.TotalValue)
		ad.AdjustedDailyChangePct = adjustedChange(ad.TotalValue, yAsset.TotalValue, ad.TotalCashFlow)

		// Data-quality guard: an extreme single-asset move is far more
		// likely a bad price than a real move. Suppress and flag it.
		if c.cfg.AnomalyThresholdPct > 0 && math.Abs(ad.AdjustedDailyChangePct) > c.cfg.AnomalyThresholdPct {
			c.logger.Warn().
				Str("account", account).
				Str("asset", string(key)).
				Str("currency", cur).
				Float64("adjusted_change_pct", ad.AdjustedDailyChangePct).
				Float64("threshold_pct", c.cfg.AnomalyThresholdPct).
				Msg("Anomalous daily change suppressed")
			ad.DailyChangePct = 0
			ad.AdjustedDailyChangePct = 0
			ad.Anomalous = true
		}

		ad.DailyReturn = ad.AdjustedDailyChangePct / 100
		ad.UnrealizedProfitAndLoss = ad.TotalValue - ad.TotalInvestment
		ad.TotalROIPct = roi(ad.UnrealizedProfitAndLoss, ad.DoneProfitAndLoss, ad.TotalInvestment)

		cd.TotalValue += ad.TotalValue
		cd.TotalInvestment += ad.TotalInvestment
		cd.AssetPerformance[key] = ad
	}

	cd.DailyChangePct = percentChange(cd.TotalValue, ycd.TotalValue)
	cd.AdjustedDailyChangePct = adjustedChange(cd.TotalValue, ycd.TotalValue, cd.TotalCashFlow)
	cd.DailyReturn = cd.AdjustedDailyChangePct / 100
	cd.UnrealizedProfitAndLoss = cd.TotalValue - cd.TotalInvestment
	cd.TotalROIPct = roi(cd.UnrealizedProfitAndLoss, cd.DoneProfitAndLoss, cd.TotalInvestment)

	return cd
}

// percentChange is the raw daily change, zero when yesterday had no value.
func percentChange(today, yesterday float64) float64 {
	if yesterday == 0 {
		return 0
	}
	return (today - yesterday) / yesterday * 100
}

// adjustedChange removes the day's external cash flow from the change,
// isolating market performance. On a new-investment day (yesterday zero,
// today positive) the result is forced to zero.
func adjustedChange(today, yesterday, cashFlow float64) float64 {
	if yesterday == 0 {
		return 0
	}
	return (today - yesterday + cashFlow) / yesterday * 100
}

// roi is total return on the current cost basis, realized plus unrealized.
func roi(unrealized, done, investment float64) float64 {
	if investment == 0 {
		return 0
	}
	return (unrealized + done) / investment * 100
}
