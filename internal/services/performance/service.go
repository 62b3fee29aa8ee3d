package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
	"github.com/foliotrack/folio/internal/models"
)

// Service orchestrates the performance engine over storage and market data.
// The engine functions themselves stay pure; all I/O happens here.
type Service struct {
	storage  interfaces.StorageManager
	market   interfaces.MarketDataClient
	calc     *Calculator
	accounts []string
	base     string
	logger   *common.Logger
}

// NewService creates a new performance service.
func NewService(storage interfaces.StorageManager, market interfaces.MarketDataClient, engine common.EngineConfig, accounts []string, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		market:  market,
		calc: NewCalculator(CalculatorConfig{
			Currencies:          engine.Currencies,
			DefaultCurrency:     engine.DefaultCurrency,
			AnomalyThresholdPct: engine.AnomalyThresholdPct,
		}, logger),
		accounts: accounts,
		base:     engine.BaseCurrency,
		logger:   logger,
	}
}

// RunDailyClose computes and stores the daily record for every configured
// account, then aggregates them into the overall record for the day.
// Accounts are independent; a failing account aborts the close so the
// overall record is never built from a partial set.
func (s *Service) RunDailyClose(ctx context.Context, date time.Time) error {
	date = dateOnly(date)
	s.logger.Info().Str("date", date.Format(models.DateKeyLayout)).Int("accounts", len(s.accounts)).Msg("Running daily close")

	records := make([]models.DailyPerformanceRecord, 0, len(s.accounts))
	for _, account := range s.accounts {
		record, err := s.CloseAccountDay(ctx, account, date)
		if err != nil {
			return fmt.Errorf("daily close for account '%s': %w", account, err)
		}
		records = append(records, *record)
	}

	overall := Aggregate(records)
	if overall == nil {
		return nil
	}
	if err := s.storage.PerformanceStore().SaveDaily(ctx, overall); err != nil {
		return fmt.Errorf("failed to save overall record: %w", err)
	}

	s.logger.Info().Str("date", date.Format(models.DateKeyLayout)).Msg("Daily close complete")
	return nil
}

// CloseAccountDay computes and stores one account's daily record for a date.
// Start-of-day positions come from the last end-of-day snapshot before the
// date, so re-closing the same day rebuilds from identical inputs.
func (s *Service) CloseAccountDay(ctx context.Context, account string, date time.Time) (*models.DailyPerformanceRecord, error) {
	date = dateOnly(date)

	holdings, err := s.storage.HoldingStore().GetHoldingsBefore(ctx, account, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	txs, err := s.storage.LedgerStore().GetTransactions(ctx, account, date, date.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	keys := assetKeysOf(holdings, txs)
	prices, err := s.market.GetPrices(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}

	rates, err := s.market.GetRates(ctx, s.base, s.calc.cfg.Currencies)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch FX rates: %w", err)
	}

	// Most recent record before today bootstraps the day after gaps; its
	// absence makes this a new-investment day for every asset.
	yesterday, err := s.storage.PerformanceStore().GetLatestDailyBefore(ctx, account, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior record: %w", err)
	}
	if err := models.MigrateDailyRecord(yesterday); err != nil {
		return nil, err
	}

	record, err := s.calc.ComputeDay(account, date, holdings, prices, rates, yesterday, txs)
	if err != nil {
		return nil, err
	}

	if err := s.storage.PerformanceStore().SaveDaily(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save daily record: %w", err)
	}

	endOfDay, err := ApplyTransactions(holdings, txs)
	if err != nil {
		return nil, err
	}
	if err := s.storage.HoldingStore().SaveHoldings(ctx, account, date, endOfDay); err != nil {
		return nil, fmt.Errorf("failed to save holdings: %w", err)
	}

	s.logger.Debug().
		Str("account", account).
		Str("date", date.Format(models.DateKeyLayout)).
		Int("holdings", len(endOfDay)).
		Int("transactions", len(txs)).
		Msg("Account day closed")

	return record, nil
}

// ConsolidateClosed consolidates every fully closed month and year that does
// not yet have a consolidated record. Returns the number of records written.
func (s *Service) ConsolidateClosed(ctx context.Context, account string, now time.Time) (int, error) {
	store := s.storage.PerformanceStore()

	days, err := store.GetDailyRange(ctx, account, time.Time{}, now)
	if err != nil {
		return 0, fmt.Errorf("failed to load daily records: %w", err)
	}
	if len(days) == 0 {
		return 0, nil
	}
	for i := range days {
		if err := models.MigrateDailyRecord(&days[i]); err != nil {
			return 0, err
		}
	}

	byMonth := make(map[string][]models.DailyPerformanceRecord)
	byYear := make(map[string][]models.DailyPerformanceRecord)
	for _, d := range days {
		byMonth[d.Date.Format(models.MonthKeyLayout)] = append(byMonth[d.Date.Format(models.MonthKeyLayout)], d)
		byYear[d.Date.Format(models.YearKeyLayout)] = append(byYear[d.Date.Format(models.YearKeyLayout)], d)
	}

	written := 0
	write := func(periodType models.PeriodType, groups map[string][]models.DailyPerformanceRecord) error {
		for key, group := range groups {
			_, end, err := models.PeriodBounds(periodType, key)
			if err != nil {
				return err
			}
			if now.Before(end.AddDate(0, 0, 1)) {
				continue // period still open
			}

			existing, err := store.GetPeriod(ctx, account, periodType, key)
			if err != nil {
				return fmt.Errorf("failed to check existing %s %s: %w", periodType, key, err)
			}
			if existing != nil {
				continue
			}

			record, err := Consolidate(group, periodType, key, now)
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			if err := store.SavePeriod(ctx, record); err != nil {
				return fmt.Errorf("failed to save %s %s: %w", periodType, key, err)
			}
			written++
			s.logger.Info().
				Str("account", account).
				Str("period_type", string(periodType)).
				Str("period_key", key).
				Int("docs", record.DocsCount).
				Msg("Period consolidated")
		}
		return nil
	}

	if err := write(models.PeriodMonth, byMonth); err != nil {
		return written, err
	}
	if err := write(models.PeriodYear, byYear); err != nil {
		return written, err
	}
	return written, nil
}

// Windows resolves all trailing-window returns for an account in one
// reporting currency.
func (s *Service) Windows(ctx context.Context, account, currency string, now time.Time) (map[models.WindowID]models.TrailingWindowResult, error) {
	store := s.storage.PerformanceStore()

	years, err := store.ListPeriods(ctx, account, models.PeriodYear)
	if err != nil {
		return nil, fmt.Errorf("failed to load consolidated years: %w", err)
	}
	months, err := store.ListPeriods(ctx, account, models.PeriodMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to load consolidated months: %w", err)
	}
	days, err := store.GetDailyRange(ctx, account, time.Time{}, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily records: %w", err)
	}

	for i := range years {
		if err := models.MigratePeriodRecord(&years[i]); err != nil {
			return nil, err
		}
	}
	for i := range months {
		if err := models.MigratePeriodRecord(&months[i]); err != nil {
			return nil, err
		}
	}
	for i := range days {
		if err := models.MigrateDailyRecord(&days[i]); err != nil {
			return nil, err
		}
	}

	return ResolveWindows(years, months, days, currency, now), nil
}

// Statistics computes descriptive statistics over an account's daily return
// series in one currency.
func (s *Service) Statistics(ctx context.Context, account, currency string, from, to time.Time) (*models.ReturnStatistics, error) {
	days, err := s.storage.PerformanceStore().GetDailyRange(ctx, account, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily records: %w", err)
	}
	result := ComputeReturnStatistics(days, currency)
	if result == nil {
		return nil, fmt.Errorf("%w for account '%s' in %s", ErrNoData, account, currency)
	}
	return result, nil
}

// RenderChart renders the account's daily value/investment series as a PNG.
func (s *Service) RenderChart(ctx context.Context, account, currency string, from, to time.Time) ([]byte, error) {
	days, err := s.storage.PerformanceStore().GetDailyRange(ctx, account, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily records: %w", err)
	}
	return RenderPerformanceChart(days, currency)
}

// RecordTransaction validates and appends a ledger transaction.
func (s *Service) RecordTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if !models.ValidTransactionType(tx.Type) {
		return fmt.Errorf("unknown transaction type '%s'", tx.Type)
	}
	if _, err := models.NewAssetKey(tx.AssetName, tx.AssetType); err != nil {
		return err
	}
	if err := s.storage.LedgerStore().Append(ctx, tx); err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	s.logger.Info().
		Str("account", tx.Account).
		Str("asset", string(tx.Key())).
		Str("type", string(tx.Type)).
		Float64("units", tx.Units).
		Msg("Transaction recorded")
	return nil
}

// dateOnly truncates a timestamp to its calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// assetKeysOf returns the distinct asset keys across holdings and
// transactions.
func assetKeysOf(holdings []models.Holding, txs []models.Transaction) []models.AssetKey {
	seen := make(map[models.AssetKey]bool)
	var keys []models.AssetKey
	for _, h := range holdings {
		if k := h.Key(); !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, tx := range txs {
		if k := tx.Key(); !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}
