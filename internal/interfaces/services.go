package interfaces

import (
	"context"
	"time"

	"github.com/foliotrack/folio/internal/models"
)

// PerformanceService orchestrates the performance engine over storage and
// market data: daily closes, period consolidation, and trailing-window reads.
type PerformanceService interface {
	// RunDailyClose computes and stores the daily record for every
	// configured account plus the overall aggregate, for the given date.
	RunDailyClose(ctx context.Context, date time.Time) error

	// CloseAccountDay computes and stores one account's daily record.
	CloseAccountDay(ctx context.Context, account string, date time.Time) (*models.DailyPerformanceRecord, error)

	// ConsolidateClosed consolidates every fully closed month and year that
	// does not yet have a consolidated record. Returns the number of new
	// records written.
	ConsolidateClosed(ctx context.Context, account string, now time.Time) (int, error)

	// Windows resolves all trailing-window returns for an account in the
	// given reporting currency.
	Windows(ctx context.Context, account, currency string, now time.Time) (map[models.WindowID]models.TrailingWindowResult, error)

	// Statistics computes descriptive statistics over an account's daily
	// return series in the given currency.
	Statistics(ctx context.Context, account, currency string, from, to time.Time) (*models.ReturnStatistics, error)

	// RenderChart renders the account's daily value/investment series as a
	// PNG for the given currency and date range.
	RenderChart(ctx context.Context, account, currency string, from, to time.Time) ([]byte, error)

	// RecordTransaction validates and appends a ledger transaction.
	RecordTransaction(ctx context.Context, tx *models.Transaction) error
}
