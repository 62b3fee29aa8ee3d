// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"
	"time"

	"github.com/foliotrack/folio/internal/models"
)

// StorageManager coordinates the storage backends.
type StorageManager interface {
	PerformanceStore() PerformanceStore
	LedgerStore() LedgerStore
	HoldingStore() HoldingStore

	// Lifecycle
	Close() error
}

// PerformanceStore persists daily and consolidated performance records.
// Daily records are keyed by (account, date); consolidated records by
// (account, periodType, periodKey). Writes are idempotent per key.
type PerformanceStore interface {
	// GetDaily returns the record for an exact (account, date) key.
	GetDaily(ctx context.Context, account string, date time.Time) (*models.DailyPerformanceRecord, error)

	// GetLatestDailyBefore returns the most recent record strictly before
	// date, for bootstrapping a day's calculation after gaps.
	GetLatestDailyBefore(ctx context.Context, account string, date time.Time) (*models.DailyPerformanceRecord, error)

	// GetDailyRange returns records with from <= date <= to, in date order.
	GetDailyRange(ctx context.Context, account string, from, to time.Time) ([]models.DailyPerformanceRecord, error)

	// SaveDaily upserts a daily record under its (account, date) key.
	SaveDaily(ctx context.Context, record *models.DailyPerformanceRecord) error

	// GetPeriod returns a consolidated record, or nil if absent.
	GetPeriod(ctx context.Context, account string, periodType models.PeriodType, periodKey string) (*models.ConsolidatedPeriodRecord, error)

	// ListPeriods returns all consolidated records of one type for an
	// account, ordered by period key ascending.
	ListPeriods(ctx context.Context, account string, periodType models.PeriodType) ([]models.ConsolidatedPeriodRecord, error)

	// SavePeriod upserts a consolidated record.
	SavePeriod(ctx context.Context, record *models.ConsolidatedPeriodRecord) error
}

// LedgerStore persists the transaction ledger.
type LedgerStore interface {
	Append(ctx context.Context, tx *models.Transaction) error

	// GetTransactions returns transactions with from <= date < to, in date
	// order. The exclusive upper bound keeps a midnight-dated transaction out
	// of the previous day's close.
	GetTransactions(ctx context.Context, account string, from, to time.Time) ([]models.Transaction, error)

	List(ctx context.Context, account string) ([]models.Transaction, error)
}

// HoldingStore persists account positions between daily closes. Positions
// are end-of-day snapshots keyed by date, so re-closing a day always starts
// from the same prior state.
type HoldingStore interface {
	// GetHoldingsBefore returns the most recent snapshot dated strictly
	// before the given date, or nil when none exists.
	GetHoldingsBefore(ctx context.Context, account string, date time.Time) ([]models.Holding, error)

	// SaveHoldings upserts the end-of-day snapshot for a date.
	SaveHoldings(ctx context.Context, account string, date time.Time, holdings []models.Holding) error
}
