package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

// dailyEntry is the stored shape of one daily record. Account and Date are
// lifted out of the record so range queries can filter without decoding
// the full payload.
type dailyEntry struct {
	Account string `badgerholdIndex:"DailyAccount"`
	Date    time.Time
	Record  models.DailyPerformanceRecord
}

// periodEntry is the stored shape of one consolidated period record.
type periodEntry struct {
	Account    string `badgerholdIndex:"PeriodAccount"`
	PeriodType models.PeriodType
	PeriodKey  string
	Record     models.ConsolidatedPeriodRecord
}

type performanceStorage struct {
	store  *Store
	logger *common.Logger
}

// NewPerformanceStorage creates a PerformanceStore backed by BadgerHold.
func NewPerformanceStorage(store *Store, logger *common.Logger) *performanceStorage {
	return &performanceStorage{store: store, logger: logger}
}

func dailyKey(account string, date time.Time) string {
	return fmt.Sprintf("daily:%s:%s", account, date.Format(models.DateKeyLayout))
}

func periodKey(account string, periodType models.PeriodType, key string) string {
	return fmt.Sprintf("period:%s:%s:%s", account, periodType, key)
}

func (s *performanceStorage) GetDaily(_ context.Context, account string, date time.Time) (*models.DailyPerformanceRecord, error) {
	var entry dailyEntry
	err := s.store.db.Get(dailyKey(account, date), &entry)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("no daily record for '%s' on %s", account, date.Format(models.DateKeyLayout))
		}
		return nil, fmt.Errorf("failed to get daily record: %w", err)
	}
	return &entry.Record, nil
}

func (s *performanceStorage) GetLatestDailyBefore(_ context.Context, account string, date time.Time) (*models.DailyPerformanceRecord, error) {
	var entries []dailyEntry
	query := badgerhold.Where("Account").Eq(account).Index("DailyAccount").
		And("Date").Lt(date).
		SortBy("Date").Reverse().Limit(1)
	if err := s.store.db.Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to query daily records: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0].Record, nil
}

func (s *performanceStorage) GetDailyRange(_ context.Context, account string, from, to time.Time) ([]models.DailyPerformanceRecord, error) {
	var entries []dailyEntry
	query := badgerhold.Where("Account").Eq(account).Index("DailyAccount").
		And("Date").Ge(from).
		And("Date").Le(to).
		SortBy("Date")
	if err := s.store.db.Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to query daily records: %w", err)
	}
	records := make([]models.DailyPerformanceRecord, len(entries))
	for i, e := range entries {
		records[i] = e.Record
	}
	return records, nil
}

func (s *performanceStorage) SaveDaily(_ context.Context, record *models.DailyPerformanceRecord) error {
	record.UpdatedAt = time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	entry := dailyEntry{Account: record.Account, Date: record.Date, Record: *record}
	if err := s.store.db.Upsert(dailyKey(record.Account, record.Date), &entry); err != nil {
		return fmt.Errorf("failed to save daily record: %w", err)
	}
	s.logger.Debug().
		Str("account", record.Account).
		Str("date", record.DateKey()).
		Msg("Daily performance record saved")
	return nil
}

func (s *performanceStorage) GetPeriod(_ context.Context, account string, periodType models.PeriodType, key string) (*models.ConsolidatedPeriodRecord, error) {
	var entry periodEntry
	err := s.store.db.Get(periodKey(account, periodType, key), &entry)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get period record: %w", err)
	}
	return &entry.Record, nil
}

func (s *performanceStorage) ListPeriods(_ context.Context, account string, periodType models.PeriodType) ([]models.ConsolidatedPeriodRecord, error) {
	var entries []periodEntry
	query := badgerhold.Where("Account").Eq(account).Index("PeriodAccount").
		And("PeriodType").Eq(periodType).
		SortBy("PeriodKey")
	if err := s.store.db.Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to list period records: %w", err)
	}
	records := make([]models.ConsolidatedPeriodRecord, len(entries))
	for i, e := range entries {
		records[i] = e.Record
	}
	return records, nil
}

func (s *performanceStorage) SavePeriod(_ context.Context, record *models.ConsolidatedPeriodRecord) error {
	entry := periodEntry{
		Account:    record.Account,
		PeriodType: record.PeriodType,
		PeriodKey:  record.PeriodKey,
		Record:     *record,
	}
	if err := s.store.db.Upsert(periodKey(record.Account, record.PeriodType, record.PeriodKey), &entry); err != nil {
		return fmt.Errorf("failed to save period record: %w", err)
	}
	s.logger.Debug().
		Str("account", record.Account).
		Str("period_type", string(record.PeriodType)).
		Str("period_key", record.PeriodKey).
		Msg("Consolidated period record saved")
	return nil
}
