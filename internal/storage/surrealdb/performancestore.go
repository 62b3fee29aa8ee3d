package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

// dailyDoc is the stored shape of one daily record.
type dailyDoc struct {
	Account string                        `json:"account"`
	Date    time.Time                     `json:"date"`
	Record  models.DailyPerformanceRecord `json:"record"`
}

// periodDoc is the stored shape of one consolidated period record.
type periodDoc struct {
	Account    string                          `json:"account"`
	PeriodType models.PeriodType               `json:"period_type"`
	PeriodKey  string                          `json:"period_key"`
	Record     models.ConsolidatedPeriodRecord `json:"record"`
}

// PerformanceStore persists daily and consolidated records in SurrealDB.
type PerformanceStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewPerformanceStore(db *surrealdb.DB, logger *common.Logger) *PerformanceStore {
	return &PerformanceStore{db: db, logger: logger}
}

func dailyRecordID(account string, date time.Time) surrealmodels.RecordID {
	return surrealmodels.NewRecordID("daily_performance", account+":"+date.Format(models.DateKeyLayout))
}

func periodRecordID(account string, periodType models.PeriodType, key string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID("consolidated_period", fmt.Sprintf("%s:%s:%s", account, periodType, key))
}

func (s *PerformanceStore) GetDaily(ctx context.Context, account string, date time.Time) (*models.DailyPerformanceRecord, error) {
	doc, err := surrealdb.Select[dailyDoc](ctx, s.db, dailyRecordID(account, date))
	if err != nil {
		return nil, fmt.Errorf("failed to select daily record: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("no daily record for '%s' on %s", account, date.Format(models.DateKeyLayout))
	}
	return &doc.Record, nil
}

func (s *PerformanceStore) GetLatestDailyBefore(ctx context.Context, account string, date time.Time) (*models.DailyPerformanceRecord, error) {
	sql := "SELECT * FROM daily_performance WHERE account = $account AND date < $date ORDER BY date DESC LIMIT 1"
	vars := map[string]any{"account": account, "date": date}

	results, err := surrealdb.Query[[]dailyDoc](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily records: %w", err)
	}
	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return &(*results)[0].Result[0].Record, nil
	}
	return nil, nil
}

func (s *PerformanceStore) GetDailyRange(ctx context.Context, account string, from, to time.Time) ([]models.DailyPerformanceRecord, error) {
	sql := "SELECT * FROM daily_performance WHERE account = $account AND date >= $from AND date <= $to ORDER BY date ASC"
	vars := map[string]any{"account": account, "from": from, "to": to}

	results, err := surrealdb.Query[[]dailyDoc](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily records: %w", err)
	}

	var records []models.DailyPerformanceRecord
	if results != nil && len(*results) > 0 {
		for _, doc := range (*results)[0].Result {
			records = append(records, doc.Record)
		}
	}
	return records, nil
}

func (s *PerformanceStore) SaveDaily(ctx context.Context, record *models.DailyPerformanceRecord) error {
	record.UpdatedAt = time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	doc := dailyDoc{Account: record.Account, Date: record.Date, Record: *record}
	sql := "UPSERT $rid CONTENT $doc"
	vars := map[string]any{"rid": dailyRecordID(record.Account, record.Date), "doc": doc}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]dailyDoc](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save daily record after retries: %w", lastErr)
}

func (s *PerformanceStore) GetPeriod(ctx context.Context, account string, periodType models.PeriodType, key string) (*models.ConsolidatedPeriodRecord, error) {
	doc, err := surrealdb.Select[periodDoc](ctx, s.db, periodRecordID(account, periodType, key))
	if err != nil {
		return nil, fmt.Errorf("failed to select period record: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	return &doc.Record, nil
}

func (s *PerformanceStore) ListPeriods(ctx context.Context, account string, periodType models.PeriodType) ([]models.ConsolidatedPeriodRecord, error) {
	sql := "SELECT * FROM consolidated_period WHERE account = $account AND period_type = $type ORDER BY period_key ASC"
	vars := map[string]any{"account": account, "type": string(periodType)}

	results, err := surrealdb.Query[[]periodDoc](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list period records: %w", err)
	}

	var records []models.ConsolidatedPeriodRecord
	if results != nil && len(*results) > 0 {
		for _, doc := range (*results)[0].Result {
			records = append(records, doc.Record)
		}
	}
	return records, nil
}

func (s *PerformanceStore) SavePeriod(ctx context.Context, record *models.ConsolidatedPeriodRecord) error {
	doc := periodDoc{
		Account:    record.Account,
		PeriodType: record.PeriodType,
		PeriodKey:  record.PeriodKey,
		Record:     *record,
	}
	sql := "UPSERT $rid CONTENT $doc"
	vars := map[string]any{"rid": periodRecordID(record.Account, record.PeriodType, record.PeriodKey), "doc": doc}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]periodDoc](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save period record after retries: %w", lastErr)
}
