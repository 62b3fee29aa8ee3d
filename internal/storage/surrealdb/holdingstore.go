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

// holdingDoc stores an account's full position set as of the end of one day.
type holdingDoc struct {
	Account   string           `json:"account"`
	Date      time.Time        `json:"date"`
	Holdings  []models.Holding `json:"holdings"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// HoldingStore persists end-of-day position snapshots in SurrealDB.
type HoldingStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewHoldingStore(db *surrealdb.DB, logger *common.Logger) *HoldingStore {
	return &HoldingStore{db: db, logger: logger}
}

func (s *HoldingStore) GetHoldingsBefore(ctx context.Context, account string, date time.Time) ([]models.Holding, error) {
	sql := "SELECT * FROM holdings WHERE account = $account AND date < $date ORDER BY date DESC LIMIT 1"
	vars := map[string]any{"account": account, "date": date}

	results, err := surrealdb.Query[[]holdingDoc](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].Holdings, nil
	}
	return nil, nil
}

func (s *HoldingStore) SaveHoldings(ctx context.Context, account string, date time.Time, holdings []models.Holding) error {
	id := fmt.Sprintf("%s:%s", account, date.Format(models.DateKeyLayout))
	doc := holdingDoc{Account: account, Date: date, Holdings: holdings, UpdatedAt: time.Now()}
	sql := "UPSERT $rid CONTENT $doc"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("holdings", id), "doc": doc}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]holdingDoc](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save holdings after retries: %w", lastErr)
}
