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

// ledgerDoc is the stored shape of one transaction.
type ledgerDoc struct {
	Account string             `json:"account"`
	Date    time.Time          `json:"date"`
	Tx      models.Transaction `json:"tx"`
}

// LedgerStore persists the transaction ledger in SurrealDB.
type LedgerStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewLedgerStore(db *surrealdb.DB, logger *common.Logger) *LedgerStore {
	return &LedgerStore{db: db, logger: logger}
}

func (s *LedgerStore) Append(ctx context.Context, tx *models.Transaction) error {
	doc := ledgerDoc{Account: tx.Account, Date: tx.Date, Tx: *tx}
	sql := "UPSERT $rid CONTENT $doc"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("ledger", tx.ID), "doc": doc}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]ledgerDoc](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to append transaction after retries: %w", lastErr)
}

func (s *LedgerStore) GetTransactions(ctx context.Context, account string, from, to time.Time) ([]models.Transaction, error) {
	sql := "SELECT * FROM ledger WHERE account = $account AND date >= $from AND date < $to ORDER BY date ASC"
	vars := map[string]any{"account": account, "from": from, "to": to}

	results, err := surrealdb.Query[[]ledgerDoc](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	var txs []models.Transaction
	if results != nil && len(*results) > 0 {
		for _, doc := range (*results)[0].Result {
			txs = append(txs, doc.Tx)
		}
	}
	return txs, nil
}

func (s *LedgerStore) List(ctx context.Context, account string) ([]models.Transaction, error) {
	sql := "SELECT * FROM ledger WHERE account = $account ORDER BY date ASC"
	vars := map[string]any{"account": account}

	results, err := surrealdb.Query[[]ledgerDoc](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	var txs []models.Transaction
	if results != nil && len(*results) > 0 {
		for _, doc := range (*results)[0].Result {
			txs = append(txs, doc.Tx)
		}
	}
	return txs, nil
}
