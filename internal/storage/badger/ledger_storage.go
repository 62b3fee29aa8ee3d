package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

// ledgerEntry is the stored shape of one transaction.
type ledgerEntry struct {
	Account string `badgerholdIndex:"LedgerAccount"`
	Date    time.Time
	Tx      models.Transaction
}

type ledgerStorage struct {
	store  *Store
	logger *common.Logger
}

// NewLedgerStorage creates a LedgerStore backed by BadgerHold.
func NewLedgerStorage(store *Store, logger *common.Logger) *ledgerStorage {
	return &ledgerStorage{store: store, logger: logger}
}

func (s *ledgerStorage) Append(_ context.Context, tx *models.Transaction) error {
	entry := ledgerEntry{Account: tx.Account, Date: tx.Date, Tx: *tx}
	if err := s.store.db.Insert("ledger:"+tx.ID, &entry); err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	s.logger.Debug().
		Str("account", tx.Account).
		Str("asset", string(tx.Key())).
		Str("type", string(tx.Type)).
		Msg("Transaction appended")
	return nil
}

func (s *ledgerStorage) GetTransactions(_ context.Context, account string, from, to time.Time) ([]models.Transaction, error) {
	var entries []ledgerEntry
	query := badgerhold.Where("Account").Eq(account).Index("LedgerAccount").
		And("Date").Ge(from).
		And("Date").Lt(to).
		SortBy("Date")
	if err := s.store.db.Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	txs := make([]models.Transaction, len(entries))
	for i, e := range entries {
		txs[i] = e.Tx
	}
	return txs, nil
}

func (s *ledgerStorage) List(_ context.Context, account string) ([]models.Transaction, error) {
	var entries []ledgerEntry
	query := badgerhold.Where("Account").Eq(account).Index("LedgerAccount").SortBy("Date")
	if err := s.store.db.Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	txs := make([]models.Transaction, len(entries))
	for i, e := range entries {
		txs[i] = e.Tx
	}
	return txs, nil
}
