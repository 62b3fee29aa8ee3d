package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

// holdingEntry stores an account's full position set as of the end of one
// day. Each daily close writes its own snapshot, so re-closing a day always
// rebuilds from the snapshot before it.
type holdingEntry struct {
	Account   string `badgerholdIndex:"HoldingAccount"`
	Date      time.Time
	Holdings  []models.Holding
	UpdatedAt time.Time
}

type holdingStorage struct {
	store  *Store
	logger *common.Logger
}

// NewHoldingStorage creates a HoldingStore backed by BadgerHold.
func NewHoldingStorage(store *Store, logger *common.Logger) *holdingStorage {
	return &holdingStorage{store: store, logger: logger}
}

func (s *holdingStorage) GetHoldingsBefore(_ context.Context, account string, date time.Time) ([]models.Holding, error) {
	var entries []holdingEntry
	query := badgerhold.Where("Account").Eq(account).Index("HoldingAccount").
		And("Date").Lt(date).
		SortBy("Date").Reverse().Limit(1)
	if err := s.store.db.Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to query holdings for '%s': %w", account, err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0].Holdings, nil
}

func (s *holdingStorage) SaveHoldings(_ context.Context, account string, date time.Time, holdings []models.Holding) error {
	key := fmt.Sprintf("holdings:%s:%s", account, date.Format(models.DateKeyLayout))
	entry := holdingEntry{Account: account, Date: date, Holdings: holdings, UpdatedAt: time.Now()}
	if err := s.store.db.Upsert(key, &entry); err != nil {
		return fmt.Errorf("failed to save holdings for '%s': %w", account, err)
	}
	s.logger.Debug().
		Str("account", account).
		Str("date", date.Format(models.DateKeyLayout)).
		Int("positions", len(holdings)).
		Msg("Holdings snapshot saved")
	return nil
}
