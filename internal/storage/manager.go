// Package storage provides the top-level StorageManager with pluggable
// backends.
package storage

import (
	"fmt"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
	"github.com/foliotrack/folio/internal/storage/badger"
)

// Manager implements interfaces.StorageManager on a single BadgerHold
// database.
type Manager struct {
	store       *badger.Store
	performance interfaces.PerformanceStore
	ledger      interfaces.LedgerStore
	holdings    interfaces.HoldingStore
	logger      *common.Logger
}

// NewManager creates a BadgerHold-backed StorageManager.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger store: %w", err)
	}

	logger.Info().
		Str("path", config.Storage.Path).
		Msg("Badger storage manager initialized")

	return &Manager{
		store:       store,
		performance: badger.NewPerformanceStorage(store, logger),
		ledger:      badger.NewLedgerStorage(store, logger),
		holdings:    badger.NewHoldingStorage(store, logger),
		logger:      logger,
	}, nil
}

func (m *Manager) PerformanceStore() interfaces.PerformanceStore {
	return m.performance
}

func (m *Manager) LedgerStore() interfaces.LedgerStore {
	return m.ledger
}

func (m *Manager) HoldingStore() interfaces.HoldingStore {
	return m.holdings
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.store.Close()
}
