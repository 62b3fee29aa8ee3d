package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionType categorizes ledger events.
type TransactionType string

const (
	TxBuy      TransactionType = "buy"
	TxSell     TransactionType = "sell"
	TxDividend TransactionType = "dividend"
)

// validTransactionTypes lists all accepted transaction types.
var validTransactionTypes = map[TransactionType]bool{
	TxBuy:      true,
	TxSell:     true,
	TxDividend: true,
}

// ValidTransactionType returns true if t is a valid transaction type.
func ValidTransactionType(t TransactionType) bool {
	return validTransactionTypes[t]
}

// Transaction represents a single ledger event for an account.
type Transaction struct {
	ID        string          `json:"id"`
	Account   string          `json:"account"`
	AssetName string          `json:"asset_name"`
	AssetType AssetType       `json:"asset_type"`
	Type      TransactionType `json:"type"`
	Units     float64         `json:"units"`
	Price     float64         `json:"price"` // per unit, in Currency
	Currency  string          `json:"currency"`
	Date      time.Time       `json:"date"`
	// HistoricalRate preserves the FX rate (base -> Currency) at trade time.
	HistoricalRate float64   `json:"historical_rate,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewTransaction builds a validated transaction with a generated ID.
func NewTransaction(account string, assetName string, assetType AssetType, txType TransactionType, units, price float64, currency string, date time.Time) (*Transaction, error) {
	if account == "" {
		return nil, fmt.Errorf("account is required")
	}
	if _, err := NewAssetKey(assetName, assetType); err != nil {
		return nil, err
	}
	if !ValidTransactionType(txType) {
		return nil, fmt.Errorf("unknown transaction type '%s'", txType)
	}
	if units < 0 || price < 0 {
		return nil, fmt.Errorf("units and price must be non-negative")
	}
	if !ValidCurrencyCode(currency) {
		return nil, fmt.Errorf("unknown currency code '%s'", currency)
	}
	return &Transaction{
		ID:        uuid.New().String(),
		Account:   account,
		AssetName: assetName,
		AssetType: assetType,
		Type:      txType,
		Units:     units,
		Price:     price,
		Currency:  currency,
		Date:      date,
		CreatedAt: time.Now(),
	}, nil
}

// Key returns the transaction's asset identity.
func (t Transaction) Key() AssetKey {
	k, _ := NewAssetKey(t.AssetName, t.AssetType)
	return k
}

// Amount returns the gross transaction amount (units x price) in the
// transaction's own currency.
func (t Transaction) Amount() float64 {
	return t.Units * t.Price
}
