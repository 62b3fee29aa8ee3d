package models

import (
	"testing"
	"time"
)

func TestNewTransactionValidation(t *testing.T) {
	date := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		account  string
		asset    string
		txType   TransactionType
		units    float64
		price    float64
		currency string
		wantErr  bool
	}{
		{"valid buy", "main", "ACME", TxBuy, 10, 100, "USD", false},
		{"valid dividend", "main", "ACME", TxDividend, 0, 50, "USD", false},
		{"missing account", "", "ACME", TxBuy, 10, 100, "USD", true},
		{"missing asset", "main", "", TxBuy, 10, 100, "USD", true},
		{"unknown type", "main", "ACME", "short", 10, 100, "USD", true},
		{"negative units", "main", "ACME", TxBuy, -1, 100, "USD", true},
		{"negative price", "main", "ACME", TxSell, 10, -1, "USD", true},
		{"unknown currency", "main", "ACME", TxBuy, 10, 100, "XXX", true},
	}
	for _, tt := range tests {
		tx, err := NewTransaction(tt.account, tt.asset, AssetTypeStock, tt.txType, tt.units, tt.price, tt.currency, date)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err == nil && tx.ID == "" {
			t.Errorf("%s: expected generated ID", tt.name)
		}
	}
}

func TestTransactionAmount(t *testing.T) {
	tx := Transaction{Units: 10, Price: 2.5}
	if got := tx.Amount(); got != 25 {
		t.Errorf("Amount() = %f, want 25", got)
	}
}
