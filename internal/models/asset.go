// Package models defines data structures for Folio
package models

import (
	"fmt"
	"strings"
	"time"
)

// AssetType categorizes an asset within a portfolio.
type AssetType string

const (
	AssetTypeStock  AssetType = "stock"
	AssetTypeETF    AssetType = "etf"
	AssetTypeFund   AssetType = "fund"
	AssetTypeCrypto AssetType = "crypto"
	AssetTypeBond   AssetType = "bond"
	AssetTypeCash   AssetType = "cash"
)

// validAssetTypes lists all accepted asset types.
var validAssetTypes = map[AssetType]bool{
	AssetTypeStock:  true,
	AssetTypeETF:    true,
	AssetTypeFund:   true,
	AssetTypeCrypto: true,
	AssetTypeBond:   true,
	AssetTypeCash:   true,
}

// ValidAssetType returns true if t is a valid asset type.
func ValidAssetType(t AssetType) bool {
	return validAssetTypes[t]
}

// AssetKey is the composite identity of an asset: "<name>_<type>".
// Two holdings with the same name but different types are distinct assets.
type AssetKey string

// NewAssetKey builds an asset key from a name and type. The name is trimmed;
// an empty name or unknown type is rejected.
func NewAssetKey(name string, assetType AssetType) (AssetKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("asset name is required")
	}
	if !ValidAssetType(assetType) {
		return "", fmt.Errorf("unknown asset type '%s'", assetType)
	}
	return AssetKey(name + "_" + string(assetType)), nil
}

// Name returns the asset name portion of the key.
func (k AssetKey) Name() string {
	if i := strings.LastIndex(string(k), "_"); i >= 0 {
		return string(k)[:i]
	}
	return string(k)
}

// Type returns the asset type portion of the key.
func (k AssetKey) Type() AssetType {
	if i := strings.LastIndex(string(k), "_"); i >= 0 {
		return AssetType(string(k)[i+1:])
	}
	return ""
}

// Holding represents a single lot of an asset owned by an account.
// Holdings are mutated only by applying transactions; a holding ceases to
// exist when its units reach zero.
type Holding struct {
	AssetName       string    `json:"asset_name"`
	AssetType       AssetType `json:"asset_type"`
	Units           float64   `json:"units"`
	UnitCost        float64   `json:"unit_cost"`     // average cost per unit, in CostCurrency
	CostCurrency    string    `json:"cost_currency"` // currency the cost basis is denominated in
	AcquisitionDate time.Time `json:"acquisition_date"`
	// HistoricalRate is the FX rate (base -> CostCurrency) in effect when the
	// position was acquired. Used so cost basis does not drift with today's FX.
	HistoricalRate float64 `json:"historical_rate,omitempty"`
}

// Key returns the holding's asset identity.
func (h Holding) Key() AssetKey {
	k, _ := NewAssetKey(h.AssetName, h.AssetType)
	return k
}

// AssetPrice is a current market price for one asset.
type AssetPrice struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PriceTable maps asset keys to their current market prices.
type PriceTable map[AssetKey]AssetPrice
