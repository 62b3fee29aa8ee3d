package models

import (
	"fmt"

	"github.com/Rhymond/go-money"
)

// ValidCurrencyCode returns true if code is a known ISO 4217 currency code.
func ValidCurrencyCode(code string) bool {
	return money.GetCurrency(code) != nil
}

// RateTable holds current FX rates relative to a base currency.
// Rates are expressed as units of the quoted currency per one unit of base,
// so rate(base) == 1.
type RateTable struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// NewRateTable builds a validated rate table. Every currency code, including
// the base, must be a known ISO code; rates must be positive.
func NewRateTable(base string, rates map[string]float64) (*RateTable, error) {
	if !ValidCurrencyCode(base) {
		return nil, fmt.Errorf("unknown base currency '%s'", base)
	}
	for code, rate := range rates {
		if !ValidCurrencyCode(code) {
			return nil, fmt.Errorf("unknown currency code '%s' in rate table", code)
		}
		if rate <= 0 {
			return nil, fmt.Errorf("non-positive rate %f for currency '%s'", rate, code)
		}
	}
	copied := make(map[string]float64, len(rates))
	for code, rate := range rates {
		copied[code] = rate
	}
	copied[base] = 1
	return &RateTable{Base: base, Rates: copied}, nil
}

// Rate returns the rate for a currency. An unknown code defaults to 1 so a
// missing upstream rate degrades to a no-op conversion instead of an error.
func (rt *RateTable) Rate(code string) float64 {
	if rt == nil || rt.Rates == nil {
		return 1
	}
	if r, ok := rt.Rates[code]; ok && r > 0 {
		return r
	}
	return 1
}
