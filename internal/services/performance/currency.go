// Package performance implements the portfolio performance engine: daily
// per-currency records, multi-account aggregation, period consolidation, and
// trailing-window return resolution. Every entry point is a pure function
// over already-fetched data; no I/O happens here.
package performance

import "github.com/foliotrack/folio/internal/models"

// Convert converts an amount between currencies using the current rate
// table.
//
// When converting from the base unit into the holding's declared default
// currency with a historical rate supplied, the historical rate is used
// instead of the current one. This preserves the FX rate in effect when the
// position was acquired, so cost basis does not drift with today's FX.
//
// Unknown currency codes default their rate to 1: conversion degrades
// gracefully instead of failing.
func Convert(amount float64, from, to string, rates *models.RateTable, defaultCurrency string, historicalRate float64) float64 {
	if from == to {
		return amount
	}
	if rates != nil && from == rates.Base && to == defaultCurrency && historicalRate > 0 {
		return amount * historicalRate
	}
	return amount * rates.Rate(to) / rates.Rate(from)
}
