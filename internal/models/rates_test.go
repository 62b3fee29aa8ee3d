package models

import "testing"

func TestNewRateTable(t *testing.T) {
	rt, err := NewRateTable("USD", map[string]float64{"EUR": 0.9, "AUD": 1.5})
	if err != nil {
		t.Fatalf("NewRateTable failed: %v", err)
	}
	if got := rt.Rate("USD"); got != 1 {
		t.Errorf("base rate = %f, want 1", got)
	}
	if got := rt.Rate("EUR"); got != 0.9 {
		t.Errorf("Rate(EUR) = %f, want 0.9", got)
	}
	// Unknown codes degrade to a no-op conversion.
	if got := rt.Rate("JPY"); got != 1 {
		t.Errorf("Rate(JPY) = %f, want 1", got)
	}
}

func TestNewRateTableRejectsBadInput(t *testing.T) {
	if _, err := NewRateTable("XXX", nil); err == nil {
		t.Error("expected error for unknown base")
	}
	if _, err := NewRateTable("USD", map[string]float64{"XXX": 1.2}); err == nil {
		t.Error("expected error for unknown quote currency")
	}
	if _, err := NewRateTable("USD", map[string]float64{"EUR": 0}); err == nil {
		t.Error("expected error for non-positive rate")
	}
}

func TestNilRateTable(t *testing.T) {
	var rt *RateTable
	if got := rt.Rate("USD"); got != 1 {
		t.Errorf("nil table Rate(USD) = %f, want 1", got)
	}
}
