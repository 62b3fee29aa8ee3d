package interfaces

import (
	"context"

	"github.com/foliotrack/folio/internal/models"
)

// MarketDataClient provides current prices and FX rates. The performance
// engine itself never calls this; only the orchestration layer does, so the
// core stays a pure function of already-fetched data.
type MarketDataClient interface {
	// GetPrices returns current prices for the given asset keys. Assets the
	// provider does not know are absent from the result, not an error.
	GetPrices(ctx context.Context, keys []models.AssetKey) (models.PriceTable, error)

	// GetRates returns current FX rates relative to the base currency for
	// the requested currency codes.
	GetRates(ctx context.Context, base string, currencies []string) (*models.RateTable, error)
}
