package collector

import (
	"context"
	"errors"

	"InsiderWatch/internal/model"
)

// ErrNoData is returned when an upstream source answers but has nothing for the ticker.
var ErrNoData = errors.New("no data returned")

// PriceFetcher fetches daily close history for a ticker.
type PriceFetcher interface {
	FetchPriceHistory(ctx context.Context, ticker string, days int) ([]model.PricePoint, error)
	Name() string
}

// InsiderSource fetches disclosed insider purchases for a ticker.
type InsiderSource interface {
	FetchPurchases(ctx context.Context, ticker string) ([]model.PurchaseRecord, error)
	Name() string
}
