package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"InsiderWatch/internal/model"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultHistoryDays = 400 // covers the 30-day lookbacks and the 52-week summary
)

// Collector fetches the two input sequences the classifier needs for one ticker.
type Collector struct {
	Prices      PriceFetcher
	Insiders    InsiderSource
	Timeout     time.Duration
	HistoryDays int
}

// NewCollector creates a new Collector with the default timeout and history window.
func NewCollector(prices PriceFetcher, insiders InsiderSource) *Collector {
	return &Collector{
		Prices:      prices,
		Insiders:    insiders,
		Timeout:     DefaultTimeout,
		HistoryDays: DefaultHistoryDays,
	}
}

// Collect fetches purchases and price history concurrently under the
// collector's timeout. Any failure returns both sequences nil; callers treat
// that as "no events" for the ticker.
func (c *Collector) Collect(ctx context.Context, ticker string) ([]model.PurchaseRecord, []model.PricePoint, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	days := c.HistoryDays
	if days <= 0 {
		days = DefaultHistoryDays
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		purchases []model.PurchaseRecord
		prices    []model.PricePoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := c.Insiders.FetchPurchases(gctx, ticker)
		if err != nil {
			return fmt.Errorf("%s purchases: %w", c.Insiders.Name(), err)
		}
		purchases = recs
		return nil
	})
	g.Go(func() error {
		pts, err := c.Prices.FetchPriceHistory(gctx, ticker, days)
		if err != nil {
			return fmt.Errorf("%s prices: %w", c.Prices.Name(), err)
		}
		prices = pts
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("collect failed, treating as no events")
		return nil, nil, err
	}
	return purchases, prices, nil
}

// FetchPrices fetches only price history, under the same timeout.
func (c *Collector) FetchPrices(ctx context.Context, ticker string, days int) ([]model.PricePoint, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pts, err := c.Prices.FetchPriceHistory(ctx, ticker, days)
	if err != nil {
		return nil, fmt.Errorf("%s prices %s: %w", c.Prices.Name(), ticker, err)
	}
	return pts, nil
}
