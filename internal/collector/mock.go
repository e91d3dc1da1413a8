package collector

import (
	"context"
	"strings"
	"time"

	"InsiderWatch/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Points map[string][]model.PricePoint // keyed by upper-case ticker
	Err    error
	Delay  time.Duration
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPriceHistory(ctx context.Context, ticker string, days int) ([]model.PricePoint, error) {
	if err := wait(ctx, m.Delay); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if pts, ok := m.Points[strings.ToUpper(ticker)]; ok {
		return pts, nil
	}
	if m.Price == 0 {
		return nil, ErrNoData
	}
	return generateMockPoints(m.Price, days, time.Now()), nil
}

func generateMockPoints(basePrice float64, count int, end time.Time) []model.PricePoint {
	last := model.DateOf(end.UTC())
	points := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		points[i] = model.PricePoint{
			Date:  last.AddDays(-(count - 1 - i)),
			Close: basePrice * (1 + float64(i-count/2)*0.001),
		}
	}
	return points
}

// MockInsiderSource serves fixed purchase lists.
type MockInsiderSource struct {
	Purchases map[string][]model.PurchaseRecord // keyed by upper-case ticker
	Err       error
	Delay     time.Duration
}

func (m *MockInsiderSource) Name() string { return "mock" }

func (m *MockInsiderSource) FetchPurchases(ctx context.Context, ticker string) ([]model.PurchaseRecord, error) {
	if err := wait(ctx, m.Delay); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Purchases[strings.ToUpper(ticker)], nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
