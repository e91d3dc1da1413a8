package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"InsiderWatch/internal/model"
)

// RESTPriceFetcher implements PriceFetcher against a self-hosted price service.
type RESTPriceFetcher struct {
	BaseURL string
	APIKey  string
	http    *httpDoer
}

// NewRESTPriceFetcher creates a fetcher with optional proxy support.
func NewRESTPriceFetcher(baseURL, apiKey, proxyURL string, requestsPerSec float64) *RESTPriceFetcher {
	return &RESTPriceFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		http:    newHTTPDoer(proxyURL, requestsPerSec),
	}
}

func (f *RESTPriceFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the price service. Date may carry a
// time-of-day for intraday series.
type restBar struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

func (f *RESTPriceFetcher) FetchPriceHistory(ctx context.Context, ticker string, days int) ([]model.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/api/v1/prices/daily?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(ticker), days)
	headers := map[string]string{"Accept": "application/json"}
	if f.APIKey != "" {
		headers["Authorization"] = "Bearer " + f.APIKey
	}
	body, err := f.http.get(ctx, f.Name(), endpoint, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch prices %s: %w", ticker, err)
	}

	var bars []restBar
	if err := json.Unmarshal(body, &bars); err != nil {
		return nil, fmt.Errorf("decode prices %s: %w", ticker, err)
	}
	points := make([]model.PricePoint, 0, len(bars))
	for _, b := range bars {
		d, err := model.ParseDate(b.Date)
		if err != nil {
			return nil, fmt.Errorf("prices %s: %w", ticker, err)
		}
		points = append(points, model.PricePoint{Date: d, Close: b.Close})
	}
	// Stable so that first-seen-per-date survives for intraday duplicates.
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date.Time) })
	return points, nil
}
