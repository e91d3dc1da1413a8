package model

import "time"

// PricePoint is one daily close for a ticker.
type PricePoint struct {
	Date  Date    `json:"date"`
	Close float64 `json:"close"`
}

// PriceSeries holds a ticker's fetched price history.
type PriceSeries struct {
	Ticker    string       `json:"ticker"`
	Points    []PricePoint `json:"points"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// PriceSnapshot is the indicator summary shown next to a ticker's events.
type PriceSnapshot struct {
	Ticker      string  `json:"ticker"`
	AsOf        Date    `json:"as_of"`
	LastClose   float64 `json:"last_close"`
	SMA50       float64 `json:"sma50"`
	SMA200      float64 `json:"sma200"`
	RSI14       float64 `json:"rsi14"`
	High52w     float64 `json:"high_52w"`
	Low52w      float64 `json:"low_52w"`
	Position52w float64 `json:"position_52w"` // 0.0 ~ 1.0
	High30d     float64 `json:"high_30d"`
	Low30d      float64 `json:"low_30d"`
}
