// Package calculator derives summary indicators from a ticker's daily closes.
package calculator

import (
	"errors"
	"sort"

	"github.com/rs/zerolog/log"

	"InsiderWatch/internal/model"
)

// Snapshot computes the indicator summary for a price history. Points may be
// unsorted; indicators that lack data fall back to the last close (or 50 for RSI).
func Snapshot(ticker string, points []model.PricePoint) (*model.PriceSnapshot, error) {
	if len(points) == 0 {
		return nil, errors.New("no price history")
	}
	sorted := make([]model.PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date.Time) })

	closes := Closes(sorted)
	last := sorted[len(sorted)-1]
	snap := &model.PriceSnapshot{Ticker: ticker, AsOf: last.Date, LastClose: last.Close}
	logger := log.With().Str("ticker", ticker).Logger()

	if ma, err := CalculateSMA(closes, 50); err != nil {
		logger.Debug().Err(err).Msg("SMA50 unavailable, using last close")
		snap.SMA50 = last.Close
	} else {
		snap.SMA50 = ma
	}
	if ma, err := CalculateSMA(closes, 200); err != nil {
		logger.Debug().Err(err).Msg("SMA200 unavailable, using last close")
		snap.SMA200 = last.Close
	} else {
		snap.SMA200 = ma
	}

	if rsi, err := CalculateRSI(closes, 14); err != nil {
		snap.RSI14 = 50
	} else {
		snap.RSI14 = rsi
	}

	// CloseRange cannot fail on a non-empty series.
	snap.High52w, snap.Low52w, _ = CloseRange(closes, tradingDays52w)
	snap.High30d, snap.Low30d, _ = CloseRange(closes, tradingDays30d)

	if pos, err := RangePosition(last.Close, snap.High52w, snap.Low52w); err != nil {
		logger.Warn().Err(err).Msg("52-week position calculation failed")
		snap.Position52w = 0.5
	} else {
		snap.Position52w = pos
	}
	return snap, nil
}
