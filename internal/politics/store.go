// Package politics reads congressional trade disclosures.
//
// The political_trades table is populated by external fetch scripts; this
// package only queries it.
package politics

import (
	"context"
	"errors"
	"strings"

	"InsiderWatch/internal/model"
)

// ErrNotFound is returned when a requested trade does not exist.
var ErrNotFound = errors.New("not found")

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Filter narrows ListTrades. Zero fields match everything.
type Filter struct {
	Ticker     string     // exact, case-insensitive
	Politician string     // substring, case-insensitive
	Since      model.Date // transaction_date >= Since
	Limit      int
}

// Normalize upper-cases the ticker and clamps Limit into [1, MaxLimit].
func (f Filter) Normalize() Filter {
	f.Ticker = strings.ToUpper(strings.TrimSpace(f.Ticker))
	f.Politician = strings.TrimSpace(f.Politician)
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	return f
}

// Store is the read-only political trade repository. Results are ordered by
// transaction_date descending, then id descending.
type Store interface {
	ListTrades(ctx context.Context, f Filter) ([]model.PoliticalTrade, error)
	// GetTrade returns ErrNotFound if id does not exist.
	GetTrade(ctx context.Context, id int64) (*model.PoliticalTrade, error)
	// ListTickers returns the distinct non-empty tickers traded on or after since, sorted.
	ListTickers(ctx context.Context, since model.Date) ([]string, error)
}
