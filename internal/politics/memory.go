package politics

import (
	"context"
	"sort"
	"strings"
	"sync"

	"InsiderWatch/internal/model"
)

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu     sync.RWMutex
	trades map[int64]model.PoliticalTrade
	nextID int64
}

// NewMemoryStore creates a store seeded with trades. Trades with a zero ID
// are assigned one.
func NewMemoryStore(trades ...model.PoliticalTrade) *MemoryStore {
	s := &MemoryStore{trades: make(map[int64]model.PoliticalTrade)}
	for _, t := range trades {
		s.Add(t)
	}
	return s
}

var _ Store = (*MemoryStore)(nil)

// Add stores a copy of t and returns its ID.
func (s *MemoryStore) Add(t model.PoliticalTrade) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == 0 {
		s.nextID++
		t.ID = s.nextID
	} else if t.ID > s.nextID {
		s.nextID = t.ID
	}
	s.trades[t.ID] = t
	return t.ID
}

func (s *MemoryStore) ListTrades(_ context.Context, f Filter) ([]model.PoliticalTrade, error) {
	f = f.Normalize()
	politician := strings.ToLower(f.Politician)

	s.mu.RLock()
	out := make([]model.PoliticalTrade, 0, len(s.trades))
	for _, t := range s.trades {
		if f.Ticker != "" && !strings.EqualFold(t.Ticker, f.Ticker) {
			continue
		}
		if politician != "" && !strings.Contains(strings.ToLower(t.Politician), politician) {
			continue
		}
		if !f.Since.IsZero() && t.TransactionDate.Before(f.Since.Time) {
			continue
		}
		out = append(out, t)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate.Time) {
			return out[i].TransactionDate.After(out[j].TransactionDate.Time)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) GetTrade(_ context.Context, id int64) (*model.PoliticalTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trades[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) ListTickers(_ context.Context, since model.Date) ([]string, error) {
	s.mu.RLock()
	seen := make(map[string]bool)
	for _, t := range s.trades {
		if t.Ticker == "" || t.TransactionDate.Before(since.Time) {
			continue
		}
		seen[strings.ToUpper(t.Ticker)] = true
	}
	s.mu.RUnlock()

	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers, nil
}
