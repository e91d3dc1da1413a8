// Package cache keeps the most recent enrichment snapshot in memory and on disk.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"InsiderWatch/internal/model"
)

// Change is a ticker whose primary event differs from the previous snapshot.
type Change struct {
	Ticker   string
	Previous model.EventType // empty if there was none
	Report   model.TickerReport
}

// Store holds the latest snapshot with concurrency safety.
type Store struct {
	mu       sync.RWMutex
	snap     *Snapshot
	byTicker map[string]int
	filePath string
	now      func() time.Time
}

// NewStore creates a Store, loading any existing snapshot from filePath.
// An empty filePath keeps the snapshot in memory only.
func NewStore(filePath string) (*Store, error) {
	snap := &Snapshot{Reports: []model.TickerReport{}}
	if filePath != "" {
		var err error
		if snap, err = LoadSnapshot(filePath); err != nil {
			return nil, err
		}
	}
	s := &Store{filePath: filePath, now: time.Now}
	s.set(snap)
	return s, nil
}

func (s *Store) set(snap *Snapshot) {
	s.snap = snap
	s.byTicker = make(map[string]int, len(snap.Reports))
	for i, r := range snap.Reports {
		s.byTicker[strings.ToUpper(r.Ticker)] = i
	}
}

// Latest returns a copy of the current snapshot.
func (s *Store) Latest() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := *s.snap
	cp.Reports = append([]model.TickerReport(nil), s.snap.Reports...)
	return cp
}

// Get returns the cached report for ticker.
func (s *Store) Get(ticker string) (model.TickerReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byTicker[strings.ToUpper(ticker)]
	if !ok {
		return model.TickerReport{}, false
	}
	return s.snap.Reports[i], true
}

// Update merges reports into the snapshot, replacing any existing report for
// the same ticker, persists it, and returns the tickers whose primary event
// changed. Failed reports never replace a previous good one.
func (s *Store) Update(asOf model.Date, reports []model.TickerReport) []Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[string]model.TickerReport, len(s.snap.Reports)+len(reports))
	for _, r := range s.snap.Reports {
		merged[strings.ToUpper(r.Ticker)] = r
	}

	var changes []Change
	for _, r := range reports {
		key := strings.ToUpper(r.Ticker)
		prev, had := merged[key]
		if r.Error != "" && had {
			continue
		}
		merged[key] = r

		var prevType, curType model.EventType
		if had && prev.Primary != nil {
			prevType = prev.Primary.Type
		}
		if r.Primary != nil {
			curType = r.Primary.Type
		}
		if curType != "" && curType != prevType {
			changes = append(changes, Change{Ticker: key, Previous: prevType, Report: r})
		}
	}

	out := make([]model.TickerReport, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })

	s.set(&Snapshot{UpdatedAt: s.now().UTC(), AsOf: asOf, Reports: out})
	if s.filePath != "" {
		if err := SaveSnapshot(s.filePath, s.snap); err != nil {
			log.Error().Err(err).Str("path", s.filePath).Msg("failed to save snapshot")
		}
	}
	return changes
}
