package recorder

import (
	"time"

	"github.com/google/uuid"

	"InsiderWatch/internal/model"
)

// Run is one batch enrichment pass.
type Run struct {
	ID        string
	StartedAt time.Time
	Trigger   string // "cron", "api", "telegram"
	AsOf      model.Date
	Reports   []model.TickerReport
}

// NewRun creates a Run with a fresh ID.
func NewRun(trigger string, asOf time.Time, reports []model.TickerReport) *Run {
	return &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Trigger:   trigger,
		AsOf:      model.DateOf(asOf.UTC()),
		Reports:   reports,
	}
}

// RunSummary is a stored run without its per-ticker rows.
type RunSummary struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	Trigger   string     `json:"trigger"`
	AsOf      model.Date `json:"as_of"`
	Tickers   int        `json:"tickers"`
	Failed    int        `json:"failed"`
}

// TickerResult is one stored per-ticker classification.
type TickerResult struct {
	RunID        string               `json:"run_id"`
	Ticker       string               `json:"ticker"`
	AsOf         model.Date           `json:"as_of"`
	Primary      model.EventType      `json:"primary,omitempty"`
	Events       []model.EventSummary `json:"events"`
	Error        string               `json:"error,omitempty"`
	ClassifiedAt time.Time            `json:"classified_at"`
}

// Recorder persists classification history for analysis.
type Recorder interface {
	RecordRun(run *Run) error
	LatestRuns(limit int) ([]RunSummary, error)
	TickerHistory(ticker string, limit int) ([]TickerResult, error)
	Close() error
}
