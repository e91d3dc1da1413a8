// Package enrichment classifies a batch of tickers with bounded concurrency.
// A ticker whose inputs cannot be fetched gets an empty report carrying the
// error; it never aborts the batch.
package enrichment

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"InsiderWatch/internal/classifier"
	"InsiderWatch/internal/model"
	"InsiderWatch/internal/observability"
)

const DefaultConcurrency = 10

// Source supplies one ticker's purchases and price history.
// *collector.Collector satisfies it.
type Source interface {
	Collect(ctx context.Context, ticker string) ([]model.PurchaseRecord, []model.PricePoint, error)
}

// Enricher runs the classifier over many tickers.
type Enricher struct {
	source      Source
	classifier  *classifier.Classifier
	concurrency int
	now         func() time.Time
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithConcurrency sets how many tickers are processed at once.
func WithConcurrency(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithClassifier overrides the default classifier.
func WithClassifier(c *classifier.Classifier) Option {
	return func(e *Enricher) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithClock overrides the wall clock used for ClassifiedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Enricher) { e.now = now }
}

// New creates an Enricher.
func New(source Source, opts ...Option) *Enricher {
	e := &Enricher{
		source:      source,
		classifier:  classifier.Default,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnrichTicker classifies a single ticker. Fetch failures are reported in
// the returned report's Error field with no events.
func (e *Enricher) EnrichTicker(ctx context.Context, ticker string, asOf time.Time) model.TickerReport {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	report := model.TickerReport{
		Ticker: ticker,
		Events: []model.EventSummary{},
		AsOf:   model.DateOf(asOf.UTC()),
	}

	purchases, prices, err := e.source.Collect(ctx, ticker)
	report.ClassifiedAt = e.now().UTC()
	if err != nil {
		observability.RecordEnrichFailure()
		report.Error = err.Error()
		return report
	}

	report.Events = e.classifier.ClassifyEvents(purchases, prices, asOf)
	report.Primary = classifier.PrimaryEventFor(report.Events)
	for _, s := range report.Events {
		observability.RecordClassification(string(s.Type), s.Count)
	}
	return report
}

// Enrich classifies every ticker and returns one report per distinct ticker,
// sorted by ticker.
func (e *Enricher) Enrich(ctx context.Context, tickers []string, asOf time.Time) []model.TickerReport {
	start := time.Now()
	unique := dedupe(tickers)

	var (
		mu      sync.Mutex
		reports = make([]model.TickerReport, 0, len(unique))
	)
	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for _, ticker := range unique {
		g.Go(func() error {
			r := e.EnrichTicker(ctx, ticker, asOf)
			mu.Lock()
			reports = append(reports, r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(reports, func(i, j int) bool { return reports[i].Ticker < reports[j].Ticker })

	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
		}
	}
	log.Info().
		Int("tickers", len(reports)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("enrichment complete")
	return reports
}

func dedupe(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
