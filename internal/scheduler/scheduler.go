package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"InsiderWatch/internal/cache"
	"InsiderWatch/internal/collector"
	"InsiderWatch/internal/enrichment"
	"InsiderWatch/internal/model"
	"InsiderWatch/internal/notifier"
	"InsiderWatch/internal/observability"
	"InsiderWatch/internal/politics"
	"InsiderWatch/internal/recorder"
)

// Triggers recorded with each run.
const (
	TriggerCron     = "cron"
	TriggerAPI      = "api"
	TriggerTelegram = "telegram"
	TriggerStartup  = "startup"
)

// AlertTypes are the primary events that produce a notification when a
// ticker newly enters them.
var AlertTypes = map[model.EventType]bool{
	model.EventHolyGrail:     true,
	model.EventSlumpRecovery: true,
}

// Scheduler manages all cron tasks and the enrichment pipeline they share
// with the API.
type Scheduler struct {
	Cron     *cron.Cron
	Enricher *enrichment.Enricher
	Cache    *cache.Store
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Politics politics.Store // optional

	Watchlist             []string
	PoliticalLookbackDays int
	PoliticalScripts      []*collector.ScriptRunner

	Ctx context.Context
	now func() time.Time
}

// NewScheduler creates a new Scheduler. Overlapping runs of the same job are skipped.
func NewScheduler(ctx context.Context, enr *enrichment.Enricher, store *cache.Store, n notifier.Notifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Enricher: enr,
		Cache:    store,
		Notifier: n,
		Recorder: rec,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// RegisterAll registers the enrichment task and, if politicalCron is set,
// the political-trade refresh task.
func (s *Scheduler) RegisterAll(enrichCron, politicalCron string) error {
	if _, err := s.Cron.AddFunc(enrichCron, s.enrichTask); err != nil {
		return fmt.Errorf("register enrich task: %w", err)
	}
	if politicalCron != "" && len(s.PoliticalScripts) > 0 {
		if _, err := s.Cron.AddFunc(politicalCron, s.politicalTask); err != nil {
			return fmt.Errorf("register political task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunEnrichNow executes the watchlist enrichment immediately (RUN_ON_START).
func (s *Scheduler) RunEnrichNow() {
	s.runWatchlist(TriggerStartup)
}

func (s *Scheduler) enrichTask() {
	s.runWatchlist(TriggerCron)
}

func (s *Scheduler) runWatchlist(trigger string) {
	tickers := s.resolveWatchlist(s.Ctx)
	if len(tickers) == 0 {
		log.Warn().Msg("watchlist is empty, skipping enrichment")
		return
	}
	s.RunEnrichment(s.Ctx, trigger, tickers, s.now())
}

// resolveWatchlist returns the configured watchlist plus tickers with recent
// political trades.
func (s *Scheduler) resolveWatchlist(ctx context.Context) []string {
	tickers := append([]string(nil), s.Watchlist...)
	if s.Politics == nil || s.PoliticalLookbackDays <= 0 {
		return tickers
	}
	since := model.DateOf(s.now().UTC()).AddDays(-s.PoliticalLookbackDays)
	extra, err := s.Politics.ListTickers(ctx, since)
	if err != nil {
		log.Warn().Err(err).Msg("list political tickers failed, using configured watchlist only")
		return tickers
	}
	return append(tickers, extra...)
}

// RunEnrichment classifies tickers, records the run, refreshes the snapshot
// cache and alerts on new breakout or bottom-catch primaries.
func (s *Scheduler) RunEnrichment(ctx context.Context, trigger string, tickers []string, asOf time.Time) []model.TickerReport {
	start := time.Now()
	log.Info().Str("trigger", trigger).Int("tickers", len(tickers)).Msg("running enrichment")

	reports := s.Enricher.Enrich(ctx, tickers, asOf)

	if err := s.Recorder.RecordRun(recorder.NewRun(trigger, asOf, reports)); err != nil {
		log.Error().Err(err).Msg("record run")
	}

	changes := s.Cache.Update(model.DateOf(asOf.UTC()), reports)
	for _, c := range changes {
		if !AlertTypes[c.Report.Primary.Type] {
			continue
		}
		s.trySend(ctx, notifier.FormatAlert(c.Report, c.Previous))
	}

	observability.RecordEnrichRun(trigger, time.Since(start).Seconds())
	return reports
}

func (s *Scheduler) politicalTask() {
	log.Info().Int("scripts", len(s.PoliticalScripts)).Msg("running political trade refresh")
	for _, script := range s.PoliticalScripts {
		ctx, cancel := context.WithTimeout(s.Ctx, 10*time.Minute)
		out, err := script.Run(ctx)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("command", script.Command).Msg("political refresh script failed")
			continue
		}
		log.Info().Str("command", script.Command).Int("bytes", len(out)).Msg("political refresh script finished")
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command, args string) string {
	switch command {
	case "events":
		if strings.TrimSpace(args) == "" {
			return "Usage: /events TICKER"
		}
		ticker, err := model.NormalizeTicker(args)
		if err != nil {
			return "Invalid ticker: " + html.EscapeString(strings.TrimSpace(args))
		}
		report := s.Enricher.EnrichTicker(ctx, ticker, s.now())
		if report.Error != "" {
			if cached, ok := s.Cache.Get(ticker); ok && cached.Error == "" {
				log.Warn().Str("ticker", ticker).Str("err", report.Error).Msg("live classification failed, replying from cache")
				return notifier.FormatReport(cached) + "\n<i>cached result, live data unavailable</i>"
			}
		}
		return notifier.FormatReport(report)
	case "latest":
		snap := s.Cache.Latest()
		return notifier.FormatLatest(snap.Reports, snap.UpdatedAt)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if text == "" || s.Notifier == nil {
		return
	}
	if err := notifier.SendWithRetry(ctx, s.Notifier, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
