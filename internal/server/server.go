// Package server exposes the classifier, enrichment snapshot, price history
// and political trades over a gin HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"InsiderWatch/internal/cache"
	"InsiderWatch/internal/classifier"
	"InsiderWatch/internal/model"
	"InsiderWatch/internal/observability"
	"InsiderWatch/internal/politics"
	"InsiderWatch/internal/recorder"
)

// TickerEnricher classifies a single ticker, failing open.
type TickerEnricher interface {
	EnrichTicker(ctx context.Context, ticker string, asOf time.Time) model.TickerReport
}

// EnrichRunner runs a recorded, cached batch enrichment.
type EnrichRunner interface {
	RunEnrichment(ctx context.Context, trigger string, tickers []string, asOf time.Time) []model.TickerReport
}

// PriceSource fetches price history for the price and summary endpoints.
type PriceSource interface {
	FetchPrices(ctx context.Context, ticker string, days int) ([]model.PricePoint, error)
}

// Deps are the collaborators the handlers call. Politics and Recorder may be nil.
type Deps struct {
	Classifier *classifier.Classifier
	Enricher   TickerEnricher
	Runner     EnrichRunner
	Cache      *cache.Store
	Prices     PriceSource
	Politics   politics.Store
	Recorder   recorder.Recorder
	Now        func() time.Time
}

// Server hosts the HTTP API.
type Server struct {
	addr       string
	deps       Deps
	httpServer *http.Server
}

// New creates a Server listening on addr.
func New(addr string, deps Deps) *Server {
	if deps.Classifier == nil {
		deps.Classifier = classifier.Default
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Server{addr: addr, deps: deps}
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server exits with an error.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestMetrics())

	router.GET("/metrics", gin.WrapH(observability.Handler()))

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.POST("/classify", s.handleClassify)
	api.POST("/enrich", s.handleEnrich)
	api.GET("/enrich/latest", s.handleLatest)
	api.GET("/enrich/runs", s.handleRuns)

	tickers := api.Group("/tickers/:ticker")
	tickers.GET("/events", s.handleTickerEvents)
	tickers.GET("/prices", s.handlePrices)
	tickers.GET("/summary", s.handleSummary)
	tickers.GET("/history", s.handleHistory)

	political := api.Group("/political")
	political.GET("/trades", s.handleTrades)
	political.GET("/trades/:id", s.handleTrade)
	political.GET("/tickers", s.handlePoliticalTickers)

	return router
}

// requestMetrics records per-route request counts and latency and logs each request.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()
		observability.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(status), elapsed.Seconds())

		evt := log.Debug()
		if status >= http.StatusInternalServerError {
			evt = log.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", elapsed).
			Msg("http request")
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func internalError(c *gin.Context, err error) {
	log.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
