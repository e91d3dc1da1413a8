package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"InsiderWatch/internal/calculator"
	"InsiderWatch/internal/classifier"
	"InsiderWatch/internal/model"
	"InsiderWatch/internal/politics"
)

const (
	maxEnrichTickers = 500
	defaultPriceDays = 365
	maxPriceDays     = 2000
	summaryPriceDays = 400
	defaultListLimit = 20
	triggerAPI       = "api"
)

func tickerParam(c *gin.Context) (string, error) {
	return model.NormalizeTicker(c.Param("ticker"))
}

// asOfQuery parses an optional as_of date, defaulting to now.
func (s *Server) asOfQuery(c *gin.Context) (time.Time, error) {
	raw := c.Query("as_of")
	if raw == "" {
		return s.deps.Now(), nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}

func intQuery(c *gin.Context, key string, def, min, max int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("%s must be an integer in [%d, %d]", key, min, max)
	}
	return n, nil
}

type classifyRequest struct {
	Purchases []model.PurchaseRecord `json:"purchases"`
	Prices    []model.PricePoint     `json:"prices"`
	AsOf      *model.Date            `json:"as_of"`
}

type classifyResponse struct {
	Events  []model.EventSummary `json:"events"`
	Primary *model.PrimaryEvent  `json:"primary"`
	AsOf    model.Date           `json:"as_of"`
}

// handleClassify runs the engine on caller-supplied inputs.
func (s *Server) handleClassify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	asOf := s.deps.Now()
	if req.AsOf != nil && !req.AsOf.IsZero() {
		asOf = req.AsOf.Time
	}

	events := s.deps.Classifier.ClassifyEvents(req.Purchases, req.Prices, asOf)
	c.JSON(http.StatusOK, classifyResponse{
		Events:  events,
		Primary: classifier.PrimaryEventFor(events),
		AsOf:    model.DateOf(asOf.UTC()),
	})
}

type enrichRequest struct {
	Tickers []string    `json:"tickers"`
	AsOf    *model.Date `json:"as_of"`
}

func (s *Server) handleEnrich(c *gin.Context) {
	var req enrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Tickers) == 0 {
		badRequest(c, errors.New("tickers is required"))
		return
	}
	if len(req.Tickers) > maxEnrichTickers {
		badRequest(c, fmt.Errorf("at most %d tickers per request", maxEnrichTickers))
		return
	}
	for _, t := range req.Tickers {
		if _, err := model.NormalizeTicker(t); err != nil {
			badRequest(c, err)
			return
		}
	}
	asOf := s.deps.Now()
	if req.AsOf != nil && !req.AsOf.IsZero() {
		asOf = req.AsOf.Time
	}

	reports := s.deps.Runner.RunEnrichment(c.Request.Context(), triggerAPI, req.Tickers, asOf)
	c.JSON(http.StatusOK, gin.H{"as_of": model.DateOf(asOf.UTC()), "reports": reports})
}

func (s *Server) handleLatest(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Cache.Latest())
}

func (s *Server) handleRuns(c *gin.Context) {
	if s.deps.Recorder == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []any{}})
		return
	}
	limit, err := intQuery(c, "limit", defaultListLimit, 1, 500)
	if err != nil {
		badRequest(c, err)
		return
	}
	runs, err := s.deps.Recorder.LatestRuns(limit)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// handleTickerEvents fetches and classifies one ticker. Upstream failures
// yield 200 with no events; the report's error field says why.
func (s *Server) handleTickerEvents(c *gin.Context) {
	ticker, err := tickerParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	asOf, err := s.asOfQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.deps.Enricher.EnrichTicker(c.Request.Context(), ticker, asOf))
}

func (s *Server) handleHistory(c *gin.Context) {
	ticker, err := tickerParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if s.deps.Recorder == nil {
		c.JSON(http.StatusOK, gin.H{"ticker": ticker, "history": []any{}})
		return
	}
	limit, err := intQuery(c, "limit", defaultListLimit, 1, 500)
	if err != nil {
		badRequest(c, err)
		return
	}
	history, err := s.deps.Recorder.TickerHistory(ticker, limit)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "history": history})
}

func (s *Server) handlePrices(c *gin.Context) {
	ticker, err := tickerParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	days, err := intQuery(c, "days", defaultPriceDays, 1, maxPriceDays)
	if err != nil {
		badRequest(c, err)
		return
	}
	points, err := s.deps.Prices.FetchPrices(c.Request.Context(), ticker, days)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("price fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "price history unavailable"})
		return
	}
	if points == nil {
		points = []model.PricePoint{}
	}
	c.JSON(http.StatusOK, model.PriceSeries{Ticker: ticker, Points: points, FetchedAt: s.deps.Now().UTC()})
}

func (s *Server) handleSummary(c *gin.Context) {
	ticker, err := tickerParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	points, err := s.deps.Prices.FetchPrices(c.Request.Context(), ticker, summaryPriceDays)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("price fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "price history unavailable"})
		return
	}
	snap, err := calculator.Snapshot(ticker, points)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) politicsStore(c *gin.Context) (politics.Store, bool) {
	if s.deps.Politics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "political trade store not configured"})
		return nil, false
	}
	return s.deps.Politics, true
}

func (s *Server) handleTrades(c *gin.Context) {
	store, ok := s.politicsStore(c)
	if !ok {
		return
	}
	f := politics.Filter{
		Ticker:     c.Query("ticker"),
		Politician: c.Query("politician"),
	}
	if raw := c.Query("since"); raw != "" {
		since, err := model.ParseDate(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		f.Since = since
	}
	limit, err := intQuery(c, "limit", politics.DefaultLimit, 1, politics.MaxLimit)
	if err != nil {
		badRequest(c, err)
		return
	}
	f.Limit = limit

	trades, err := store.ListTrades(c.Request.Context(), f)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades, "count": len(trades)})
}

func (s *Server) handleTrade(c *gin.Context) {
	store, ok := s.politicsStore(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, fmt.Errorf("invalid id %q", c.Param("id")))
		return
	}
	trade, err := store.GetTrade(c.Request.Context(), id)
	if errors.Is(err, politics.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "trade not found"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, trade)
}

func (s *Server) handlePoliticalTickers(c *gin.Context) {
	store, ok := s.politicsStore(c)
	if !ok {
		return
	}
	var since model.Date
	if raw := c.Query("since"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		since = d
	}
	tickers, err := store.ListTickers(c.Request.Context(), since)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickers": tickers})
}
