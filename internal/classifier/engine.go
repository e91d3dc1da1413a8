// Package classifier groups a ticker's insider purchases into clusters and
// labels each purchase date by the price action around it.
//
// The classifier is a pure function of its inputs and the supplied as-of
// time: it performs no I/O and is safe for concurrent use.
package classifier

import (
	"math"
	"time"

	"InsiderWatch/internal/model"
	"InsiderWatch/internal/tradedata"
)

// Classifier applies one fixed threshold set.
type Classifier struct {
	th Thresholds
}

// New creates a Classifier. Zero-valued thresholds fall back to defaults.
func New(th Thresholds) *Classifier {
	return &Classifier{th: th.WithDefaults()}
}

// Default is a Classifier using DefaultThresholds.
var Default = New(DefaultThresholds())

// Thresholds returns the thresholds in effect.
func (c *Classifier) Thresholds() Thresholds {
	return c.th
}

// purchaseDay is the per-date state the rules look at.
type purchaseDay struct {
	idx       int
	date      model.Date
	price0    float64
	daysSince int
}

// Classify emits one event per priced purchase date, plus at most one
// restock event. Dates with no close on the purchase day are dropped.
func (c *Classifier) Classify(purchases []model.PurchaseRecord, prices []model.PricePoint, asOf time.Time) []model.ClassifiedEvent {
	groups := tradedata.GroupPurchasesByDate(purchases)
	if groups.Len() == 0 || len(prices) == 0 {
		return nil
	}
	index := tradedata.BuildPriceIndexWithProbe(prices, c.th.ProbeDays)
	if index.Len() == 0 {
		return nil
	}

	dates := groups.SortedDates()
	clusters := tradedata.PartitionClusters(dates, c.th.ClusterWindowDays, groups)
	membership := tradedata.ClusterMembership(clusters)
	today := model.DateOf(asOf.UTC())

	events := make([]model.ClassifiedEvent, 0, len(dates)+1)
	// clustered marks indices scored on the cluster path; the restock scan skips them.
	clustered := make([]bool, len(dates))

	for i, d := range dates {
		price0, ok := index.At(d)
		if !ok {
			continue
		}
		day := purchaseDay{idx: i, date: d, price0: price0, daysSince: today.DaysSince(d)}

		var t model.EventType
		if clusters[membership[i]].IsClamp() {
			t = c.classifyClustered(index, day)
			clustered[i] = true
		} else {
			t = c.classifySingleton(index, dates, day)
		}
		events = append(events, model.ClassifiedEvent{Type: t, Date: d})
	}

	if ev, ok := c.scanRestock(dates, clustered); ok {
		events = append(events, ev)
	}
	return events
}

// ClassifyEvents classifies and aggregates by type.
func (c *Classifier) ClassifyEvents(purchases []model.PurchaseRecord, prices []model.PricePoint, asOf time.Time) []model.EventSummary {
	return Aggregate(c.Classify(purchases, prices, asOf))
}

func (c *Classifier) classifyClustered(index *tradedata.PriceIndex, day purchaseDay) model.EventType {
	th := c.th
	after, ok := index.Offset(day.date, th.ForwardDays)
	if !ok || day.daysSince <= th.ForwardDays {
		return model.EventClamp
	}

	change := pctChange(day.price0, after)
	switch {
	case change >= th.BreakoutPct && c.wasInSlump(index, day):
		return model.EventSlumpRecovery
	case change >= th.BreakoutPct:
		return model.EventHolyGrail
	default:
		return model.EventDisqualified
	}
}

func (c *Classifier) wasInSlump(index *tradedata.PriceIndex, day purchaseDay) bool {
	before, ok := index.Offset(day.date, -c.th.SlumpLookbackDays)
	return ok && before > day.price0*(1+c.th.SlumpPct/100)
}

func (c *Classifier) classifySingleton(index *tradedata.PriceIndex, dates []model.Date, day purchaseDay) model.EventType {
	th := c.th
	price5Before, ok5 := index.Offset(day.date, -th.FlatWindowDays)
	_, ok1 := index.Offset(day.date, -1)
	price3After, ok3 := index.Offset(day.date, th.ReactionDays)
	price30Before, ok30 := index.Offset(day.date, -th.MidRiseLookbackDays)
	scoreable := day.daysSince > th.ReactionDays

	// plateau: flat going in, up coming out, confirmed by a follow-up buy
	if ok5 && ok1 && ok3 && scoreable {
		changeBefore := math.Abs(day.price0-price5Before) / price5Before * 100
		changeAfter := pctChange(day.price0, price3After)
		if changeBefore < th.FlatPct && changeAfter > 0 {
			if c.hasFollowUp(dates, day) {
				return model.EventPlateau
			}
			return model.EventDisqualified
		}
	}

	if ok30 {
		rise := pctChange(price30Before, day.price0)
		if rise >= th.MidRiseMinPct && rise < th.MidRiseMaxPct {
			return model.EventMidRise
		}
	}

	if ok3 && scoreable {
		if pctChange(day.price0, price3After) < 0 {
			return model.EventDisqualified
		}
		return model.EventPlateau
	}

	if !scoreable {
		return model.EventClamp
	}
	return model.EventPlateau
}

// hasFollowUp reports whether any later purchase date lands within the
// follow-up business-day window.
func (c *Classifier) hasFollowUp(dates []model.Date, day purchaseDay) bool {
	limit := tradedata.AddBusinessDays(day.date, c.th.FollowUpBusinessDays)
	for _, later := range dates[day.idx+1:] {
		if later.After(limit.Time) {
			return false
		}
		if tradedata.WithinBusinessDays(day.date, later, c.th.FollowUpBusinessDays) {
			return true
		}
	}
	return false
}

// scanRestock looks for the first run of RestockMinPurchases dates spanning
// at most RestockSpanDays that is not itself one tight cluster.
func (c *Classifier) scanRestock(dates []model.Date, clustered []bool) (model.ClassifiedEvent, bool) {
	n := c.th.RestockMinPurchases
	for i := 0; i+n-1 < len(dates); i++ {
		if clustered[i] {
			continue
		}
		run := dates[i : i+n]
		if run[n-1].DaysSince(run[0]) > c.th.RestockSpanDays {
			continue
		}
		if c.isTightRun(run) {
			continue
		}
		return model.ClassifiedEvent{Type: model.EventRestock, Date: dates[i]}, true
	}
	return model.ClassifiedEvent{}, false
}

func (c *Classifier) isTightRun(run []model.Date) bool {
	for i := 1; i < len(run); i++ {
		if run[i].DaysSince(run[i-1]) > c.th.ClusterWindowDays {
			return false
		}
	}
	return true
}

func pctChange(from, to float64) float64 {
	return (to - from) / from * 100
}

// Classify runs the default classifier.
func Classify(purchases []model.PurchaseRecord, prices []model.PricePoint, asOf time.Time) []model.ClassifiedEvent {
	return Default.Classify(purchases, prices, asOf)
}

// ClassifyEvents runs the default classifier and aggregates by type.
func ClassifyEvents(purchases []model.PurchaseRecord, prices []model.PricePoint, asOf time.Time) []model.EventSummary {
	return Default.ClassifyEvents(purchases, prices, asOf)
}
