package tradedata

import (
	"sort"

	"github.com/shopspring/decimal"

	"InsiderWatch/internal/model"
)

// PurchaseGroup holds every purchase made on one calendar date.
type PurchaseGroup struct {
	Date       model.Date
	Records    []model.PurchaseRecord
	TotalValue decimal.Decimal
}

// PurchaseGroups is the per-date grouping of a ticker's purchases.
type PurchaseGroups struct {
	byDate map[model.Date]*PurchaseGroup
	dates  []model.Date
}

// GroupPurchasesByDate groups purchases by the date portion of their trade
// date, summing values. Records within a date keep their input order.
func GroupPurchasesByDate(purchases []model.PurchaseRecord) *PurchaseGroups {
	g := &PurchaseGroups{byDate: make(map[model.Date]*PurchaseGroup)}
	for _, p := range purchases {
		if p.Date.IsZero() {
			continue
		}
		d := model.DateOf(p.Date.Time)
		grp, ok := g.byDate[d]
		if !ok {
			grp = &PurchaseGroup{Date: d, TotalValue: decimal.Zero}
			g.byDate[d] = grp
			g.dates = append(g.dates, d)
		}
		grp.Records = append(grp.Records, p)
		grp.TotalValue = grp.TotalValue.Add(p.Value)
	}
	sort.Slice(g.dates, func(i, j int) bool { return g.dates[i].Before(g.dates[j].Time) })
	return g
}

// Get returns the group for d.
func (g *PurchaseGroups) Get(d model.Date) (*PurchaseGroup, bool) {
	grp, ok := g.byDate[d]
	return grp, ok
}

// SortedDates returns the distinct purchase dates in ascending order.
func (g *PurchaseGroups) SortedDates() []model.Date {
	out := make([]model.Date, len(g.dates))
	copy(out, g.dates)
	return out
}

// Len returns the number of distinct purchase dates.
func (g *PurchaseGroups) Len() int {
	return len(g.dates)
}
