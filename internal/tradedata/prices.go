// Package tradedata normalizes raw purchase and price records into
// date-indexed lookups used by the classifier.
package tradedata

import "InsiderWatch/internal/model"

// DefaultProbeDays is how many extra days Offset searches past a missing target.
const DefaultProbeDays = 5

// PriceIndex maps a calendar date to its close.
type PriceIndex struct {
	closes    map[model.Date]float64
	probeDays int
}

// BuildPriceIndex indexes points by date. Points are read in the given order
// and only the first close seen for a date is kept.
func BuildPriceIndex(points []model.PricePoint) *PriceIndex {
	return BuildPriceIndexWithProbe(points, DefaultProbeDays)
}

// BuildPriceIndexWithProbe is BuildPriceIndex with a custom Offset probe width.
func BuildPriceIndexWithProbe(points []model.PricePoint, probeDays int) *PriceIndex {
	idx := &PriceIndex{
		closes:    make(map[model.Date]float64, len(points)),
		probeDays: probeDays,
	}
	for _, p := range points {
		if p.Date.IsZero() {
			continue
		}
		d := model.DateOf(p.Date.Time)
		if _, seen := idx.closes[d]; seen {
			continue
		}
		idx.closes[d] = p.Close
	}
	return idx
}

// Len returns the number of distinct indexed dates.
func (idx *PriceIndex) Len() int {
	return len(idx.closes)
}

// At returns the close on d.
func (idx *PriceIndex) At(d model.Date) (float64, bool) {
	c, ok := idx.closes[d]
	return c, ok
}

// Offset returns the close dayOffset calendar days from d. When that day has
// no price (weekend, holiday) it keeps stepping away from d for up to
// probeDays more days before giving up.
func (idx *PriceIndex) Offset(d model.Date, dayOffset int) (float64, bool) {
	if dayOffset == 0 {
		return idx.At(d)
	}
	step := 1
	if dayOffset < 0 {
		step = -1
	}
	target := d.AddDays(dayOffset)
	for i := 0; i <= idx.probeDays; i++ {
		if c, ok := idx.closes[target.AddDays(i*step)]; ok {
			return c, true
		}
	}
	return 0, false
}
