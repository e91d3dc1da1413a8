package tradedata

import "InsiderWatch/internal/model"

// AddBusinessDays steps forward from d one calendar day at a time, counting
// only weekdays, and returns the day on which the n-th weekday is reached.
func AddBusinessDays(d model.Date, n int) model.Date {
	cur := d
	for counted := 0; counted < n; {
		cur = cur.AddDays(1)
		if !cur.IsWeekend() {
			counted++
		}
	}
	return cur
}

// WithinBusinessDays reports whether later falls after from and no further
// than n business days ahead of it.
func WithinBusinessDays(from, later model.Date, n int) bool {
	if !later.After(from.Time) {
		return false
	}
	return !later.After(AddBusinessDays(from, n).Time)
}
