package tradedata

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsiderWatch/internal/model"
)

// friday is 2024-03-08.
var friday = model.NewDate(2024, time.March, 8)

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestBuildPriceIndex_FirstCloseWins(t *testing.T) {
	intraday, err := time.Parse(time.RFC3339, "2024-03-08T15:30:00Z")
	require.NoError(t, err)

	idx := BuildPriceIndex([]model.PricePoint{
		{Date: friday, Close: 10},
		{Date: model.DateOf(intraday), Close: 11},
		{Date: friday.AddDays(-1), Close: 9},
		{Date: model.Date{}, Close: 99},
	})

	assert.Equal(t, 2, idx.Len())
	c, ok := idx.At(friday)
	require.True(t, ok)
	assert.Equal(t, 10.0, c)
	_, ok = idx.At(friday.AddDays(1))
	assert.False(t, ok)
}

func TestPriceIndex_OffsetProbesAwayFromDate(t *testing.T) {
	// weekdays only: Mon 4 .. Fri 8, Mon 11
	idx := BuildPriceIndex([]model.PricePoint{
		{Date: mustDate(t, "2024-03-04"), Close: 4},
		{Date: mustDate(t, "2024-03-05"), Close: 5},
		{Date: mustDate(t, "2024-03-07"), Close: 7},
		{Date: friday, Close: 8},
		{Date: mustDate(t, "2024-03-11"), Close: 11},
	})

	tests := []struct {
		name   string
		offset int
		want   float64
		ok     bool
	}{
		{"exact", -1, 7, true},
		{"forward over weekend", 1, 11, true},
		{"backward skips missing day", -2, 5, true},
		{"backward lands exactly", -4, 4, true},
		{"zero offset", 0, 8, true},
		{"nothing within probe window", 10, 0, false},
		{"nothing before series", -20, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := idx.Offset(friday, tt.offset)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceIndex_OffsetProbeLimit(t *testing.T) {
	idx := BuildPriceIndex([]model.PricePoint{{Date: friday.AddDays(8), Close: 1}})

	c, ok := idx.Offset(friday, 3) // probes days 3..8
	assert.True(t, ok)
	assert.Equal(t, 1.0, c)
	_, ok = idx.Offset(friday, 2) // probes days 2..7
	assert.False(t, ok)

	narrow := BuildPriceIndexWithProbe([]model.PricePoint{{Date: friday.AddDays(8), Close: 1}}, 0)
	_, ok = narrow.Offset(friday, 3)
	assert.False(t, ok)
}

func TestGroupPurchasesByDate(t *testing.T) {
	purchases := []model.PurchaseRecord{
		{Date: friday, InsiderName: "B", Value: decimal.RequireFromString("1500.50")},
		{Date: friday.AddDays(-10), InsiderName: "A", Value: decimal.NewFromInt(100)},
		{Date: friday, InsiderName: "C", Value: decimal.RequireFromString("499.50")},
		{InsiderName: "undated", Value: decimal.NewFromInt(1)},
	}
	g := GroupPurchasesByDate(purchases)

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []model.Date{friday.AddDays(-10), friday}, g.SortedDates())

	grp, ok := g.Get(friday)
	require.True(t, ok)
	require.Len(t, grp.Records, 2)
	assert.Equal(t, "B", grp.Records[0].InsiderName)
	assert.Equal(t, "C", grp.Records[1].InsiderName)
	assert.True(t, grp.TotalValue.Equal(decimal.NewFromInt(2000)))
}

func TestPartitionClusters(t *testing.T) {
	base := friday
	dates := []model.Date{base, base.AddDays(3), base.AddDays(10), base.AddDays(18), base.AddDays(40), base.AddDays(47)}
	clusters := PartitionClusters(dates, 7, nil)

	require.Len(t, clusters, 3)
	assert.Equal(t, []model.Date{base, base.AddDays(3), base.AddDays(10)}, clusters[0].Dates)
	assert.Equal(t, base.AddDays(10), clusters[0].End)
	assert.True(t, clusters[0].IsClamp())
	assert.Equal(t, []model.Date{base.AddDays(18)}, clusters[1].Dates)
	assert.False(t, clusters[1].IsClamp())
	assert.Equal(t, []model.Date{base.AddDays(40), base.AddDays(47)}, clusters[2].Dates)

	assert.Equal(t, []int{0, 0, 0, 1, 2, 2}, ClusterMembership(clusters))
	assert.Empty(t, PartitionClusters(nil, 7, nil))
}

func TestPartitionClusters_IsAPartition(t *testing.T) {
	var dates []model.Date
	gaps := []int{0, 1, 8, 7, 9, 2, 15, 7, 7, 30, 1}
	cur := friday
	for _, g := range gaps {
		cur = cur.AddDays(g)
		dates = append(dates, cur)
	}

	clusters := PartitionClusters(dates, 7, nil)
	var flattened []model.Date
	for _, c := range clusters {
		flattened = append(flattened, c.Dates...)
		for i := 1; i < len(c.Dates); i++ {
			assert.LessOrEqual(t, c.Dates[i].DaysSince(c.Dates[i-1]), 7)
		}
	}
	assert.Equal(t, dates, flattened)
	for i := 1; i < len(clusters); i++ {
		assert.Greater(t, clusters[i].Start.DaysSince(clusters[i-1].End), 7)
	}
}

func TestPartitionClusters_Totals(t *testing.T) {
	g := GroupPurchasesByDate([]model.PurchaseRecord{
		{Date: friday, Value: decimal.NewFromInt(10)},
		{Date: friday, Value: decimal.NewFromInt(5)},
		{Date: friday.AddDays(2), Value: decimal.NewFromInt(1)},
	})
	clusters := PartitionClusters(g.SortedDates(), 7, g)

	require.Len(t, clusters, 1)
	assert.Equal(t, 3, clusters[0].PurchaseCount)
	assert.True(t, clusters[0].TotalValue.Equal(decimal.NewFromInt(16)))
}

func TestAddBusinessDays(t *testing.T) {
	monday := mustDate(t, "2024-03-04")
	assert.Equal(t, mustDate(t, "2024-03-05"), AddBusinessDays(monday, 1))
	assert.Equal(t, mustDate(t, "2024-03-13"), AddBusinessDays(monday, 7))
	assert.Equal(t, mustDate(t, "2024-03-11"), AddBusinessDays(friday, 1))
	saturday := friday.AddDays(1)
	assert.Equal(t, mustDate(t, "2024-03-11"), AddBusinessDays(saturday, 1))
	assert.Equal(t, monday, AddBusinessDays(monday, 0))
}

func TestWithinBusinessDays(t *testing.T) {
	monday := mustDate(t, "2024-03-04")
	assert.True(t, WithinBusinessDays(monday, mustDate(t, "2024-03-13"), 7))
	assert.True(t, WithinBusinessDays(monday, mustDate(t, "2024-03-09"), 7))
	assert.False(t, WithinBusinessDays(monday, mustDate(t, "2024-03-14"), 7))
	assert.False(t, WithinBusinessDays(monday, monday, 7))
	assert.False(t, WithinBusinessDays(monday, monday.AddDays(-1), 7))
}
