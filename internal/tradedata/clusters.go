package tradedata

import (
	"github.com/shopspring/decimal"

	"InsiderWatch/internal/model"
)

// Cluster is a maximal run of purchase dates where each consecutive pair is
// at most the cluster window apart. Size-1 clusters are singletons.
type Cluster struct {
	Start         model.Date
	End           model.Date
	Dates         []model.Date
	PurchaseCount int
	TotalValue    decimal.Decimal
}

// IsClamp reports whether the cluster has more than one member date.
func (c Cluster) IsClamp() bool {
	return len(c.Dates) > 1
}

// PartitionClusters splits sorted dates into clusters, merging a date into the
// current cluster when it is at most windowDays after the previous date.
// groups may be nil, in which case counts and totals are left zero.
func PartitionClusters(sorted []model.Date, windowDays int, groups *PurchaseGroups) []Cluster {
	var clusters []Cluster
	for i, d := range sorted {
		if i == 0 || d.DaysSince(sorted[i-1]) > windowDays {
			clusters = append(clusters, Cluster{Start: d, TotalValue: decimal.Zero})
		}
		c := &clusters[len(clusters)-1]
		c.End = d
		c.Dates = append(c.Dates, d)
		if groups != nil {
			if grp, ok := groups.Get(d); ok {
				c.PurchaseCount += len(grp.Records)
				c.TotalValue = c.TotalValue.Add(grp.TotalValue)
			}
		}
	}
	return clusters
}

// ClusterMembership returns, for each index of sorted, the index of the
// cluster that contains it.
func ClusterMembership(clusters []Cluster) []int {
	var out []int
	for ci, c := range clusters {
		for range c.Dates {
			out = append(out, ci)
		}
	}
	return out
}
