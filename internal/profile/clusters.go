package profile

import (
	"sort"

	"gastos/internal/core"
	"gastos/internal/stats"
)

// DefaultClusterCount is the number of spending tiers formed when the
// ledger is large enough.
const DefaultClusterCount = 3

type (
	// Cluster is one spending tier.
	Cluster struct {
		Mean       float64  `json:"promedio"`
		Min        float64  `json:"min"`
		Max        float64  `json:"max"`
		Count      int      `json:"cantidad"`
		Categories []string `json:"categorias"`
	}

	// ClusterResult groups expenses into tiers ordered cheapest first.
	ClusterResult struct {
		Clusters     []Cluster `json:"clusters"`
		Distribution []int     `json:"distribucion"`
	}
)

// Clusters partitions expense amounts into k spending tiers. Amounts are
// standardized before clustering so the partition depends on shape, not
// scale. When the ledger has fewer records than k, k shrinks to
// max(2, n/2). Tiers come back sorted by mean ascending, each listing the
// categories that appear in it, and the distribution counts sum to the
// ledger size.
func Clusters(ledger core.Ledger, k int) (ClusterResult, error) {
	n := len(ledger)
	if n < 2 {
		return ClusterResult{}, &core.InsufficientDataError{Reason: "need at least 2 records to cluster"}
	}
	if k <= 0 {
		k = DefaultClusterCount
	}
	if n < k {
		k = n / 2
		if k < 2 {
			k = 2
		}
	}

	amounts := ledger.Amounts()
	labels := stats.KMeans1D(stats.ZScores(amounts), k)

	groups := make(map[int][]float64)
	groupCats := make(map[int]map[string]bool)
	for i, label := range labels {
		groups[label] = append(groups[label], amounts[i])
		cats, ok := groupCats[label]
		if !ok {
			cats = make(map[string]bool)
			groupCats[label] = cats
		}
		cats[ledger[i].Category] = true
	}

	clusters := make([]Cluster, 0, len(groups))
	for label, members := range groups {
		c := Cluster{Min: members[0], Max: members[0], Count: len(members)}
		var sum float64
		for _, v := range members {
			sum += v
			if v < c.Min {
				c.Min = v
			}
			if v > c.Max {
				c.Max = v
			}
		}
		c.Mean = core.Round2(sum / float64(len(members)))
		c.Min = core.Round2(c.Min)
		c.Max = core.Round2(c.Max)
		for cat := range groupCats[label] {
			c.Categories = append(c.Categories, cat)
		}
		sort.Strings(c.Categories)
		clusters = append(clusters, c)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Mean < clusters[j].Mean })

	distribution := make([]int, len(clusters))
	for i, c := range clusters {
		distribution[i] = c.Count
	}
	return ClusterResult{Clusters: clusters, Distribution: distribution}, nil
}
