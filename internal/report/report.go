// Package report aggregates the ledger for dashboards. Read-only.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"minipos/internal/model"
)

// TotalRevenue sums the total over all sales. Zero for an empty ledger.
func TotalRevenue(sales []model.Sale) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range sales {
		sum = sum.Add(s.Total)
	}
	return sum
}

// ProductRank is one group of the top-products ranking.
type ProductRank struct {
	Items    string
	Quantity int64
}

// TopProducts groups sales by their flattened items description (a
// multi-product sale forms its own group), sums quantity per group and
// ranks by descending quantity. Ties keep first-encountered order.
func TopProducts(sales []model.Sale) []ProductRank {
	idx := make(map[string]int)
	var ranks []ProductRank
	for _, s := range sales {
		if i, ok := idx[s.Items]; ok {
			ranks[i].Quantity += s.Quantity
			continue
		}
		idx[s.Items] = len(ranks)
		ranks = append(ranks, ProductRank{Items: s.Items, Quantity: s.Quantity})
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Quantity > ranks[j].Quantity })
	return ranks
}
