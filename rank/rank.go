// Package rank orders aggregated P2P orders under a trade objective
package rank

import (
	"sort"

	"github.com/TarasTrach/NexusBot/storage/types"
)

// DefaultLiquidityThreshold is the recent order count above which
// an order is kept regardless of its transaction limits
const DefaultLiquidityThreshold = 5

// Filters are the optional ranking constraints
type Filters struct {
	// Exclude is the counterparty block-list
	Exclude map[string]struct{}

	// TargetAmount keeps only orders whose limits admit the amount
	TargetAmount *float64

	// LiquidityThreshold admits orders outside the limits when their
	// recent order count exceeds it. Disabled if 0
	LiquidityThreshold int

	// Limit is the top-N cut. Disabled if 0
	Limit int
}

// Rank filters and sorts the orders so the best price for the side comes first.
// Equal prices keep their input order. The input slice is not modified
func Rank(orders []*types.Order, side types.Side, filters Filters) []*types.Order {
	ranked := make([]*types.Order, 0, len(orders))

	for _, order := range orders {
		if order == nil {
			continue
		}

		if excluded(order, filters.Exclude) {
			continue
		}

		if !fits(order, filters.TargetAmount, filters.LiquidityThreshold) {
			continue
		}

		ranked = append(ranked, order)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if side == types.SideSELL {
			return ranked[i].Price > ranked[j].Price
		}

		return ranked[i].Price < ranked[j].Price
	})

	if filters.Limit > 0 && len(ranked) > filters.Limit {
		ranked = ranked[:filters.Limit]
	}

	return ranked
}

// Blocklist builds an exclusion set out of counterparty names
func Blocklist(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	return set
}

func excluded(order *types.Order, exclude map[string]struct{}) bool {
	if len(exclude) == 0 || order.Counterparty == "" {
		return false
	}

	_, ok := exclude[order.Counterparty]

	return ok
}

func fits(order *types.Order, amount *float64, liquidityThreshold int) bool {
	if amount == nil {
		return true
	}

	if *amount >= order.MinLimit && *amount <= order.MaxLimit {
		return true
	}

	return liquidityThreshold > 0 &&
		order.RecentOrderCount != nil &&
		*order.RecentOrderCount > liquidityThreshold
}
