package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TarasTrach/NexusBot/storage/types"
)

func newOrder(id string, price, minLimit, maxLimit float64) *types.Order {
	return &types.Order{
		ID:       id,
		Price:    price,
		MinLimit: minLimit,
		MaxLimit: maxLimit,
	}
}

func ids(orders []*types.Order) []string {
	res := make([]string, 0, len(orders))
	for _, o := range orders {
		res = append(res, o.ID)
	}

	return res
}

func TestRank_Sort(t *testing.T) {
	t.Parallel()

	orders := []*types.Order{
		newOrder("a", 41.2, 0, 100),
		newOrder("b", 40.8, 0, 100),
		newOrder("c", 41.0, 0, 100),
	}

	t.Run("buy ascending", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []string{"b", "c", "a"}, ids(Rank(orders, types.SideBUY, Filters{})))
	})

	t.Run("sell descending", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []string{"a", "c", "b"}, ids(Rank(orders, types.SideSELL, Filters{})))
	})

	t.Run("input untouched", func(t *testing.T) {
		t.Parallel()

		Rank(orders, types.SideBUY, Filters{})

		assert.Equal(t, []string{"a", "b", "c"}, ids(orders))
	})
}

func TestRank_StableTies(t *testing.T) {
	t.Parallel()

	orders := []*types.Order{
		{ID: "binance", Price: 41, Source: types.SourceBinance},
		{ID: "okx", Price: 41, Source: types.SourceOKX},
		{ID: "cheap", Price: 40, Source: types.SourceBybit},
		{ID: "bybit", Price: 41, Source: types.SourceBybit},
	}

	assert.Equal(
		t,
		[]string{"cheap", "binance", "okx", "bybit"},
		ids(Rank(orders, types.SideBUY, Filters{})),
	)
	assert.Equal(
		t,
		[]string{"binance", "okx", "bybit", "cheap"},
		ids(Rank(orders, types.SideSELL, Filters{})),
	)
}

func TestRank_Filters(t *testing.T) {
	t.Parallel()

	t.Run("exclusion", func(t *testing.T) {
		t.Parallel()

		orders := []*types.Order{
			{ID: "a", Price: 1, Counterparty: "Fastious"},
			{ID: "b", Price: 2, Counterparty: "alice"},
			{ID: "c", Price: 3},
		}

		ranked := Rank(orders, types.SideBUY, Filters{
			Exclude: Blocklist("Fastious"),
		})

		assert.Equal(t, []string{"b", "c"}, ids(ranked))
	})

	t.Run("amount fit", func(t *testing.T) {
		t.Parallel()

		amount := 12440.0

		orders := []*types.Order{
			newOrder("inside", 41, 1000, 20000),
			newOrder("too small", 40, 100, 5000),
			newOrder("lower bound", 42, 12440, 13000),
			newOrder("upper bound", 43, 100, 12440),
		}

		ranked := Rank(orders, types.SideBUY, Filters{TargetAmount: &amount})

		assert.Equal(t, []string{"inside", "lower bound", "upper bound"}, ids(ranked))
	})

	t.Run("liquidity override", func(t *testing.T) {
		t.Parallel()

		var (
			amount = 12440.0
			busy   = 6
			quiet  = 5
		)

		liquid := newOrder("liquid", 40, 100, 5000)
		liquid.RecentOrderCount = &busy

		atThreshold := newOrder("at threshold", 39, 100, 5000)
		atThreshold.RecentOrderCount = &quiet

		orders := []*types.Order{liquid, atThreshold, newOrder("inside", 41, 1000, 20000)}

		withOverride := Rank(orders, types.SideBUY, Filters{
			TargetAmount:       &amount,
			LiquidityThreshold: DefaultLiquidityThreshold,
		})
		assert.Equal(t, []string{"liquid", "inside"}, ids(withOverride))

		withoutOverride := Rank(orders, types.SideBUY, Filters{TargetAmount: &amount})
		assert.Equal(t, []string{"inside"}, ids(withoutOverride))
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()

		orders := []*types.Order{
			newOrder("a", 5, 0, 1),
			newOrder("b", 4, 0, 1),
			newOrder("c", 3, 0, 1),
			newOrder("d", 2, 0, 1),
		}

		assert.Equal(t, []string{"d", "c", "b"}, ids(Rank(orders, types.SideBUY, Filters{Limit: 3})))
		assert.Len(t, Rank(orders, types.SideBUY, Filters{Limit: 10}), 4)
	})

	t.Run("nil orders skipped", func(t *testing.T) {
		t.Parallel()

		ranked := Rank([]*types.Order{nil, newOrder("a", 1, 0, 1)}, types.SideBUY, Filters{})

		assert.Equal(t, []string{"a"}, ids(ranked))
	})
}

func TestRank_Idempotent(t *testing.T) {
	t.Parallel()

	amount := 500.0
	orders := []*types.Order{
		newOrder("a", 41.2, 100, 1000),
		newOrder("b", 40.8, 100, 1000),
		newOrder("c", 41.2, 100, 1000),
		newOrder("d", 39.0, 600, 1000),
		newOrder("e", 40.8, 100, 1000),
	}

	filters := Filters{TargetAmount: &amount, Limit: 3}

	first := Rank(orders, types.SideBUY, filters)
	second := Rank(first, types.SideBUY, filters)

	require.Len(t, first, 3)
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, ids(first), ids(Rank(orders, types.SideBUY, filters)))
}
