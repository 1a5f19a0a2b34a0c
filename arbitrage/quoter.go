package arbitrage

import (
	"context"
	"fmt"

	"github.com/TarasTrach/NexusBot/feecache"
	"github.com/TarasTrach/NexusBot/storage/types"
)

// FeeDefaults provides the stored fee quote params
type FeeDefaults interface {
	FeeParams(context.Context) (types.FeeParams, error)
}

// FeeQuoter serves fee quotes through the fee cache
type FeeQuoter struct {
	cache    *feecache.Cache
	service  *Service
	defaults FeeDefaults
}

// NewFeeQuoter creates a new cached fee quoter
func NewFeeQuoter(cache *feecache.Cache, service *Service, defaults FeeDefaults) *FeeQuoter {
	return &FeeQuoter{
		cache:    cache,
		service:  service,
		defaults: defaults,
	}
}

// DefaultParams returns the stored fee quote params
func (q *FeeQuoter) DefaultParams(ctx context.Context) (types.FeeParams, error) {
	params, err := q.defaults.FeeParams(ctx)
	if err != nil {
		return types.FeeParams{}, fmt.Errorf("unable to read fee params: %w", err)
	}

	return params, nil
}

// Quote returns the fee quote for the params, computing it only on a cache miss
func (q *FeeQuoter) Quote(ctx context.Context, params types.FeeParams) (*types.FeeEntry, error) {
	return q.cache.GetOrCompute(ctx, params, q.service.FeeQuote)
}
