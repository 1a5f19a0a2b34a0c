package aggregate

import (
	"context"

	"github.com/TarasTrach/NexusBot/storage/types"
)

type (
	sourceDelegate func() types.Source
	fetchDelegate  func(context.Context, *types.Query) ([]*types.Order, error)
)

type mockAdapter struct {
	sourceFn sourceDelegate
	fetchFn  fetchDelegate
}

func (m *mockAdapter) Source() types.Source {
	if m.sourceFn != nil {
		return m.sourceFn()
	}

	return ""
}

func (m *mockAdapter) Fetch(ctx context.Context, q *types.Query) ([]*types.Order, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, q)
	}

	return nil, nil
}

// newStaticAdapter returns an adapter that always yields the given orders
func newStaticAdapter(source types.Source, orders ...*types.Order) *mockAdapter {
	return &mockAdapter{
		sourceFn: func() types.Source {
			return source
		},
		fetchFn: func(_ context.Context, _ *types.Query) ([]*types.Order, error) {
			return orders, nil
		},
	}
}
