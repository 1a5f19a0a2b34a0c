package aggregate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TarasTrach/NexusBot/storage/types"
)

var errInvalidAdapter = errors.New("invalid adapter")

// Aggregator fans a query out to all registered adapters
type Aggregator struct {
	logger *slog.Logger

	adapters []Adapter

	adapterTimeout time.Duration
	mux            sync.RWMutex
}

// New creates a new Aggregator instance
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// Apply the options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Register registers a new adapter with the aggregator.
// Results are merged in registration order
func (a *Aggregator) Register(adapter Adapter) error {
	if adapter == nil || adapter.Source() == "" {
		return errInvalidAdapter
	}

	a.mux.Lock()
	a.adapters = append(a.adapters, adapter)
	a.mux.Unlock()

	a.logger.Info(
		"registered new adapter",
		"source", adapter.Source(),
	)

	return nil
}

// Sources returns the sources of the registered adapters, in order
func (a *Aggregator) Sources() []types.Source {
	a.mux.RLock()
	defer a.mux.RUnlock()

	sources := make([]types.Source, 0, len(a.adapters))
	for _, adapter := range a.adapters {
		sources = append(sources, adapter.Source())
	}

	return sources
}

// SearchAll queries every adapter concurrently, and merges the results.
// A failing adapter contributes no orders, partial results are not an error
func (a *Aggregator) SearchAll(ctx context.Context, q *types.Query) []*types.Order {
	a.mux.RLock()
	adapters := make([]Adapter, len(a.adapters))
	copy(adapters, a.adapters)
	a.mux.RUnlock()

	var (
		g       errgroup.Group
		results = make([][]*types.Order, len(adapters)) // each worker owns its slot
	)

	for i, adapter := range adapters {
		g.Go(func() error {
			results[i] = a.fetch(ctx, adapter, q)

			return nil
		})
	}

	_ = g.Wait() // workers never fail

	total := 0
	for _, orders := range results {
		total += len(orders)
	}

	merged := make([]*types.Order, 0, total)
	for _, orders := range results {
		merged = append(merged, orders...)
	}

	return merged
}

// fetch runs a single adapter, and tags its orders with the adapter source
func (a *Aggregator) fetch(ctx context.Context, adapter Adapter, q *types.Query) []*types.Order {
	source := adapter.Source()

	if a.adapterTimeout > 0 {
		var cancelFn context.CancelFunc

		ctx, cancelFn = context.WithTimeout(ctx, a.adapterTimeout)
		defer cancelFn()
	}

	orders, err := adapter.Fetch(ctx, q)
	if err != nil {
		a.logger.Error(
			"unable to fetch orders",
			"source", source,
			"err", err,
		)

		return nil
	}

	tagged := make([]*types.Order, 0, len(orders))

	for _, order := range orders {
		if order == nil {
			continue
		}

		o := *order
		o.Source = source

		tagged = append(tagged, &o)
	}

	a.logger.Debug(
		"fetched orders",
		"source", source,
		"count", len(tagged),
	)

	return tagged
}
