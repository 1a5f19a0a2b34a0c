// Package feecache memoizes the most recent fee computation
package feecache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/TarasTrach/NexusBot/storage"
	"github.com/TarasTrach/NexusBot/storage/types"
)

const DefaultTTL = 3 * time.Hour

// ComputeFunc computes the fee percent (nil if not computable),
// and its rendered text for the given params
type ComputeFunc func(context.Context, types.FeeParams) (*float64, string, error)

// Cache is a single-slot fee cache. The slot holds the last computed entry,
// and is valid only for the exact params it was computed with
type Cache struct {
	storage storage.Storage
	logger  *slog.Logger
	now     func() time.Time

	entry  *types.FeeEntry
	warmed bool

	ttl time.Duration
	mux sync.Mutex
}

// New creates a new fee cache, persisting entries to the given storage
func New(storage storage.Storage, opts ...Option) *Cache {
	c := &Cache{
		storage: storage,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		ttl:     DefaultTTL,
	}

	// Apply the options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetOrCompute returns the cached entry if it's fresh and matches the params.
// Otherwise it computes a new entry, and replaces the slot with it.
// Concurrent callers are serialized, so a miss is computed only once
func (c *Cache) GetOrCompute(
	ctx context.Context,
	params types.FeeParams,
	compute ComputeFunc,
) (*types.FeeEntry, error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.warm(ctx)

	now := c.now().UTC()

	if c.valid(params, now) {
		c.logger.Debug(
			"fee cache hit",
			"computed_at", c.entry.ComputedAt,
		)

		return copyEntry(c.entry), nil
	}

	feePercent, text, err := compute(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("unable to compute fee: %w", err)
	}

	entry := &types.FeeEntry{
		Params:     params,
		ComputedAt: now,
		FeePercent: feePercent,
		Text:       text,
	}

	c.entry = entry

	if err = c.storage.SaveFeeEntry(ctx, entry); err != nil {
		c.logger.Error(
			"unable to persist fee entry",
			"err", err,
		)
	}

	return copyEntry(entry), nil
}

// Invalidate drops the cached entry
func (c *Cache) Invalidate() {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.entry = nil
	c.warmed = true
}

// warm loads the persisted entry on first use.
// Must be called with the lock held
func (c *Cache) warm(ctx context.Context) {
	if c.warmed {
		return
	}

	entry, err := c.storage.FeeEntry(ctx)
	if err != nil {
		c.logger.Error(
			"unable to load persisted fee entry",
			"err", err,
		)

		return // retried on next use
	}

	c.entry = entry
	c.warmed = true
}

// valid returns true if the slot holds a fresh entry for the params.
// Must be called with the lock held
func (c *Cache) valid(params types.FeeParams, now time.Time) bool {
	if c.entry == nil {
		return false
	}

	if c.entry.Params != params {
		return false
	}

	return now.Sub(c.entry.ComputedAt) < c.ttl
}

func copyEntry(entry *types.FeeEntry) *types.FeeEntry {
	cp := *entry

	if entry.FeePercent != nil {
		v := *entry.FeePercent
		cp.FeePercent = &v
	}

	return &cp
}
