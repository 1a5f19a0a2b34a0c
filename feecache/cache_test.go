package feecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TarasTrach/NexusBot/storage/memory"
	"github.com/TarasTrach/NexusBot/storage/mock"
	"github.com/TarasTrach/NexusBot/storage/types"
)

// testClock is a manually advanced clock
type testClock struct {
	now time.Time
	mux sync.Mutex
}

func newTestClock() *testClock {
	return &testClock{
		now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (c *testClock) Now() time.Time {
	c.mux.Lock()
	defer c.mux.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.now = c.now.Add(d)
}

// countingCompute returns a compute func yielding a fixed percent,
// and counting its invocations
func countingCompute(calls *atomic.Int32, percent float64) ComputeFunc {
	return func(_ context.Context, _ types.FeeParams) (*float64, string, error) {
		calls.Add(1)

		v := percent

		return &v, "fee text", nil
	}
}

var testParams = types.FeeParams{
	Rate:      41.5,
	Amount:    300,
	Discount:  5,
	RankIndex: 1,
}

func TestCache_GetOrCompute(t *testing.T) {
	t.Parallel()

	t.Run("hit within ttl", func(t *testing.T) {
		t.Parallel()

		var (
			calls atomic.Int32
			clock = newTestClock()
			c     = New(memory.NewStorage(), WithClock(clock.Now))
		)

		first, err := c.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		clock.Advance(DefaultTTL - time.Second)

		second, err := c.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 9.9))
		require.NoError(t, err)

		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, first, second)
		require.NotNil(t, second.FeePercent)
		assert.InDelta(t, 2.3, *second.FeePercent, 1e-9)
	})

	t.Run("expired entry", func(t *testing.T) {
		t.Parallel()

		var (
			calls atomic.Int32
			clock = newTestClock()
			c     = New(memory.NewStorage(), WithClock(clock.Now), WithTTL(time.Minute))
		)

		_, err := c.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		clock.Advance(time.Minute)

		entry, err := c.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.5))
		require.NoError(t, err)

		assert.Equal(t, int32(2), calls.Load())
		assert.InDelta(t, 2.5, *entry.FeePercent, 1e-9)
		assert.Equal(t, clock.Now(), entry.ComputedAt)
	})

	t.Run("params change within ttl", func(t *testing.T) {
		t.Parallel()

		var (
			calls atomic.Int32
			c     = New(memory.NewStorage())
		)

		_, err := c.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		changed := testParams
		changed.RankIndex = 2

		entry, err := c.GetOrCompute(context.Background(), changed, countingCompute(&calls, 2.7))
		require.NoError(t, err)

		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, changed, entry.Params)

		// The slot was replaced, the original params recompute
		_, err = c.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("not computable is cached", func(t *testing.T) {
		t.Parallel()

		var (
			calls   atomic.Int32
			c       = New(memory.NewStorage())
			compute = func(_ context.Context, _ types.FeeParams) (*float64, string, error) {
				calls.Add(1)

				return nil, "not enough orders", nil
			}
		)

		for range 3 {
			entry, err := c.GetOrCompute(context.Background(), testParams, compute)
			require.NoError(t, err)

			assert.Nil(t, entry.FeePercent)
			assert.Equal(t, "not enough orders", entry.Text)
		}

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("compute error is not cached", func(t *testing.T) {
		t.Parallel()

		var (
			calls atomic.Int32
			c     = New(memory.NewStorage())
		)

		_, err := c.GetOrCompute(
			context.Background(),
			testParams,
			func(_ context.Context, _ types.FeeParams) (*float64, string, error) {
				return nil, "", errors.New("boom")
			},
		)
		require.Error(t, err)

		_, err = c.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("warm from storage", func(t *testing.T) {
		t.Parallel()

		var (
			calls   atomic.Int32
			clock   = newTestClock()
			percent = 1.8
			store   = memory.NewStorage()
		)

		require.NoError(t, store.SaveFeeEntry(context.Background(), &types.FeeEntry{
			Params:     testParams,
			ComputedAt: clock.Now().Add(-time.Hour),
			FeePercent: &percent,
			Text:       "persisted",
		}))

		c := New(store, WithClock(clock.Now))

		entry, err := c.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		assert.Zero(t, calls.Load())
		assert.Equal(t, "persisted", entry.Text)
	})

	t.Run("cold and warm caches agree", func(t *testing.T) {
		t.Parallel()

		var (
			calls atomic.Int32
			clock = newTestClock()
			warm  = New(memory.NewStorage(), WithClock(clock.Now))
			cold  = New(memory.NewStorage(), WithClock(clock.Now))
		)

		_, err := warm.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		warmEntry, err := warm.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		coldEntry, err := cold.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		assert.Equal(t, warmEntry, coldEntry)
	})

	t.Run("persisted on miss", func(t *testing.T) {
		t.Parallel()

		var (
			calls atomic.Int32
			saved *types.FeeEntry
			store = &mock.Storage{
				SaveFeeEntryFn: func(_ context.Context, entry *types.FeeEntry) error {
					saved = entry

					return nil
				},
			}
		)

		entry, err := New(store).GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		require.NotNil(t, saved)
		assert.Equal(t, entry.ComputedAt, saved.ComputedAt)
		assert.Equal(t, testParams, saved.Params)
	})

	t.Run("persist failure is not fatal", func(t *testing.T) {
		t.Parallel()

		var (
			calls atomic.Int32
			store = &mock.Storage{
				SaveFeeEntryFn: func(_ context.Context, _ *types.FeeEntry) error {
					return errors.New("disk full")
				},
			}
			c = New(store)
		)

		_, err := c.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		_, err = c.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("concurrent identical requests compute once", func(t *testing.T) {
		t.Parallel()

		var (
			calls atomic.Int32
			c     = New(memory.NewStorage())
			wg    sync.WaitGroup
		)

		compute := func(ctx context.Context, params types.FeeParams) (*float64, string, error) {
			time.Sleep(10 * time.Millisecond)

			return countingCompute(&calls, 2.3)(ctx, params)
		}

		for range 10 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := c.GetOrCompute(context.Background(), testParams, compute)
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("invalidate", func(t *testing.T) {
		t.Parallel()

		var (
			calls atomic.Int32
			c     = New(memory.NewStorage())
		)

		_, err := c.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		c.Invalidate()

		_, err = c.GetOrCompute(context.Background(), testParams, countingCompute(&calls, 2.3))
		require.NoError(t, err)

		assert.Equal(t, int32(2), calls.Load())
	})
}
