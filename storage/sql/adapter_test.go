package sql

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TarasTrach/NexusBot/storage/types"
)

type (
	execDelegate     func(context.Context, string, ...any) (pgconn.CommandTag, error)
	queryRowDelegate func(context.Context, string, ...any) pgx.Row
)

type mockDB struct {
	execFn     execDelegate
	queryRowFn queryRowDelegate
}

func (m *mockDB) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if m.execFn != nil {
		return m.execFn(ctx, query, args...)
	}

	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *mockDB) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if m.queryRowFn != nil {
		return m.queryRowFn(ctx, query, args...)
	}

	return &mockRow{err: pgx.ErrNoRows}
}

// mockRow scans the given values into the destinations, in order
type mockRow struct {
	err    error
	values []any
}

func (r *mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p, _ = r.values[i].(string)
		case *int32:
			*p, _ = r.values[i].(int32)
		case *pgtype.Numeric:
			*p, _ = r.values[i].(pgtype.Numeric)
		case *pgtype.Timestamptz:
			*p, _ = r.values[i].(pgtype.Timestamptz)
		default:
			return errors.New("unsupported destination")
		}
	}

	return nil
}

func TestStorage_Setting(t *testing.T) {
	t.Parallel()

	t.Run("unset setting", func(t *testing.T) {
		t.Parallel()

		s := NewStorage(&mockDB{})

		value, err := s.Setting(context.Background(), "reference_rate")
		require.NoError(t, err)

		assert.Empty(t, value)
	})

	t.Run("query error", func(t *testing.T) {
		t.Parallel()

		s := NewStorage(&mockDB{
			queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &mockRow{err: errors.New("boom")}
			},
		})

		_, err := s.Setting(context.Background(), "reference_rate")
		assert.Error(t, err)
	})

	t.Run("stored setting", func(t *testing.T) {
		t.Parallel()

		var capturedKey any

		s := NewStorage(&mockDB{
			queryRowFn: func(_ context.Context, _ string, args ...any) pgx.Row {
				capturedKey = args[0]

				return &mockRow{values: []any{"41.5"}}
			},
		})

		value, err := s.Setting(context.Background(), "reference_rate")
		require.NoError(t, err)

		assert.Equal(t, "41.5", value)
		assert.Equal(t, "reference_rate", capturedKey)
	})

	t.Run("save setting", func(t *testing.T) {
		t.Parallel()

		var captured []any

		s := NewStorage(&mockDB{
			execFn: func(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
				captured = args

				return pgconn.NewCommandTag("INSERT 0 1"), nil
			},
		})

		require.NoError(t, s.SaveSetting(context.Background(), "rank_index", "2"))
		assert.Equal(t, []any{"rank_index", "2"}, captured)
	})
}

func TestStorage_FeeEntry(t *testing.T) {
	t.Parallel()

	t.Run("empty slot", func(t *testing.T) {
		t.Parallel()

		entry, err := NewStorage(&mockDB{}).FeeEntry(context.Background())
		require.NoError(t, err)

		assert.Nil(t, entry)
	})

	t.Run("stored entry", func(t *testing.T) {
		t.Parallel()

		computedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		s := NewStorage(&mockDB{
			queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &mockRow{
					values: []any{
						floatToNumeric(41.5),
						floatToNumeric(300),
						floatToNumeric(4),
						int32(1),
						floatToNumeric(2.3),
						"fee text",
						timeToTimestampz(computedAt),
					},
				}
			},
		})

		entry, err := s.FeeEntry(context.Background())
		require.NoError(t, err)
		require.NotNil(t, entry)

		assert.Equal(t, types.FeeParams{Rate: 41.5, Amount: 300, Discount: 4, RankIndex: 1}, entry.Params)
		assert.Equal(t, "fee text", entry.Text)
		assert.True(t, computedAt.Equal(entry.ComputedAt))

		require.NotNil(t, entry.FeePercent)
		assert.InDelta(t, 2.3, *entry.FeePercent, 1e-9)
	})

	t.Run("not computable entry", func(t *testing.T) {
		t.Parallel()

		var captured []any

		s := NewStorage(&mockDB{
			execFn: func(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
				captured = args

				return pgconn.NewCommandTag("INSERT 0 1"), nil
			},
		})

		entry := &types.FeeEntry{
			Params:     types.FeeParams{Rate: 41.5, Amount: 300, Discount: 4, RankIndex: 1},
			ComputedAt: time.Now(),
			Text:       "n/a",
		}

		require.NoError(t, s.SaveFeeEntry(context.Background(), entry))
		require.Len(t, captured, 7)

		feePercent, ok := captured[4].(pgtype.Numeric)
		require.True(t, ok)
		assert.False(t, feePercent.Valid)
	})
}

func TestNumericConversion(t *testing.T) {
	t.Parallel()

	for _, value := range []float64{0, 1, 41.5, 2.3456, 12450, 41.123456, 0.1 + 0.2, -3.75} {
		assert.Equal(t, value, numericToFloat(floatToNumeric(value)))
	}

	// Close params stay apart once persisted
	assert.NotEqual(t, 41.1235, numericToFloat(floatToNumeric(41.123456)))

	assert.Zero(t, numericToFloat(pgtype.Numeric{}))
	assert.False(t, floatToNumeric(math.NaN()).Valid)
}
