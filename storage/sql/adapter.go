package sql

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/TarasTrach/NexusBot/storage/types"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) *Storage {
	return &Storage{
		db: db,
	}
}

func (s *Storage) Setting(ctx context.Context, key string) (string, error) {
	var value string

	if err := s.db.QueryRow(ctx, settingQuery, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil // valid case, unset
		}

		return "", fmt.Errorf("unable to fetch setting %q: %w", key, err)
	}

	return value, nil
}

func (s *Storage) SaveSetting(ctx context.Context, key, value string) error {
	if _, err := s.db.Exec(ctx, saveSettingQuery, key, value); err != nil {
		return fmt.Errorf("unable to save setting %q: %w", key, err)
	}

	return nil
}

func (s *Storage) FeeEntry(ctx context.Context) (*types.FeeEntry, error) {
	var (
		rate, amount, discount, feePercent pgtype.Numeric

		rankIndex  int32
		text       string
		computedAt pgtype.Timestamptz
	)

	err := s.db.QueryRow(ctx, feeEntryQuery).Scan(
		&rate,
		&amount,
		&discount,
		&rankIndex,
		&feePercent,
		&text,
		&computedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, fmt.Errorf("unable to fetch fee entry: %w", err)
	}

	entry := &types.FeeEntry{
		Params: types.FeeParams{
			Rate:      numericToFloat(rate),
			Amount:    numericToFloat(amount),
			Discount:  numericToFloat(discount),
			RankIndex: int(rankIndex),
		},
		ComputedAt: timestampzToTime(computedAt),
		Text:       text,
	}

	if feePercent.Valid && feePercent.Int != nil {
		v := numericToFloat(feePercent)
		entry.FeePercent = &v
	}

	return entry, nil
}

func (s *Storage) SaveFeeEntry(ctx context.Context, entry *types.FeeEntry) error {
	feePercent := pgtype.Numeric{} // NULL, not computable

	if entry.FeePercent != nil {
		feePercent = floatToNumeric(*entry.FeePercent)
	}

	_, err := s.db.Exec(
		ctx,
		saveFeeEntryQuery,
		floatToNumeric(entry.Params.Rate),
		floatToNumeric(entry.Params.Amount),
		floatToNumeric(entry.Params.Discount),
		int32(entry.Params.RankIndex), //nolint:gosec // small index
		feePercent,
		entry.Text,
		timeToTimestampz(entry.ComputedAt),
	)
	if err != nil {
		return fmt.Errorf("unable to save fee entry: %w", err)
	}

	return nil
}

// floatToNumeric converts the float value to postgres numeric, keeping
// the shortest decimal that reads back as the same float
func floatToNumeric(value float64) pgtype.Numeric {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return pgtype.Numeric{} // NULL
	}

	d := decimal.NewFromFloat(value)

	return pgtype.Numeric{
		Int:   d.Coefficient(),
		Exp:   d.Exponent(),
		Valid: true,
	}
}

// numericToFloat converts the postgres value to float
func numericToFloat(value pgtype.Numeric) float64 {
	if !value.Valid || value.Int == nil {
		return 0
	}

	return decimal.NewFromBigInt(value.Int, value.Exp).InexactFloat64()
}

// timeToTimestampz converts the time value to postgres timestamp
func timeToTimestampz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  t.UTC(),
		Valid: true,
	}
}

// timestampzToTime converts the postgres timestamp value to time
func timestampzToTime(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}

	return ts.Time.UTC()
}
