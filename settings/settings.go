// Package settings reads and writes the typed numeric bot settings
package settings

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/TarasTrach/NexusBot/storage"
	"github.com/TarasTrach/NexusBot/storage/types"
)

const (
	KeyReferenceRate   = "reference_rate"
	KeyDefaultAmount   = "default_amount"
	KeyDefaultDiscount = "default_discount"
	KeyRankIndex       = "rank_index"
)

const (
	DefaultReferenceRate = 0.0 // unset, the rate has to be asked for
	DefaultAmount        = 300.0
	DefaultDiscount      = 5.0
	DefaultRankIndex     = 1 // the second best order
)

// Settings is the typed view over the key-value storage.
// Unset or unparsable values read as their defaults
type Settings struct {
	storage storage.Storage
}

// New creates a new settings view over the storage
func New(storage storage.Storage) *Settings {
	return &Settings{
		storage: storage,
	}
}

// ReferenceRate returns the stored reference rate, or 0 if none is stored
func (s *Settings) ReferenceRate(ctx context.Context) (float64, error) {
	return s.float(ctx, KeyReferenceRate, DefaultReferenceRate)
}

// SetReferenceRate stores the reference rate
func (s *Settings) SetReferenceRate(ctx context.Context, rate float64) error {
	return s.setFloat(ctx, KeyReferenceRate, rate)
}

// DefaultAmount returns the default USD amount
func (s *Settings) DefaultAmount(ctx context.Context) (float64, error) {
	return s.float(ctx, KeyDefaultAmount, DefaultAmount)
}

// SetDefaultAmount stores the default USD amount
func (s *Settings) SetDefaultAmount(ctx context.Context, amount float64) error {
	return s.setFloat(ctx, KeyDefaultAmount, amount)
}

// DefaultDiscount returns the default discount percent
func (s *Settings) DefaultDiscount(ctx context.Context) (float64, error) {
	return s.float(ctx, KeyDefaultDiscount, DefaultDiscount)
}

// SetDefaultDiscount stores the default discount percent
func (s *Settings) SetDefaultDiscount(ctx context.Context, discount float64) error {
	return s.setFloat(ctx, KeyDefaultDiscount, discount)
}

// RankIndex returns the rank index of the order used for fee quotes
func (s *Settings) RankIndex(ctx context.Context) (int, error) {
	raw, err := s.storage.Setting(ctx, KeyRankIndex)
	if err != nil {
		return DefaultRankIndex, fmt.Errorf("unable to read %s: %w", KeyRankIndex, err)
	}

	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return DefaultRankIndex, nil
	}

	return v, nil
}

// SetRankIndex stores the rank index of the order used for fee quotes
func (s *Settings) SetRankIndex(ctx context.Context, index int) error {
	if err := s.storage.SaveSetting(ctx, KeyRankIndex, strconv.Itoa(index)); err != nil {
		return fmt.Errorf("unable to save %s: %w", KeyRankIndex, err)
	}

	return nil
}

// FeeParams returns the stored fee quote params
func (s *Settings) FeeParams(ctx context.Context) (types.FeeParams, error) {
	rate, err := s.ReferenceRate(ctx)
	if err != nil {
		return types.FeeParams{}, err
	}

	amount, err := s.DefaultAmount(ctx)
	if err != nil {
		return types.FeeParams{}, err
	}

	discount, err := s.DefaultDiscount(ctx)
	if err != nil {
		return types.FeeParams{}, err
	}

	rankIndex, err := s.RankIndex(ctx)
	if err != nil {
		return types.FeeParams{}, err
	}

	return types.FeeParams{
		Rate:      rate,
		Amount:    amount,
		Discount:  discount,
		RankIndex: rankIndex,
	}, nil
}

func (s *Settings) float(ctx context.Context, key string, def float64) (float64, error) {
	raw, err := s.storage.Setting(ctx, key)
	if err != nil {
		return def, fmt.Errorf("unable to read %s: %w", key, err)
	}

	v, ok := ParseNumber(raw)
	if !ok {
		return def, nil
	}

	return v, nil
}

func (s *Settings) setFloat(ctx context.Context, key string, v float64) error {
	if err := s.storage.SaveSetting(ctx, key, strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		return fmt.Errorf("unable to save %s: %w", key, err)
	}

	return nil
}

// ParseNumber parses a positive, finite decimal number.
// Both "." and "," are accepted as the decimal separator
func ParseNumber(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}

	return v, true
}
