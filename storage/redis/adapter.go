package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/TarasTrach/NexusBot/storage/types"
)

const (
	defaultPrefix = "nexusbot:"

	settingsKey = "settings"
	feeEntryKey = "fee_entry"
)

// Client is the subset of the go-redis client the storage relies on
type Client interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Storage keeps the settings in a single hash,
// and the fee slot as a JSON-encoded string
type Storage struct {
	client Client
	prefix string
}

func NewStorage(client Client) *Storage {
	return &Storage{
		client: client,
		prefix: defaultPrefix,
	}
}

func (s *Storage) Setting(ctx context.Context, key string) (string, error) {
	value, err := s.client.HGet(ctx, s.prefix+settingsKey, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // valid case, unset
		}

		return "", fmt.Errorf("unable to fetch setting %q: %w", key, err)
	}

	return value, nil
}

func (s *Storage) SaveSetting(ctx context.Context, key, value string) error {
	if err := s.client.HSet(ctx, s.prefix+settingsKey, key, value).Err(); err != nil {
		return fmt.Errorf("unable to save setting %q: %w", key, err)
	}

	return nil
}

func (s *Storage) FeeEntry(ctx context.Context) (*types.FeeEntry, error) {
	data, err := s.client.Get(ctx, s.prefix+feeEntryKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, fmt.Errorf("unable to fetch fee entry: %w", err)
	}

	var entry types.FeeEntry

	if err = json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("unable to decode fee entry: %w", err)
	}

	return &entry, nil
}

func (s *Storage) SaveFeeEntry(ctx context.Context, entry *types.FeeEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("unable to encode fee entry: %w", err)
	}

	// No expiration, the cache owns the TTL check
	if err = s.client.Set(ctx, s.prefix+feeEntryKey, data, 0).Err(); err != nil {
		return fmt.Errorf("unable to save fee entry: %w", err)
	}

	return nil
}
