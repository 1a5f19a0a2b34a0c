package mock

import (
	"context"

	"github.com/TarasTrach/NexusBot/storage/types"
)

type (
	SettingDelegate      func(context.Context, string) (string, error)
	SaveSettingDelegate  func(context.Context, string, string) error
	FeeEntryDelegate     func(context.Context) (*types.FeeEntry, error)
	SaveFeeEntryDelegate func(context.Context, *types.FeeEntry) error
)

type Storage struct {
	SettingFn      SettingDelegate
	SaveSettingFn  SaveSettingDelegate
	FeeEntryFn     FeeEntryDelegate
	SaveFeeEntryFn SaveFeeEntryDelegate
}

func (m *Storage) Setting(ctx context.Context, key string) (string, error) {
	if m.SettingFn != nil {
		return m.SettingFn(ctx, key)
	}

	return "", nil
}

func (m *Storage) SaveSetting(ctx context.Context, key, value string) error {
	if m.SaveSettingFn != nil {
		return m.SaveSettingFn(ctx, key, value)
	}

	return nil
}

func (m *Storage) FeeEntry(ctx context.Context) (*types.FeeEntry, error) {
	if m.FeeEntryFn != nil {
		return m.FeeEntryFn(ctx)
	}

	return nil, nil
}

func (m *Storage) SaveFeeEntry(ctx context.Context, entry *types.FeeEntry) error {
	if m.SaveFeeEntryFn != nil {
		return m.SaveFeeEntryFn(ctx, entry)
	}

	return nil
}
