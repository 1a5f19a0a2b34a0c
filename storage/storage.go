package storage

import (
	"context"

	"github.com/TarasTrach/NexusBot/storage/types"
)

// Storage is an abstraction over the bot's persisted state
type Storage interface {
	// Setting fetches the raw value of the named setting.
	// Unset settings yield an empty value, not an error
	Setting(context.Context, string) (string, error)

	// SaveSetting saves (overwrites) the named setting
	SaveSetting(context.Context, string, string) error

	// FeeEntry fetches the most recent fee computation, if any
	FeeEntry(context.Context) (*types.FeeEntry, error)

	// SaveFeeEntry replaces the most recent fee computation
	SaveFeeEntry(context.Context, *types.FeeEntry) error
}
