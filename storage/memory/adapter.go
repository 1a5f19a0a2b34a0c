package memory

import (
	"context"
	"sync"

	"github.com/TarasTrach/NexusBot/storage/types"
)

type Storage struct {
	settings map[string]string
	feeEntry *types.FeeEntry

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		settings: make(map[string]string),
	}
}

func (s *Storage) Setting(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings[key], nil
}

func (s *Storage) SaveSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.settings[key] = value
	s.mu.Unlock()

	return nil
}

func (s *Storage) FeeEntry(_ context.Context) (*types.FeeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.feeEntry == nil {
		return nil, nil //nolint:nilnil // valid case
	}

	return copyEntry(s.feeEntry), nil
}

func (s *Storage) SaveFeeEntry(_ context.Context, entry *types.FeeEntry) error {
	elem := copyEntry(entry)
	elem.ComputedAt = elem.ComputedAt.UTC()

	s.mu.Lock()
	s.feeEntry = elem // single slot, last write wins
	s.mu.Unlock()

	return nil
}

// copyEntry deep-copies the entry, so callers can't alias the stored slot
func copyEntry(entry *types.FeeEntry) *types.FeeEntry {
	cp := *entry

	if entry.FeePercent != nil {
		v := *entry.FeePercent
		cp.FeePercent = &v
	}

	return &cp
}
