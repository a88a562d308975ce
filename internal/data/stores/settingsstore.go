package stores

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/hay-kot/rnclean/internal/core/settings"
	"github.com/hay-kot/rnclean/internal/data/db"
)

// SettingsStore implements settings.Store using SQLite.
type SettingsStore struct {
	db *db.DB
}

var (
	_ settings.Store       = (*SettingsStore)(nil)
	_ settings.BatchSetter = (*SettingsStore)(nil)
)

// NewSettingsStore creates a new SQLite-backed settings store.
func NewSettingsStore(db *db.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the stored value for key. The bool is false when the key has
// never been set.
func (s *SettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	row, err := s.db.Queries().GetSetting(ctx, key)
	if IsNotFoundError(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("settings get %q: %w", key, err)
	}
	return row.Value, true, nil
}

// Set creates or replaces the value for key.
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	err := s.db.Queries().UpsertSetting(ctx, db.UpsertSettingParams{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("settings set %q: %w", key, err)
	}
	return nil
}

// SetAll writes every value in one transaction. Either all keys change or
// none do.
func (s *SettingsStore) SetAll(ctx context.Context, values map[string]string) error {
	now := time.Now().UnixNano()
	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		for _, key := range slices.Sorted(maps.Keys(values)) {
			err := q.UpsertSetting(ctx, db.UpsertSettingParams{
				Key:       key,
				Value:     values[key],
				UpdatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("%q: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("settings set all: %w", err)
	}
	return nil
}

// All returns every stored key and value.
func (s *SettingsStore) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.Queries().ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings list: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	if err := s.db.Queries().DeleteSetting(ctx, key); err != nil {
		return fmt.Errorf("settings delete %q: %w", key, err)
	}
	return nil
}
