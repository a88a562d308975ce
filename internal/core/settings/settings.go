// Package settings defines the user preference store shared with the
// history database.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Known keys.
const (
	KeyAutoClean     = "auto_clean"
	KeyNotifications = "notifications"
	KeySystemTray    = "system_tray"
	KeyDeepScan      = "deep_scan"
	KeyDarkMode      = "dark_mode"
	KeySoundEffects  = "sound_effects"
	KeyCustomFolders = "custom_folders"
)

// Defaults holds the value every known key takes on a fresh install.
var Defaults = map[string]string{
	KeyAutoClean:     "true",
	KeyNotifications: "true",
	KeySystemTray:    "true",
	KeyDeepScan:      "false",
	KeyDarkMode:      "true",
	KeySoundEffects:  "true",
	KeyCustomFolders: "[]",
}

// Store is a string key/value store. Get reports whether the key was present.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
	Delete(ctx context.Context, key string) error
}

// BatchSetter is implemented by stores that can write several keys in one
// transaction. Reset uses it when available.
type BatchSetter interface {
	SetAll(ctx context.Context, values map[string]string) error
}

// Keys returns the known keys in sorted order.
func Keys() []string {
	return slices.Sorted(maps.Keys(Defaults))
}

// IsKnown reports whether key has a default.
func IsKnown(key string) bool {
	_, ok := Defaults[key]
	return ok
}

// Validate checks value against the shape of a known key. Unknown keys accept
// any value.
func Validate(key, value string) error {
	def, ok := Defaults[key]
	if !ok {
		return nil
	}
	if key == KeyCustomFolders {
		if _, err := ParseFolders(value); err != nil {
			return fmt.Errorf("setting %q: %w", key, err)
		}
		return nil
	}
	if _, err := strconv.ParseBool(def); err == nil {
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("setting %q expects true or false, got %q", key, value)
		}
	}
	return nil
}

// ParseFolders decodes the custom_folders value, a JSON array of paths. An
// empty value is an empty list.
func ParseFolders(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var folders []string
	if err := json.Unmarshal([]byte(raw), &folders); err != nil {
		return nil, fmt.Errorf("expected a JSON array of paths: %w", err)
	}
	return folders, nil
}

// Lookup returns the stored value for key, falling back to its default.
func Lookup(ctx context.Context, s Store, key string) (string, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if ok {
		return v, nil
	}
	return Defaults[key], nil
}

// Effective merges stored values over the defaults.
func Effective(ctx context.Context, s Store) (map[string]string, error) {
	stored, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := maps.Clone(Defaults)
	maps.Copy(out, stored)
	return out, nil
}

// Reset writes every default back to the store.
func Reset(ctx context.Context, s Store) error {
	if b, ok := s.(BatchSetter); ok {
		if err := b.SetAll(ctx, maps.Clone(Defaults)); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		return nil
	}
	for _, k := range Keys() {
		if err := s.Set(ctx, k, Defaults[k]); err != nil {
			return fmt.Errorf("reset %q: %w", k, err)
		}
	}
	return nil
}
