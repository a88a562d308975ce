package rnclean

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/hay-kot/rnclean/internal/core/settings"
)

// Preferences are the stored user settings decoded into typed values.
// Only DarkMode, Notifications, DeepScan and CustomFolders affect the CLI.
type Preferences struct {
	AutoClean     bool
	Notifications bool
	SystemTray    bool
	DeepScan      bool
	DarkMode      bool
	SoundEffects  bool
	CustomFolders []string
}

// LoadPreferences reads every known setting from s, falling back to
// defaults for keys never written. A malformed value is reported and its
// default is used, so the returned Preferences are always usable.
func LoadPreferences(ctx context.Context, s settings.Store) (Preferences, error) {
	values, err := settings.Effective(ctx, s)
	if err != nil {
		return Preferences{}, fmt.Errorf("load settings: %w", err)
	}

	var (
		prefs Preferences
		errs  []error
	)

	flag := func(key string, dst *bool) {
		v, err := strconv.ParseBool(values[key])
		if err != nil {
			errs = append(errs, fmt.Errorf("setting %q: %w", key, err))
			v, _ = strconv.ParseBool(settings.Defaults[key])
		}
		*dst = v
	}

	flag(settings.KeyAutoClean, &prefs.AutoClean)
	flag(settings.KeyNotifications, &prefs.Notifications)
	flag(settings.KeySystemTray, &prefs.SystemTray)
	flag(settings.KeyDeepScan, &prefs.DeepScan)
	flag(settings.KeyDarkMode, &prefs.DarkMode)
	flag(settings.KeySoundEffects, &prefs.SoundEffects)

	folders, err := settings.ParseFolders(values[settings.KeyCustomFolders])
	if err != nil {
		errs = append(errs, fmt.Errorf("setting %q: %w", settings.KeyCustomFolders, err))
	}
	prefs.CustomFolders = folders

	return prefs, errors.Join(errs...)
}
