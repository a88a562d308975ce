package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/rnclean/internal/core/settings"
	"github.com/hay-kot/rnclean/internal/printer"
	"github.com/hay-kot/rnclean/internal/rnclean"
	"github.com/hay-kot/rnclean/pkg/iojson"
)

type SettingsCmd struct {
	flags *Flags
	app   *rnclean.App

	// flags
	jsonOutput bool
}

// NewSettingsCmd creates a new settings command
func NewSettingsCmd(flags *Flags, app *rnclean.App) *SettingsCmd {
	return &SettingsCmd{flags: flags, app: app}
}

// Register adds the settings command to the application
func (cmd *SettingsCmd) Register(app *cli.Command) *cli.Command {
	keys := func(ctx context.Context, c *cli.Command) {
		for _, k := range settings.Keys() {
			_, _ = fmt.Fprintln(c.Root().Writer, k)
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "settings",
		Usage: "Read and change stored preferences",
		Description: `Preferences live in the history database next to the session records.

Known keys: auto_clean, custom_folders, dark_mode, deep_scan, notifications,
sound_effects, system_tray. custom_folders takes a JSON array of paths.`,
		Commands: []*cli.Command{
			{
				Name:          "get",
				Usage:         "Print one setting",
				UsageText:     "rnclean settings get <key>",
				ShellComplete: keys,
				Action:        cmd.runGet,
			},
			{
				Name:          "set",
				Usage:         "Change one setting",
				UsageText:     "rnclean settings set <key> <value>",
				ShellComplete: keys,
				Action:        cmd.runSet,
			},
			{
				Name:      "ls",
				Usage:     "List every setting with its effective value",
				UsageText: "rnclean settings ls [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "reset",
				Usage:     "Restore every setting to its default",
				UsageText: "rnclean settings reset",
				Action:    cmd.runReset,
			},
		},
	})

	return app
}

func knownKey(key string) error {
	if !settings.IsKnown(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func (cmd *SettingsCmd) runGet(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return errors.New("expected exactly one key")
	}
	key := c.Args().First()
	if err := knownKey(key); err != nil {
		return err
	}

	v, err := settings.Lookup(ctx, cmd.app.Settings, key)
	if err != nil {
		return fmt.Errorf("read setting: %w", err)
	}

	_, err = fmt.Fprintln(c.Root().Writer, v)
	return err
}

func (cmd *SettingsCmd) runSet(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return errors.New("expected a key and a value")
	}
	key, value := c.Args().Get(0), c.Args().Get(1)
	if err := knownKey(key); err != nil {
		return err
	}
	if err := settings.Validate(key, value); err != nil {
		return err
	}

	if err := cmd.app.Settings.Set(ctx, key, value); err != nil {
		return fmt.Errorf("write setting: %w", err)
	}

	printer.Ctx(ctx).Successf("%s = %s", key, value)
	return nil
}

func (cmd *SettingsCmd) runList(ctx context.Context, c *cli.Command) error {
	values, err := settings.Effective(ctx, cmd.app.Settings)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, os.Stderr, values)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tVALUE\tDEFAULT")
	for _, k := range settings.Keys() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", k, values[k], settings.Defaults[k])
	}
	return w.Flush()
}

func (cmd *SettingsCmd) runReset(ctx context.Context, _ *cli.Command) error {
	if err := settings.Reset(ctx, cmd.app.Settings); err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	printer.Ctx(ctx).Successf("Settings restored to defaults")
	return nil
}
