package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/rnclean/internal/cleaning"
	"github.com/hay-kot/rnclean/internal/printer"
	"github.com/hay-kot/rnclean/internal/rnclean"
	"github.com/hay-kot/rnclean/pkg/iojson"
)

type CleanCmd struct {
	flags *Flags
	app   *rnclean.App

	// flags
	yes        bool
	only       []string
	jsonOutput bool
}

// NewCleanCmd creates a new clean command
func NewCleanCmd(flags *Flags, app *rnclean.App) *CleanCmd {
	return &CleanCmd{flags: flags, app: app}
}

// Register adds the clean command to the application
func (cmd *CleanCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "clean",
		Usage:     "Scan, then delete everything that was found",
		UsageText: "rnclean clean [--yes] [--only id]... [--json]",
		Description: `Scans the catalog and deletes the items of every task that found something.
One history record is written per clean.

Use --only to restrict the clean to specific task ids; such sessions are
recorded as custom. Without --yes the clean asks for confirmation on a
terminal and refuses to run otherwise, including with --json.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.yes,
			},
			&cli.StringSliceFlag{
				Name:        "only",
				Usage:       "clean only this task id (repeatable)",
				Destination: &cmd.only,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the scan and clean reports as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		ShellComplete: TaskIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *CleanCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	live := !cmd.jsonOutput && interactive()

	for _, id := range cmd.only {
		if cmd.app.Catalog.Index(id) < 0 {
			return cleaning.UnknownTaskError{ID: id}
		}
	}

	scan, err := runScan(ctx, cmd.app, live)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if scan.Canceled {
		p.Warnf("Scan canceled, nothing was deleted")
		return nil
	}

	n, size := eligibleSummary(cmd.app.Cleaning.Snapshot(), cmd.only)
	if n > 0 && !cmd.yes {
		if cmd.jsonOutput || !interactive() {
			return errors.New("refusing to delete without confirmation; pass --yes")
		}
		ok, err := confirm(
			fmt.Sprintf("Delete %s from %d task(s)?", humanize.IBytes(size), n),
			"Deleted files cannot be restored.",
		)
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if !ok {
			p.Infof("Clean cancelled")
			return nil
		}
	}

	report, err := runClean(ctx, cmd.app, cleaning.CleanOptions{Only: cmd.only}, live)
	if errors.Is(err, cleaning.ErrNothingToClean) {
		if cmd.jsonOutput {
			return iojson.WriteWith(c.Root().Writer, os.Stderr, struct {
				Scan  cleaning.ScanReport   `json:"scan"`
				Clean *cleaning.CleanReport `json:"clean"`
			}{Scan: scan})
		}
		p.Infof("Nothing to clean")
		return nil
	}
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	if cmd.jsonOutput {
		out := struct {
			Scan       cleaning.ScanReport   `json:"scan"`
			Clean      *cleaning.CleanReport `json:"clean"`
			PersistErr string                `json:"persist_error,omitempty"`
		}{
			Scan:  scan,
			Clean: &report,
		}
		if report.PersistErr != nil {
			out.PersistErr = report.PersistErr.Error()
		}
		return iojson.WriteWith(c.Root().Writer, os.Stderr, out)
	}

	printCleanSummary(p, report)
	if report.PersistErr != nil {
		return cli.Exit("", 1)
	}
	return nil
}
