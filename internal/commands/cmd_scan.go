package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/rnclean/internal/cleaning"
	"github.com/hay-kot/rnclean/internal/printer"
	"github.com/hay-kot/rnclean/internal/rnclean"
	"github.com/hay-kot/rnclean/pkg/iojson"
)

type ScanCmd struct {
	flags *Flags
	app   *rnclean.App

	// flags
	jsonOutput bool
}

// NewScanCmd creates a new scan command
func NewScanCmd(flags *Flags, app *rnclean.App) *ScanCmd {
	return &ScanCmd{flags: flags, app: app}
}

// Register adds the scan command to the application
func (cmd *ScanCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "scan",
		Usage:     "Measure reclaimable space without deleting anything",
		UsageText: "rnclean scan [--json]",
		Description: `Runs every task in the catalog one at a time and reports how much space
each one could reclaim. A failing task is reported and the scan moves on.

Nothing is deleted. Run 'rnclean clean' to remove what was found.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the scan report and task table as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ScanCmd) run(ctx context.Context, c *cli.Command) error {
	report, err := runScan(ctx, cmd.app, !cmd.jsonOutput && interactive())
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	snap := cmd.app.Cleaning.Snapshot()

	if cmd.jsonOutput {
		out := struct {
			Report cleaning.ScanReport  `json:"report"`
			Tasks  []cleaning.TaskView `json:"tasks"`
		}{
			Report: report,
			Tasks:  snap.Tasks,
		}
		return iojson.WriteWith(c.Root().Writer, os.Stderr, out)
	}

	writeTaskTable(c.Root().Writer, snap.Tasks)
	printScanSummary(printer.Ctx(ctx), report)
	return nil
}
