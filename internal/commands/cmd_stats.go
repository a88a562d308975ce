package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/rnclean/internal/core/styles"
	"github.com/hay-kot/rnclean/internal/rnclean"
	"github.com/hay-kot/rnclean/pkg/iojson"
)

type StatsCmd struct {
	flags *Flags
	app   *rnclean.App

	// flags
	jsonOutput bool
}

// NewStatsCmd creates a new stats command
func NewStatsCmd(flags *Flags, app *rnclean.App) *StatsCmd {
	return &StatsCmd{flags: flags, app: app}
}

// Register adds the stats command to the application
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "stats",
		Usage:       "Show totals across every cleaning session",
		UsageText:   "rnclean stats [--json]",
		Description: "Totals are recomputed from the stored session records on every call.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	stats, err := cmd.app.Cleaning.Stats(ctx)
	if err != nil {
		return fmt.Errorf("compute stats: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, os.Stderr, stats)
	}

	avg := time.Duration(stats.AvgDuration * float64(time.Millisecond)).Round(time.Millisecond)

	label := func(s string) string { return styles.TextMutedStyle.Render(fmt.Sprintf("%-16s", s)) }
	_, _ = fmt.Fprintln(out, styles.CommandHeaderStyle.Render("Cleaning Stats"))
	_, _ = fmt.Fprintln(out, label("Space cleaned")+styles.TextPrimaryBoldStyle.Render(humanize.IBytes(stats.TotalSpaceCleaned)))
	_, _ = fmt.Fprintln(out, label("Files deleted")+humanize.Comma(int64(stats.TotalFilesDeleted)))
	_, _ = fmt.Fprintln(out, label("Sessions")+humanize.Comma(stats.TotalSessions))
	_, _ = fmt.Fprintln(out, label("Average time")+avg.String())
	return nil
}
