package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/rnclean/internal/rnclean"
	"github.com/hay-kot/rnclean/pkg/iojson"
)

type TasksCmd struct {
	flags *Flags
	app   *rnclean.App

	// flags
	jsonOutput bool
}

// NewTasksCmd creates a new tasks command
func NewTasksCmd(flags *Flags, app *rnclean.App) *TasksCmd {
	return &TasksCmd{flags: flags, app: app}
}

// Register adds the tasks command to the application
func (cmd *TasksCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "tasks",
		Usage:     "List the cleaning tasks in the catalog",
		UsageText: "rnclean tasks [--json]",
		Description: `Lists every task in scan order with its category and description.

Docker tasks only appear when docker is enabled, node_modules only when
project roots are configured and deep_scan is on.`,
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

type taskInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (cmd *TasksCmd) run(_ context.Context, c *cli.Command) error {
	defs := cmd.app.Catalog.Definitions()
	out := c.Root().Writer

	if cmd.jsonOutput {
		infos := make([]taskInfo, len(defs))
		for i, d := range defs {
			infos[i] = taskInfo{ID: d.ID, Name: d.Name, Category: string(d.Category), Description: d.Description}
		}
		return iojson.WriteWith(out, os.Stderr, infos)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCATEGORY\tDESCRIPTION")
	for _, d := range defs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Category, d.Description)
	}
	return w.Flush()
}
