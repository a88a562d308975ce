package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/rnclean/internal/rnclean"
)

// TaskIDCompleter returns a ShellCompleteFunc that suggests catalog task ids.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskIDCompleter(app *rnclean.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if app.Catalog == nil {
			return
		}

		w := cmd.Root().Writer
		for _, def := range app.Catalog.Definitions() {
			_, _ = fmt.Fprintln(w, def.ID)
		}
	}
}
