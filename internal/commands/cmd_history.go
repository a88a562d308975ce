package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/rnclean/internal/core/history"
	"github.com/hay-kot/rnclean/internal/printer"
	"github.com/hay-kot/rnclean/internal/rnclean"
	"github.com/hay-kot/rnclean/pkg/iojson"
)

type HistoryCmd struct {
	flags *Flags
	app   *rnclean.App

	// flags
	limit      int
	typ        string
	jsonOutput bool
	yes        bool
	out        string
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags, app *rnclean.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "history",
		Usage: "Inspect and manage past cleaning sessions",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List past sessions, newest first",
				UsageText: "rnclean history ls [--limit n] [--type quick|deep|custom] [--json]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "limit",
						Aliases:     []string{"n"},
						Usage:       "maximum number of sessions (defaults to history.page_size)",
						Destination: &cmd.limit,
					},
					&cli.StringFlag{
						Name:        "type",
						Aliases:     []string{"t"},
						Usage:       "only sessions of this type: quick, deep or custom",
						Destination: &cmd.typ,
					},
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "show",
				Usage:     "Show one session, including its errors",
				UsageText: "rnclean history show <id> [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runShow,
			},
			{
				Name:      "rm",
				Usage:     "Delete one session record",
				UsageText: "rnclean history rm <id>",
				Action:    cmd.runRemove,
			},
			{
				Name:      "clear",
				Usage:     "Delete every session record",
				UsageText: "rnclean history clear [--yes]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "skip the confirmation prompt",
						Destination: &cmd.yes,
					},
				},
				Action: cmd.runClear,
			},
			{
				Name:        "export",
				Usage:       "Export session records as JSON",
				UsageText:   "rnclean history export [--out file]",
				Description: "Writes up to history.export_limit records, newest first. Without --out the JSON goes to stdout.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "out",
						Aliases:     []string{"o"},
						Usage:       "file to write",
						Destination: &cmd.out,
					},
				},
				Action: cmd.runExport,
			},
		},
	})

	return app
}

func (cmd *HistoryCmd) runList(ctx context.Context, c *cli.Command) error {
	limit := cmd.limit
	if limit <= 0 {
		limit = cmd.app.Config.History.PageSize
	}

	var (
		records []history.Record
		err     error
	)
	if cmd.typ == "" {
		records, err = cmd.app.Cleaning.History(ctx, limit)
	} else {
		typ, perr := history.ParseType(cmd.typ)
		if perr != nil {
			return perr
		}
		records, err = cmd.app.Cleaning.HistoryByType(ctx, typ, limit)
	}
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		if records == nil {
			records = []history.Record{}
		}
		return iojson.WriteWith(out, os.Stderr, records)
	}

	if len(records) == 0 {
		if cmd.typ != "" {
			printer.Ctx(ctx).Infof("No %s cleaning sessions found", cmd.typ)
			return nil
		}
		printer.Ctx(ctx).Infof("No cleaning sessions yet")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATE\tTIME\tTYPE\tSTATUS\tCLEANED\tFILES\tDURATION")
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Date, r.Time, r.Type, r.Status,
			humanize.IBytes(r.SpaceCleaned), r.FilesDeleted,
			(time.Duration(r.Duration) * time.Millisecond).String(),
		)
	}
	return w.Flush()
}

func parseRecordID(c *cli.Command) (int64, error) {
	if c.Args().Len() != 1 {
		return 0, errors.New("expected exactly one record id")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record id %q", c.Args().First())
	}
	return id, nil
}

func (cmd *HistoryCmd) runShow(ctx context.Context, c *cli.Command) error {
	id, err := parseRecordID(c)
	if err != nil {
		return err
	}

	r, err := cmd.app.Cleaning.Record(ctx, id)
	if errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("no session with id %d", id)
	}
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, os.Stderr, r)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Session:\t%d\n", r.ID)
	_, _ = fmt.Fprintf(w, "Date:\t%s %s\n", r.Date, r.Time)
	_, _ = fmt.Fprintf(w, "Type:\t%s\n", r.Type)
	_, _ = fmt.Fprintf(w, "Status:\t%s\n", r.Status)
	_, _ = fmt.Fprintf(w, "Cleaned:\t%s\n", humanize.IBytes(r.SpaceCleaned))
	_, _ = fmt.Fprintf(w, "Files:\t%d\n", r.FilesDeleted)
	_, _ = fmt.Fprintf(w, "Duration:\t%s\n", time.Duration(r.Duration)*time.Millisecond)
	if err := w.Flush(); err != nil {
		return err
	}

	errs := r.ErrorList()
	if len(errs) == 0 {
		return nil
	}
	_, _ = fmt.Fprintf(out, "\nErrors (%d):\n", len(errs))
	for _, e := range errs {
		_, _ = fmt.Fprintf(out, "  - %s\n", e)
	}
	return nil
}

func (cmd *HistoryCmd) runRemove(ctx context.Context, c *cli.Command) error {
	id, err := parseRecordID(c)
	if err != nil {
		return err
	}

	if err := cmd.app.Cleaning.DeleteRecord(ctx, id); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("no session with id %d", id)
		}
		return fmt.Errorf("delete record: %w", err)
	}

	printer.Ctx(ctx).Successf("Deleted session %d", id)
	return nil
}

func (cmd *HistoryCmd) runClear(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if !cmd.yes {
		if !interactive() {
			return errors.New("refusing to clear history without a terminal to confirm; pass --yes")
		}
		ok, err := confirm("Delete every cleaning session?", "Totals in 'rnclean stats' will reset to zero.")
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if !ok {
			p.Infof("Clear cancelled")
			return nil
		}
	}

	if err := cmd.app.Cleaning.ClearHistory(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	p.Successf("History cleared")
	return nil
}

func (cmd *HistoryCmd) runExport(ctx context.Context, c *cli.Command) error {
	records, err := cmd.app.Cleaning.Export(ctx)
	if err != nil {
		return fmt.Errorf("export history: %w", err)
	}

	if cmd.out == "" {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, records)
	}

	if err := iojson.WriteFile(cmd.out, records); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	printer.Ctx(ctx).Successf("Exported %d session(s) to %s", len(records), cmd.out)
	return nil
}
