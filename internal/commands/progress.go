package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/hay-kot/rnclean/internal/cleaning"
	"github.com/hay-kot/rnclean/internal/core/history"
	"github.com/hay-kot/rnclean/internal/core/styles"
	"github.com/hay-kot/rnclean/internal/core/task"
	"github.com/hay-kot/rnclean/internal/printer"
	"github.com/hay-kot/rnclean/internal/rnclean"
	"github.com/hay-kot/rnclean/internal/tui"
)

// Interactive reports whether live progress and prompts can be shown.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// interactive is swapped out in tests.
var interactive = Interactive

func tuiTasks(views []cleaning.TaskView) []tui.Task {
	out := make([]tui.Task, len(views))
	for i, v := range views {
		out[i] = tui.Task{ID: v.ID, Name: v.Name}
	}
	return out
}

// runScan scans the catalog, drawing live progress when live is set.
func runScan(ctx context.Context, app *rnclean.App, live bool) (cleaning.ScanReport, error) {
	if !live {
		return app.Cleaning.Scan(ctx)
	}

	var report cleaning.ScanReport
	err := tui.Run(ctx, app.Bus, os.Stderr, tui.Options{
		Title: "Scanning",
		Tasks: tuiTasks(app.Cleaning.Snapshot().Tasks),
		Pace:  app.Config.Cleaning.Pace,
	}, func(ctx context.Context) error {
		var err error
		report, err = app.Cleaning.Scan(ctx)
		return err
	})
	return report, err
}

// runClean cleans the eligible tasks, drawing live progress when live is set.
func runClean(ctx context.Context, app *rnclean.App, opts cleaning.CleanOptions, live bool) (cleaning.CleanReport, error) {
	if !live {
		return app.Cleaning.Clean(ctx, opts)
	}

	var report cleaning.CleanReport
	err := tui.Run(ctx, app.Bus, os.Stderr, tui.Options{
		Title: "Cleaning",
		Tasks: tuiTasks(app.Cleaning.Snapshot().Tasks),
		Pace:  app.Config.Cleaning.Pace,
	}, func(ctx context.Context) error {
		var err error
		report, err = app.Cleaning.Clean(ctx, opts)
		return err
	})
	return report, err
}

// confirm asks a yes/no question. An aborted prompt counts as no.
func confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// writeTaskTable prints one line per task with its status and size.
func writeTaskTable(w io.Writer, views []cleaning.TaskView) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSIZE")
	for _, v := range views {
		size := "-"
		if v.State.Size > 0 {
			size = humanize.IBytes(v.State.Size)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, v.Name, v.State.Status, size)
	}
	_ = tw.Flush()
}

// printScanSummary reports the totals and probe failures of a scan.
func printScanSummary(p *printer.Printer, report cleaning.ScanReport) {
	for _, d := range report.Diagnostics {
		p.Warnf("%s: %s", d.TaskName, d.Error)
	}
	if report.Canceled {
		p.Warnf("Scan canceled after %d task(s)", report.Found+report.Completed+report.Failed)
	}
	p.Infof("Found %s reclaimable across %d task(s)",
		styles.TextPrimaryBoldStyle.Render(humanize.IBytes(report.TotalFound)), report.Found)
}

// printCleanSummary reports the totals and errors of a clean.
func printCleanSummary(p *printer.Printer, report cleaning.CleanReport) {
	for _, e := range report.Errors {
		p.Warnf("%s", e)
	}
	if report.PersistErr != nil {
		p.Errorf("Failed to save history: %v", report.PersistErr)
	}

	msg := fmt.Sprintf("Cleaned %s across %d file(s) (%s session)",
		humanize.IBytes(report.SpaceCleaned), report.FilesDeleted, report.Type)
	switch {
	case report.Status == history.StatusSuccess:
		p.Successf("%s", msg)
	case report.Cleaned == 0:
		p.Errorf("%s", msg)
	default:
		p.Warnf("%s with %d error(s)", msg, len(report.Errors))
	}
}

// eligibleSummary describes what a clean would remove.
func eligibleSummary(snap cleaning.Snapshot, only []string) (int, uint64) {
	want := make(map[string]bool, len(only))
	for _, id := range only {
		want[id] = true
	}

	var (
		n    int
		size uint64
	)
	for _, v := range snap.Tasks {
		if len(want) > 0 && !want[v.ID] {
			continue
		}
		if v.State.Status == task.StatusFound && v.State.HasItems() {
			n++
			size += v.State.Size
		}
	}
	return n, size
}
