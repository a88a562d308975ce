package cleaning

import (
	"context"
	"time"

	"github.com/hay-kot/rnclean/internal/core/eventbus"
	"github.com/hay-kot/rnclean/internal/core/logging"
	"github.com/hay-kot/rnclean/internal/core/task"
)

// Diagnostic records one probe failure.
type Diagnostic struct {
	TaskID   string `json:"task_id"`
	TaskName string `json:"task_name"`
	Error    string `json:"error"`
}

// ScanReport summarizes one scan.
type ScanReport struct {
	RunID       string        `json:"run_id"`
	TotalFound  uint64        `json:"total_found"`
	Found       int           `json:"found"`
	Completed   int           `json:"completed"`
	Failed      int           `json:"failed"`
	Pending     int           `json:"pending"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
	Duration    time.Duration `json:"duration"`
	Canceled    bool          `json:"canceled"`
}

// Scan resets every task to pending and runs each probe in catalog order. A
// failing probe puts its task in error and the scan moves on. When ctx is
// cancelled the scan stops after the current task settles and the remaining
// tasks stay pending.
func (o *Orchestrator) Scan(ctx context.Context) (ScanReport, error) {
	o.mu.Lock()
	if o.scanning || o.cleaning {
		o.mu.Unlock()
		return ScanReport{}, ErrBusy
	}
	o.scanning = true
	start := o.now()
	for i := range o.states {
		o.states[i] = o.states[i].Reset(start)
	}
	o.totalFound = 0
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.scanning = false
		o.mu.Unlock()
	}()

	runID := logging.NewRunID()
	ctx = logging.WithOp(logging.WithRunID(ctx, runID), "scan")
	n := o.catalog.Len()

	o.log.Info().Ctx(ctx).Int("tasks", n).Msg("scan started")
	o.bus.PublishScanStarted(eventbus.ScanStartedPayload{RunID: runID, Tasks: n})

	report := ScanReport{RunID: runID}

	for i := range n {
		if ctx.Err() != nil {
			report.Canceled = true
			break
		}

		def := o.catalog.At(i)
		if _, ok := o.apply(ctx, runID, i, func(s task.State) (task.State, error) {
			return s.BeginScan(o.now())
		}); !ok {
			continue
		}

		items, err := def.Probe.Scan(ctx)
		if err != nil {
			o.apply(ctx, runID, i, func(s task.State) (task.State, error) {
				return s.FailScan(err, o.now())
			})
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				TaskID:   def.ID,
				TaskName: def.Name,
				Error:    err.Error(),
			})
			o.log.Warn().Ctx(ctx).Err(err).Str("task", def.ID).Msg("probe failed")
		} else {
			next, _ := o.apply(ctx, runID, i, func(s task.State) (task.State, error) {
				return s.FinishScan(items, o.now())
			})
			o.mu.Lock()
			o.totalFound += next.Size
			o.mu.Unlock()
			o.log.Debug().Ctx(ctx).Str("task", def.ID).Int("items", len(items)).Uint64("size", next.Size).Msg("probe finished")
		}

		o.mu.Lock()
		total := o.totalFound
		o.mu.Unlock()
		o.bus.PublishTotalChanged(eventbus.TotalChangedPayload{
			RunID:      runID,
			Done:       i + 1,
			Of:         n,
			TotalFound: total,
		})
	}

	if ctx.Err() != nil {
		report.Canceled = true
	}

	o.mu.Lock()
	report.TotalFound = o.totalFound
	for _, st := range o.states {
		switch st.Status {
		case task.StatusFound:
			report.Found++
		case task.StatusCompleted:
			report.Completed++
		case task.StatusError:
			report.Failed++
		case task.StatusPending:
			report.Pending++
		}
	}
	report.Duration = o.now().Sub(start)
	saved := report
	o.lastScan = &saved
	o.mu.Unlock()

	o.log.Info().Ctx(ctx).
		Uint64("total_found", report.TotalFound).
		Int("failed", report.Failed).
		Bool("canceled", report.Canceled).
		Dur("duration", report.Duration).
		Msg("scan finished")

	o.bus.PublishScanFinished(eventbus.ScanFinishedPayload{
		RunID:      runID,
		TotalFound: report.TotalFound,
		Failed:     report.Failed,
		Duration:   report.Duration,
		Canceled:   report.Canceled,
	})

	return report, nil
}
