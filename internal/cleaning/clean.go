package cleaning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/rnclean/internal/core/eventbus"
	"github.com/hay-kot/rnclean/internal/core/history"
	"github.com/hay-kot/rnclean/internal/core/logging"
	"github.com/hay-kot/rnclean/internal/core/task"
)

// CleanOptions narrows a clean.
type CleanOptions struct {
	// Only restricts the clean to these task ids. A non-empty list marks the
	// session custom.
	Only []string
}

// CleanReport summarizes one clean. It is returned even when the history
// record could not be written; PersistErr carries that failure.
type CleanReport struct {
	RunID        string         `json:"run_id"`
	RecordID     int64          `json:"record_id,omitempty"`
	Tasks        int            `json:"tasks"`
	Cleaned      int            `json:"cleaned"`
	Failed       int            `json:"failed"`
	Recovery     bool           `json:"recovery"`
	SpaceCleaned uint64         `json:"space_cleaned"`
	FilesDeleted uint64         `json:"files_deleted"`
	Errors       []string       `json:"errors"`
	Type         history.Type   `json:"type"`
	Status       history.Status `json:"status"`
	Duration     time.Duration  `json:"duration"`
	Canceled     bool           `json:"canceled"`
	PersistErr   error          `json:"-"`
}

// UnknownTaskError is returned when CleanOptions.Only names a task that is not
// in the catalog.
type UnknownTaskError struct {
	ID string
}

func (e UnknownTaskError) Error() string {
	return fmt.Sprintf("unknown task %q", e.ID)
}

// eligibleLocked picks the tasks to clean. Strict eligibility comes first;
// when it selects nothing while a positive total is still recorded, any task
// holding items is taken instead. o.mu must be held.
func (o *Orchestrator) eligibleLocked(only map[int]bool) ([]int, bool) {
	pick := func(ok func(task.State) bool) []int {
		var out []int
		for i, st := range o.states {
			if only != nil && !only[i] {
				continue
			}
			if ok(st) {
				out = append(out, i)
			}
		}
		return out
	}

	if strict := pick(task.State.Eligible); len(strict) > 0 {
		return strict, false
	}
	if o.totalFound == 0 {
		return nil, false
	}
	loose := pick(func(s task.State) bool { return s.HasItems() && !s.Status.IsActive() })
	return loose, len(loose) > 0
}

// Clean deletes the deletable items of every eligible task in catalog order
// and writes one history record for the session. Per-item failures leave the
// task completed; a deleter that cannot run at all leaves it in error. When
// ctx is cancelled the clean stops after the current task and the record is
// still written.
func (o *Orchestrator) Clean(ctx context.Context, opts CleanOptions) (CleanReport, error) {
	var only map[int]bool
	if len(opts.Only) > 0 {
		only = make(map[int]bool, len(opts.Only))
		for _, id := range opts.Only {
			i := o.catalog.Index(id)
			if i < 0 {
				return CleanReport{}, UnknownTaskError{ID: id}
			}
			only[i] = true
		}
	}

	o.mu.Lock()
	if o.scanning || o.cleaning {
		o.mu.Unlock()
		return CleanReport{}, ErrBusy
	}
	selected, recovery := o.eligibleLocked(only)
	if len(selected) == 0 {
		o.mu.Unlock()
		return CleanReport{}, ErrNothingToClean
	}
	o.cleaning = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.cleaning = false
		o.mu.Unlock()
	}()

	runID := logging.NewRunID()
	ctx = logging.WithOp(logging.WithRunID(ctx, runID), "clean")
	start := o.now()

	if recovery {
		o.log.Warn().Ctx(ctx).Int("tasks", len(selected)).
			Msg("no task in found state but total is positive, cleaning every task that still holds items")
	}
	o.log.Info().Ctx(ctx).Int("tasks", len(selected)).Msg("clean started")
	o.bus.PublishCleanStarted(eventbus.CleanStartedPayload{RunID: runID, Tasks: len(selected), Recovery: recovery})

	report := CleanReport{RunID: runID, Recovery: recovery}

	for n, i := range selected {
		if ctx.Err() != nil {
			report.Canceled = true
			break
		}

		def := o.catalog.At(i)
		st, ok := o.apply(ctx, runID, i, func(s task.State) (task.State, error) {
			return s.BeginClean(o.now(), recovery)
		})
		if !ok {
			continue
		}
		report.Tasks++

		if targets := st.DeletableItems(); len(targets) > 0 {
			res, err := o.deleter.Delete(ctx, targets)
			report.SpaceCleaned += res.SpaceFreed
			report.FilesDeleted += res.FilesDeleted
			report.Errors = append(report.Errors, res.Errors...)

			if err != nil {
				report.Failed++
				report.Errors = append(report.Errors, fmt.Sprintf("Failed to clean %s: %v", def.Name, err))
				o.apply(ctx, runID, i, func(s task.State) (task.State, error) {
					return s.FailClean(err, o.now())
				})
				o.log.Warn().Ctx(ctx).Err(err).Str("task", def.ID).Msg("delete failed")
				o.publishFreed(runID, n+1, len(selected), report.SpaceCleaned)
				continue
			}

			if len(res.Errors) > 0 {
				o.log.Warn().Ctx(ctx).Str("task", def.ID).Strs("errors", res.Errors).Msg("some items could not be deleted")
			}
		}

		o.apply(ctx, runID, i, func(s task.State) (task.State, error) {
			return s.FinishClean(o.now())
		})
		report.Cleaned++
		o.publishFreed(runID, n+1, len(selected), report.SpaceCleaned)
	}

	if err := ctx.Err(); err != nil {
		report.Canceled = true
		report.Errors = append(report.Errors, err.Error())
	}

	end := o.now()
	report.Duration = end.Sub(start)
	report.Type = history.ClassifyType(report.Tasks, o.deepThreshold, only != nil)
	report.Status = history.ClassifyStatus(report.Errors)

	rec := history.Record{
		SpaceCleaned: report.SpaceCleaned,
		FilesDeleted: report.FilesDeleted,
		Duration:     report.Duration.Milliseconds(),
		Type:         report.Type,
		Status:       report.Status,
		Errors:       history.JoinErrors(report.Errors),
	}
	rec.Stamp(end)

	// The record is written even when the caller cancelled.
	persistCtx := context.WithoutCancel(ctx)

	id, insertErr := o.history.Insert(persistCtx, rec)
	if insertErr != nil {
		o.log.Error().Ctx(ctx).Err(insertErr).Msg("failed to save cleaning history")
	}
	report.RecordID = id

	reloadErr := o.Reload(persistCtx)
	if reloadErr != nil {
		o.log.Error().Ctx(ctx).Err(reloadErr).Msg("failed to reload history")
	}
	report.PersistErr = errors.Join(insertErr, reloadErr)

	o.mu.Lock()
	o.totalFound = o.remainingLocked()
	saved := report
	o.lastClean = &saved
	o.mu.Unlock()

	o.log.Info().Ctx(ctx).
		Uint64("space_cleaned", report.SpaceCleaned).
		Uint64("files_deleted", report.FilesDeleted).
		Int("errors", len(report.Errors)).
		Str("type", string(report.Type)).
		Str("status", string(report.Status)).
		Msg("clean finished")

	o.bus.PublishCleanFinished(eventbus.CleanFinishedPayload{
		RunID:        runID,
		RecordID:     report.RecordID,
		SpaceCleaned: report.SpaceCleaned,
		FilesDeleted: report.FilesDeleted,
		Errors:       len(report.Errors),
		Type:         report.Type,
		Status:       report.Status,
		PersistErr:   report.PersistErr,
	})

	return report, nil
}

// remainingLocked sums the tasks that still hold items: those left out by
// Only, and those whose deleter could not run. After a clean where every task
// completed this is zero.
func (o *Orchestrator) remainingLocked() uint64 {
	var total uint64
	for _, st := range o.states {
		if st.HasItems() {
			total += st.Size
		}
	}
	return total
}

func (o *Orchestrator) publishFreed(runID string, done, of int, freed uint64) {
	o.mu.Lock()
	total := o.totalFound
	o.mu.Unlock()
	o.bus.PublishTotalChanged(eventbus.TotalChangedPayload{
		RunID:      runID,
		Done:       done,
		Of:         of,
		TotalFound: total,
		Freed:      freed,
	})
}
