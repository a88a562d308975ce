package cleaning

import (
	"context"

	"github.com/hay-kot/rnclean/internal/core/eventbus"
	"github.com/hay-kot/rnclean/internal/core/history"
)

// Reload refreshes the recent-history and stats views from the store.
func (o *Orchestrator) Reload(ctx context.Context) error {
	recent, err := o.history.List(ctx, o.recentLimit)
	if err != nil {
		return err
	}
	stats, err := o.history.Stats(ctx)
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.recent = recent
	o.stats = stats
	o.mu.Unlock()

	o.bus.PublishHistoryChanged(eventbus.HistoryChangedPayload{Recent: recent, Stats: stats})
	return nil
}

// Stats recomputes aggregate statistics from every stored record.
func (o *Orchestrator) Stats(ctx context.Context) (history.Stats, error) {
	return o.history.Stats(ctx)
}

// History returns up to limit records, newest first.
func (o *Orchestrator) History(ctx context.Context, limit int) ([]history.Record, error) {
	return o.history.List(ctx, limit)
}

// HistoryByType returns up to limit records of one session type, newest
// first.
func (o *Orchestrator) HistoryByType(ctx context.Context, t history.Type, limit int) ([]history.Record, error) {
	return o.history.ListByType(ctx, t, limit)
}

// Record returns one stored session.
func (o *Orchestrator) Record(ctx context.Context, id int64) (history.Record, error) {
	return o.history.Get(ctx, id)
}

// DeleteRecord removes one record and refreshes the views. A failed refresh
// is logged; the record is gone either way.
func (o *Orchestrator) DeleteRecord(ctx context.Context, id int64) error {
	if err := o.history.Delete(ctx, id); err != nil {
		return err
	}
	o.reloadAfterDelete(ctx)
	return nil
}

// ClearHistory removes every record and refreshes the views.
func (o *Orchestrator) ClearHistory(ctx context.Context) error {
	if err := o.history.DeleteAll(ctx); err != nil {
		return err
	}
	o.reloadAfterDelete(ctx)
	return nil
}

func (o *Orchestrator) reloadAfterDelete(ctx context.Context) {
	if err := o.Reload(ctx); err != nil {
		o.log.Error().Ctx(ctx).Err(err).Msg("failed to reload history")
	}
}

// Export returns the full record set, newest first.
func (o *Orchestrator) Export(ctx context.Context) ([]history.Record, error) {
	return o.history.ListAll(ctx)
}
