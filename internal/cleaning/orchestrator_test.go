package cleaning

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/rnclean/internal/core/eventbus"
	"github.com/hay-kot/rnclean/internal/core/eventbus/testbus"
	"github.com/hay-kot/rnclean/internal/core/history"
	"github.com/hay-kot/rnclean/internal/core/task"
	"github.com/hay-kot/rnclean/internal/executor"
)

// pathDeleter deletes by looking up a fixed result per first item path.
type pathDeleter struct {
	mu      sync.Mutex
	results map[string]executor.Result
	errs    map[string]error
	calls   [][]task.Item
}

func (d *pathDeleter) Delete(_ context.Context, list []task.Item) (executor.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, list)
	key := list[0].Path
	if err := d.errs[key]; err != nil {
		return executor.Result{}, err
	}
	if r, ok := d.results[key]; ok {
		return r, nil
	}
	var r executor.Result
	for _, it := range list {
		r.FilesDeleted++
		r.SpaceFreed += it.Size
	}
	return r, nil
}

func (d *pathDeleter) called() [][]task.Item {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]task.Item(nil), d.calls...)
}

func newOrchestrator(t *testing.T, defs []task.Definition, del executor.Deleter, store history.Store, opts ...Option) *Orchestrator {
	t.Helper()
	c, err := task.NewCatalog(defs...)
	require.NoError(t, err)
	return New(c, del, store, append([]Option{WithClock(tickingClock())}, opts...)...)
}

func statuses(s Snapshot) []task.Status {
	out := make([]task.Status, len(s.Tasks))
	for i, tv := range s.Tasks {
		out[i] = tv.State.Status
	}
	return out
}

func TestScan(t *testing.T) {
	bus := testbus.New(t)
	o := newOrchestrator(t, []task.Definition{
		def("a", fixed(items(60, "/a/1", "/a/2"))),
		def("empty", fixed(nil)),
		def("broken", failing("permission denied")),
		def("b", fixed(items(30, "/b/1"))),
	}, &pathDeleter{}, &memHistory{}, WithBus(bus.EventBus))

	report, err := o.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(150), report.TotalFound)
	assert.Equal(t, 2, report.Found)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, report.Canceled)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, "broken", report.Diagnostics[0].TaskID)
	assert.Equal(t, "permission denied", report.Diagnostics[0].Error)
	assert.Positive(t, report.Duration)

	snap := o.Snapshot()
	assert.Equal(t, []task.Status{task.StatusFound, task.StatusCompleted, task.StatusError, task.StatusFound}, statuses(snap))
	assert.Equal(t, "permission denied", snap.Tasks[2].State.Err)
	assert.Equal(t, uint64(150), snap.TotalFound)
	assert.False(t, snap.Scanning)
	require.NotNil(t, snap.LastScan)

	var sum uint64
	for _, tv := range snap.Tasks {
		if tv.State.Status == task.StatusFound || tv.State.Status == task.StatusCompleted {
			sum += tv.State.Size
		}
	}
	assert.Equal(t, snap.TotalFound, sum)

	totals := testbus.Of[eventbus.TotalChangedPayload](bus, eventbus.EventTotalChanged)
	require.Len(t, totals, 4)
	for i := 1; i < len(totals); i++ {
		assert.GreaterOrEqual(t, totals[i].TotalFound, totals[i-1].TotalFound)
	}
	assert.Equal(t, uint64(120), totals[0].TotalFound)
	assert.Equal(t, 1, bus.Count(eventbus.EventScanStarted))
	assert.Equal(t, 1, bus.Count(eventbus.EventScanFinished))
	assert.Equal(t, 8, bus.Count(eventbus.EventTaskChanged))
}

func TestScan_ResetsBeforeFirstProbe(t *testing.T) {
	var o *Orchestrator
	var seen []task.Status
	first := true

	o = newOrchestrator(t, []task.Definition{
		def("probe", task.ProbeFunc(func(context.Context) ([]task.Item, error) {
			if !first {
				seen = statuses(o.Snapshot())
			}
			return items(10, "/p"), nil
		})),
		def("other", fixed(items(20, "/o"))),
		def("err", failing("boom")),
	}, &pathDeleter{}, &memHistory{})

	_, err := o.Scan(context.Background())
	require.NoError(t, err)
	first = false

	_, err = o.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []task.Status{task.StatusScanning, task.StatusPending, task.StatusPending}, seen)
}

func TestScan_ErrorIsolation(t *testing.T) {
	calls := 0
	count := func(list []task.Item) task.ProbeFunc {
		return func(context.Context) ([]task.Item, error) {
			calls++
			return list, nil
		}
	}

	o := newOrchestrator(t, []task.Definition{
		def("a", count(items(1, "/a"))),
		def("b", count(nil)),
		def("bad", failing("nope")),
		def("c", count(items(2, "/c"))),
		def("d", count(items(3, "/d"))),
	}, &pathDeleter{}, &memHistory{})

	report, err := o.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 1, report.Failed)

	errored := 0
	for _, tv := range o.Snapshot().Tasks {
		if tv.State.Status == task.StatusError {
			errored++
		}
	}
	assert.Equal(t, 1, errored)
}

func TestClean_SessionRecord(t *testing.T) {
	store := &memHistory{}
	del := &pathDeleter{results: map[string]executor.Result{
		"/a/1": {FilesDeleted: 2, SpaceFreed: 100},
		"/b/1": {FilesDeleted: 1, SpaceFreed: 50, Errors: []string{"Failed to delete /b/2: busy"}},
	}}
	bus := testbus.New(t)
	o := newOrchestrator(t, []task.Definition{
		def("a", fixed(items(50, "/a/1", "/a/2"))),
		def("b", fixed(items(25, "/b/1", "/b/2"))),
	}, del, store, WithBus(bus.EventBus))

	_, err := o.Scan(context.Background())
	require.NoError(t, err)

	report, err := o.Clean(context.Background(), CleanOptions{})
	require.NoError(t, err)
	require.NoError(t, report.PersistErr)

	assert.Equal(t, uint64(150), report.SpaceCleaned)
	assert.Equal(t, uint64(3), report.FilesDeleted)
	assert.Equal(t, history.StatusWarning, report.Status)
	assert.Equal(t, history.TypeQuick, report.Type)
	assert.Equal(t, 2, report.Cleaned)
	assert.False(t, report.Recovery)

	assert.Equal(t, 1, store.inserts)
	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.Equal(t, uint64(150), rec.SpaceCleaned)
	assert.Equal(t, uint64(3), rec.FilesDeleted)
	assert.Equal(t, history.StatusWarning, rec.Status)
	assert.Equal(t, history.TypeQuick, rec.Type)
	assert.NotEmpty(t, rec.Errors)
	assert.Equal(t, report.RecordID, rec.ID)
	assert.Positive(t, rec.Duration)

	snap := o.Snapshot()
	assert.Equal(t, []task.Status{task.StatusCompleted, task.StatusCompleted}, statuses(snap))
	for _, tv := range snap.Tasks {
		assert.Empty(t, tv.State.Items)
		assert.Zero(t, tv.State.Size)
	}
	assert.Zero(t, snap.TotalFound)
	assert.Len(t, snap.Recent, 1)
	assert.Equal(t, int64(1), snap.Stats.TotalSessions)
	assert.Equal(t, uint64(150), snap.Stats.TotalSpaceCleaned)

	finished := testbus.Of[eventbus.CleanFinishedPayload](bus, eventbus.EventCleanFinished)
	require.Len(t, finished, 1)
	assert.Equal(t, 1, finished[0].Errors)
	assert.Equal(t, 1, bus.Count(eventbus.EventHistoryChanged))
}

func TestClean_Eligibility(t *testing.T) {
	del := &pathDeleter{}
	keep := []task.Item{{Path: "/keep", Size: 10, Deletable: false}}
	mixed := []task.Item{
		{Path: "/mixed/locked", Size: 5, Deletable: false},
		{Path: "/mixed/ok", Size: 7, Deletable: true},
	}

	o := newOrchestrator(t, []task.Definition{
		def("empty", fixed(nil)),
		def("bad", failing("x")),
		def("keep", fixed(keep)),
		def("mixed", fixed(mixed)),
	}, del, &memHistory{})

	_, err := o.Scan(context.Background())
	require.NoError(t, err)

	report, err := o.Clean(context.Background(), CleanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Tasks)

	calls := del.called()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 1)
	assert.Equal(t, "/mixed/ok", calls[0][0].Path)

	assert.Equal(t, []task.Status{
		task.StatusCompleted, task.StatusError, task.StatusCompleted, task.StatusCompleted,
	}, statuses(o.Snapshot()))
}

func TestClean_NothingToClean(t *testing.T) {
	store := &memHistory{}
	o := newOrchestrator(t, []task.Definition{def("empty", fixed(nil))}, &pathDeleter{}, store)

	_, err := o.Clean(context.Background(), CleanOptions{})
	require.ErrorIs(t, err, ErrNothingToClean)

	_, err = o.Scan(context.Background())
	require.NoError(t, err)
	before := o.Snapshot()

	_, err = o.Clean(context.Background(), CleanOptions{})
	require.ErrorIs(t, err, ErrNothingToClean)
	assert.Equal(t, 0, store.inserts)
	assert.Equal(t, statuses(before), statuses(o.Snapshot()))
}

func TestClean_DeleterFailureAndRecovery(t *testing.T) {
	store := &memHistory{}
	del := &pathDeleter{errs: map[string]error{"/b": errors.New("docker unavailable")}}
	bus := testbus.New(t)
	o := newOrchestrator(t, []task.Definition{
		def("a", fixed(items(10, "/a"))),
		def("b", fixed(items(20, "/b"))),
	}, del, store, WithBus(bus.EventBus))

	_, err := o.Scan(context.Background())
	require.NoError(t, err)

	report, err := o.Clean(context.Background(), CleanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"Failed to clean Task b: docker unavailable"}, report.Errors)
	assert.Equal(t, history.StatusWarning, report.Status)

	snap := o.Snapshot()
	assert.Equal(t, task.StatusError, snap.Tasks[1].State.Status)
	assert.Len(t, snap.Tasks[1].State.Items, 1)
	assert.Equal(t, uint64(20), snap.TotalFound)

	del.mu.Lock()
	del.errs = nil
	del.mu.Unlock()

	report, err = o.Clean(context.Background(), CleanOptions{})
	require.NoError(t, err)
	assert.True(t, report.Recovery)
	assert.Equal(t, uint64(20), report.SpaceCleaned)
	assert.Equal(t, task.StatusCompleted, o.Snapshot().Tasks[1].State.Status)
	assert.Zero(t, o.Snapshot().TotalFound)
	assert.Equal(t, 2, store.inserts)

	started := testbus.Of[eventbus.CleanStartedPayload](bus, eventbus.EventCleanStarted)
	require.Len(t, started, 2)
	assert.True(t, started[1].Recovery)
}

func TestClean_Only(t *testing.T) {
	del := &pathDeleter{}
	o := newOrchestrator(t, []task.Definition{
		def("a", fixed(items(10, "/a"))),
		def("b", fixed(items(20, "/b"))),
	}, del, &memHistory{})

	_, err := o.Scan(context.Background())
	require.NoError(t, err)

	_, err = o.Clean(context.Background(), CleanOptions{Only: []string{"missing"}})
	var unknown UnknownTaskError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.ID)

	report, err := o.Clean(context.Background(), CleanOptions{Only: []string{"b"}})
	require.NoError(t, err)
	assert.Equal(t, history.TypeCustom, report.Type)
	assert.Equal(t, uint64(20), report.SpaceCleaned)

	snap := o.Snapshot()
	assert.Equal(t, []task.Status{task.StatusFound, task.StatusCompleted}, statuses(snap))
	assert.Equal(t, uint64(10), snap.TotalFound)
}

func TestClean_DeepThreshold(t *testing.T) {
	o := newOrchestrator(t, []task.Definition{
		def("a", fixed(items(1, "/a"))),
		def("b", fixed(items(1, "/b"))),
	}, &pathDeleter{}, &memHistory{}, WithDeepThreshold(1))

	_, err := o.Scan(context.Background())
	require.NoError(t, err)

	report, err := o.Clean(context.Background(), CleanOptions{})
	require.NoError(t, err)
	assert.Equal(t, history.TypeDeep, report.Type)
	assert.Equal(t, history.StatusSuccess, report.Status)
	assert.Empty(t, report.Errors)
}

func TestClean_Canceled(t *testing.T) {
	store := &memHistory{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	del := executor.DeleterFunc(func(_ context.Context, list []task.Item) (executor.Result, error) {
		cancel()
		return executor.Result{FilesDeleted: 1, SpaceFreed: list[0].Size}, nil
	})
	o := newOrchestrator(t, []task.Definition{
		def("a", fixed(items(10, "/a"))),
		def("b", fixed(items(20, "/b"))),
	}, del, store)

	_, err := o.Scan(context.Background())
	require.NoError(t, err)

	report, err := o.Clean(ctx, CleanOptions{})
	require.NoError(t, err)
	assert.True(t, report.Canceled)
	assert.Equal(t, 1, report.Tasks)
	assert.Equal(t, uint64(10), report.SpaceCleaned)
	assert.Contains(t, report.Errors, context.Canceled.Error())

	require.Len(t, store.records, 1)
	assert.True(t, strings.Contains(store.records[0].Errors, "context canceled"))

	snap := o.Snapshot()
	assert.Equal(t, []task.Status{task.StatusCompleted, task.StatusFound}, statuses(snap))
	assert.False(t, snap.Cleaning)
}

func TestScan_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o := newOrchestrator(t, []task.Definition{
		def("a", task.ProbeFunc(func(ctx context.Context) ([]task.Item, error) {
			cancel()
			return nil, ctx.Err()
		})),
		def("b", fixed(items(1, "/b"))),
	}, &pathDeleter{}, &memHistory{})

	report, err := o.Scan(ctx)
	require.NoError(t, err)
	assert.True(t, report.Canceled)
	assert.Equal(t, 1, report.Pending)

	for _, tv := range o.Snapshot().Tasks {
		assert.False(t, tv.State.Status.IsActive())
	}
}

func TestClean_PersistFailure(t *testing.T) {
	store := &memHistory{insertErr: errors.New("disk I/O error")}
	o := newOrchestrator(t, []task.Definition{def("a", fixed(items(10, "/a")))}, &pathDeleter{}, store)

	_, err := o.Scan(context.Background())
	require.NoError(t, err)

	report, err := o.Clean(context.Background(), CleanOptions{})
	require.NoError(t, err)
	require.Error(t, report.PersistErr)
	assert.Equal(t, uint64(10), report.SpaceCleaned)
	assert.Zero(t, report.RecordID)
	assert.Equal(t, task.StatusCompleted, o.Snapshot().Tasks[0].State.Status)
}

func TestMutualExclusion(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	store := &memHistory{}

	o := newOrchestrator(t, []task.Definition{
		def("slow", task.ProbeFunc(func(context.Context) ([]task.Item, error) {
			close(entered)
			<-release
			return items(5, "/slow"), nil
		})),
	}, &pathDeleter{}, store)

	done := make(chan error, 1)
	go func() {
		_, err := o.Scan(context.Background())
		done <- err
	}()

	<-entered
	before := o.Snapshot()
	assert.True(t, before.Scanning)
	assert.True(t, o.Busy())

	_, err := o.Clean(context.Background(), CleanOptions{})
	assert.ErrorIs(t, err, ErrBusy)
	_, err = o.Scan(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	after := o.Snapshot()
	assert.Equal(t, statuses(before), statuses(after))
	assert.Equal(t, 0, store.inserts)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, o.Busy())
}

func TestMutualExclusion_ScanDuringClean(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	store := &memHistory{}

	del := executor.DeleterFunc(func(_ context.Context, list []task.Item) (executor.Result, error) {
		close(entered)
		<-release
		return executor.Result{FilesDeleted: 1, SpaceFreed: list[0].Size}, nil
	})
	o := newOrchestrator(t, []task.Definition{
		def("a", fixed(items(10, "/a"))),
		def("b", fixed(nil)),
	}, del, store)

	_, err := o.Scan(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := o.Clean(context.Background(), CleanOptions{})
		done <- err
	}()

	<-entered
	before := o.Snapshot()
	assert.True(t, before.Cleaning)
	assert.Equal(t, task.StatusCleaning, before.Tasks[0].State.Status)

	_, err = o.Scan(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	after := o.Snapshot()
	assert.Equal(t, before.Tasks, after.Tasks)
	assert.Equal(t, uint64(10), after.TotalFound)
	assert.Len(t, after.Tasks[0].State.Items, 1)
	assert.Equal(t, 0, store.inserts)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, o.Busy())
	assert.Equal(t, 1, store.inserts)
}

func TestEmptyCatalog(t *testing.T) {
	store := &memHistory{}
	o := newOrchestrator(t, nil, &pathDeleter{}, store)

	report, err := o.Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.TotalFound)
	assert.Zero(t, report.Found+report.Completed+report.Failed+report.Pending)
	assert.Empty(t, report.Diagnostics)
	assert.False(t, report.Canceled)
	assert.Empty(t, o.Snapshot().Tasks)

	_, err = o.Clean(context.Background(), CleanOptions{})
	require.ErrorIs(t, err, ErrNothingToClean)
	assert.Equal(t, 0, store.inserts)
}

func TestHistoryOperations_RefreshFailure(t *testing.T) {
	ctx := context.Background()
	store := &memHistory{}
	o := newOrchestrator(t, []task.Definition{def("a", fixed(items(10, "/a")))}, &pathDeleter{}, store)

	for range 2 {
		_, err := o.Scan(ctx)
		require.NoError(t, err)
		_, err = o.Clean(ctx, CleanOptions{})
		require.NoError(t, err)
	}

	store.mu.Lock()
	store.statsErr = errors.New("database is locked")
	store.mu.Unlock()

	recs, err := o.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	require.NoError(t, o.DeleteRecord(ctx, recs[0].ID))
	left, err := o.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, left, 1)

	require.NoError(t, o.ClearHistory(ctx))
	left, err = o.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestHistoryOperations(t *testing.T) {
	ctx := context.Background()
	store := &memHistory{}
	o := newOrchestrator(t, []task.Definition{def("a", fixed(items(10, "/a")))}, &pathDeleter{}, store)

	stats, err := o.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, history.Stats{}, stats)

	for range 3 {
		_, err := o.Scan(ctx)
		require.NoError(t, err)
		_, err = o.Clean(ctx, CleanOptions{})
		require.NoError(t, err)
	}

	stats, err = o.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalSessions)
	assert.Equal(t, uint64(30), stats.TotalSpaceCleaned)

	recs, err := o.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Greater(t, recs[0].ID, recs[1].ID)

	all, err := o.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	quick, err := o.HistoryByType(ctx, history.TypeQuick, 0)
	require.NoError(t, err)
	assert.Len(t, quick, 3)
	custom, err := o.HistoryByType(ctx, history.TypeCustom, 0)
	require.NoError(t, err)
	assert.Empty(t, custom)

	one, err := o.Record(ctx, all[1].ID)
	require.NoError(t, err)
	assert.Equal(t, all[1], one)

	require.NoError(t, o.DeleteRecord(ctx, all[0].ID))
	assert.ErrorIs(t, o.DeleteRecord(ctx, all[0].ID), history.ErrNotFound)
	assert.Equal(t, int64(2), o.Snapshot().Stats.TotalSessions)

	require.NoError(t, o.ClearHistory(ctx))
	snap := o.Snapshot()
	assert.Empty(t, snap.Recent)
	assert.Equal(t, history.Stats{}, snap.Stats)
}
