// Package cleaning drives scan and clean sessions over the task catalog. The
// Orchestrator owns the per-task state table and the session aggregates, and
// writes exactly one history record per clean.
package cleaning

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/rnclean/internal/core/eventbus"
	"github.com/hay-kot/rnclean/internal/core/history"
	"github.com/hay-kot/rnclean/internal/core/task"
	"github.com/hay-kot/rnclean/internal/executor"
)

var (
	// ErrBusy is returned when a scan or clean is already running. Nothing is
	// mutated.
	ErrBusy = errors.New("a scan or clean is already in progress")

	// ErrNothingToClean is returned when no task is eligible for cleaning.
	ErrNothingToClean = errors.New("nothing to clean, run a scan first")
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBus publishes progress events to bus.
func WithBus(bus *eventbus.EventBus) Option {
	return func(o *Orchestrator) { o.bus = bus }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithDeepThreshold sets how many cleaned tasks a session needs to exceed to
// be classified deep.
func WithDeepThreshold(n int) Option {
	return func(o *Orchestrator) { o.deepThreshold = n }
}

// WithRecentLimit sets how many records the recent-history view holds.
func WithRecentLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.recentLimit = n
		}
	}
}

// Orchestrator sequences probes and deleters over a fixed catalog. All methods
// are safe for concurrent use; Scan and Clean exclude each other.
type Orchestrator struct {
	catalog *task.Catalog
	deleter executor.Deleter
	history history.Store

	bus           *eventbus.EventBus
	now           func() time.Time
	log           zerolog.Logger
	deepThreshold int
	recentLimit   int

	mu         sync.Mutex
	states     []task.State
	totalFound uint64
	scanning   bool
	cleaning   bool
	lastScan   *ScanReport
	lastClean  *CleanReport
	recent     []history.Record
	stats      history.Stats
}

// New builds an Orchestrator with every task pending.
func New(catalog *task.Catalog, deleter executor.Deleter, store history.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:       catalog,
		deleter:       deleter,
		history:       store,
		now:           time.Now,
		log:           zerolog.Nop(),
		deepThreshold: history.DefaultDeepThreshold,
		recentLimit:   history.RecentLimit,
	}
	for _, opt := range opts {
		opt(o)
	}

	now := o.now()
	o.states = make([]task.State, catalog.Len())
	for i := range o.states {
		o.states[i] = task.NewState(now)
	}
	return o
}

// TaskView pairs a definition with a copy of its current state.
type TaskView struct {
	Index       int           `json:"index"`
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    task.Category `json:"category"`
	State       task.State    `json:"state"`
}

// Snapshot is a point-in-time copy of everything the orchestrator tracks.
type Snapshot struct {
	Tasks      []TaskView       `json:"tasks"`
	TotalFound uint64           `json:"total_found"`
	Scanning   bool             `json:"scanning"`
	Cleaning   bool             `json:"cleaning"`
	LastScan   *ScanReport      `json:"last_scan,omitempty"`
	LastClean  *CleanReport     `json:"last_clean,omitempty"`
	Recent     []history.Record `json:"recent"`
	Stats      history.Stats    `json:"stats"`
}

// Snapshot returns a copy of the state table and session views.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		Tasks:      make([]TaskView, len(o.states)),
		TotalFound: o.totalFound,
		Scanning:   o.scanning,
		Cleaning:   o.cleaning,
		Recent:     append([]history.Record(nil), o.recent...),
		Stats:      o.stats,
	}
	for i, st := range o.states {
		def := o.catalog.At(i)
		st.Items = append([]task.Item(nil), st.Items...)
		snap.Tasks[i] = TaskView{
			Index:       i,
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Category:    def.Category,
			State:       st,
		}
	}
	if o.lastScan != nil {
		r := *o.lastScan
		snap.LastScan = &r
	}
	if o.lastClean != nil {
		r := *o.lastClean
		snap.LastClean = &r
	}
	return snap
}

// Busy reports whether a scan or clean is running.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.scanning || o.cleaning
}

// apply runs a transition on task i and publishes the new state. A rejected
// transition leaves the state as it was.
func (o *Orchestrator) apply(ctx context.Context, runID string, i int, fn func(task.State) (task.State, error)) (task.State, bool) {
	o.mu.Lock()
	next, err := fn(o.states[i])
	if err == nil {
		o.states[i] = next
	}
	o.mu.Unlock()

	def := o.catalog.At(i)
	if err != nil {
		o.log.Error().Ctx(ctx).Err(err).Str("task", def.ID).Msg("rejected task transition")
		return next, false
	}

	o.bus.PublishTaskChanged(eventbus.TaskChangedPayload{
		RunID: runID,
		Index: i,
		ID:    def.ID,
		Name:  def.Name,
		State: next,
	})
	return next, true
}
