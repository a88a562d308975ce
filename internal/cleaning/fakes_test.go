package cleaning

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/hay-kot/rnclean/internal/core/history"
	"github.com/hay-kot/rnclean/internal/core/task"
)

type memHistory struct {
	mu        sync.Mutex
	records   []history.Record
	nextID    int64
	inserts   int
	insertErr error
	statsErr  error
}

var _ history.Store = (*memHistory)(nil)

func (m *memHistory) Insert(_ context.Context, r history.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.nextID++
	r.ID = m.nextID
	m.records = append(m.records, r)
	return r.ID, nil
}

func (m *memHistory) List(_ context.Context, limit int) ([]history.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]history.Record(nil), m.records...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memHistory) Get(_ context.Context, id int64) (history.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return history.Record{}, history.ErrNotFound
}

func (m *memHistory) ListByType(ctx context.Context, t history.Type, limit int) ([]history.Record, error) {
	all, err := m.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	var out []history.Record
	for _, r := range all {
		if r.Type == t && (limit <= 0 || len(out) < limit) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memHistory) ListAll(ctx context.Context) ([]history.Record, error) {
	return m.List(ctx, history.ExportLimit)
}

func (m *memHistory) Stats(context.Context) (history.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statsErr != nil {
		return history.Stats{}, m.statsErr
	}
	var s history.Stats
	var dur int64
	for _, r := range m.records {
		s.TotalSpaceCleaned += r.SpaceCleaned
		s.TotalFilesDeleted += r.FilesDeleted
		s.TotalSessions++
		dur += r.Duration
	}
	if s.TotalSessions > 0 {
		s.AvgDuration = float64(dur) / float64(s.TotalSessions)
	}
	return s, nil
}

func (m *memHistory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return history.ErrNotFound
}

func (m *memHistory) DeleteAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

func items(size uint64, paths ...string) []task.Item {
	out := make([]task.Item, 0, len(paths))
	for _, p := range paths {
		out = append(out, task.Item{Path: p, Size: size, Type: "test", Deletable: true})
	}
	return out
}

func fixed(list []task.Item) task.ProbeFunc {
	return func(context.Context) ([]task.Item, error) { return list, nil }
}

func failing(msg string) task.ProbeFunc {
	return func(context.Context) ([]task.Item, error) { return nil, errors.New(msg) }
}

func def(id string, p task.Probe) task.Definition {
	return task.Definition{ID: id, Name: "Task " + id, Category: task.CategoryCache, Probe: p}
}

// tickingClock advances one second per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
