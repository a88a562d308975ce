// Package executor removes the items a scan found: filesystem paths directly,
// and docker resources through the docker CLI.
package executor

import (
	"context"

	"github.com/hay-kot/rnclean/internal/core/task"
)

// Result is the outcome of one Delete call. Per-item failures are reported in
// Errors and never as the returned error.
type Result struct {
	FilesDeleted uint64   `json:"files_deleted"`
	SpaceFreed   uint64   `json:"space_freed"`
	Errors       []string `json:"errors"`
}

// Add folds other into r.
func (r *Result) Add(other Result) {
	r.FilesDeleted += other.FilesDeleted
	r.SpaceFreed += other.SpaceFreed
	r.Errors = append(r.Errors, other.Errors...)
}

// Deleter removes items. It returns an error only when it cannot run at all.
type Deleter interface {
	Delete(ctx context.Context, items []task.Item) (Result, error)
}

// DeleterFunc adapts a function to Deleter.
type DeleterFunc func(ctx context.Context, items []task.Item) (Result, error)

func (f DeleterFunc) Delete(ctx context.Context, items []task.Item) (Result, error) {
	return f(ctx, items)
}
