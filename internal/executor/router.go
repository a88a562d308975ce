package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/rnclean/internal/core/task"
)

// Router sends filesystem items to Files and docker items to Docker.
type Router struct {
	Files  Deleter
	Docker Deleter
}

var _ Deleter = (*Router)(nil)

// Delete splits items by kind and merges both results. When one side cannot
// run but the other did, the failure is folded into Result.Errors. An error is
// returned only when nothing could run.
func (r *Router) Delete(ctx context.Context, items []task.Item) (Result, error) {
	var paths, resources []task.Item
	for _, it := range items {
		if it.IsContainerResource() {
			resources = append(resources, it)
		} else {
			paths = append(paths, it)
		}
	}

	var (
		res  Result
		errs []error
		ran  int
	)

	run := func(name string, d Deleter, batch []task.Item) {
		if len(batch) == 0 {
			return
		}
		if d == nil {
			errs = append(errs, fmt.Errorf("no %s deleter configured", name))
			return
		}
		out, err := d.Delete(ctx, batch)
		res.Add(out)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		ran++
	}

	run("files", r.Files, paths)
	run("docker", r.Docker, resources)

	if len(errs) == 0 {
		return res, nil
	}
	if ran == 0 {
		return res, errors.Join(errs...)
	}
	for _, err := range errs {
		res.Errors = append(res.Errors, err.Error())
	}
	return res, nil
}
