package probes

import (
	"context"
	"io/fs"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// DirSize sums the sizes of regular files under path without following
// symlinks. Entries that cannot be read are skipped so a single protected
// file does not hide the rest of a cache. A plain file reports its own size.
func DirSize(ctx context.Context, path string) (uint64, error) {
	var total uint64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += uint64(info.Size())
		return nil
	})
	return total, err
}

// Sizer measures many paths concurrently.
type Sizer struct {
	Workers int
}

// SizeAll returns the size of each path in input order. A path that cannot be
// walked at all reports zero; only cancellation is returned as an error.
func (s Sizer) SizeAll(ctx context.Context, paths []string) ([]uint64, error) {
	sizes := make([]uint64, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Workers, 1))

	for i, p := range paths {
		g.Go(func() error {
			n, err := DirSize(ctx, p)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return nil
			}
			sizes[i] = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sizes, nil
}
