package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/hay-kot/rnclean/internal/core/task"
	"github.com/hay-kot/rnclean/internal/probes"
)

// FileDeleter removes files and directories. Paths that no longer exist are
// skipped without counting or error.
type FileDeleter struct {
	Logger zerolog.Logger
}

var _ Deleter = (*FileDeleter)(nil)

func (d *FileDeleter) Delete(ctx context.Context, items []task.Item) (Result, error) {
	var res Result

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if _, err := os.Lstat(it.Path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				res.Errors = append(res.Errors, deleteError(it.Path, err))
			}
			continue
		}

		size, err := probes.DirSize(ctx, it.Path)
		if err != nil {
			return res, err
		}

		if err := os.RemoveAll(it.Path); err != nil {
			d.Logger.Debug().Err(err).Str("path", it.Path).Msg("delete failed")
			res.Errors = append(res.Errors, deleteError(it.Path, err))
			continue
		}

		res.FilesDeleted++
		res.SpaceFreed += size
	}

	return res, nil
}

func deleteError(path string, err error) string {
	return fmt.Sprintf("Failed to delete %s: %v", path, err)
}
