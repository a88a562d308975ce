package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hay-kot/rnclean/internal/core/task"
	"github.com/hay-kot/rnclean/internal/probes"
	"github.com/hay-kot/rnclean/pkg/executil"
)

// FallbackDockerSize is credited for a removed resource whose size was not
// known at scan time.
const FallbackDockerSize = 10 << 20

// DockerDeleter removes docker:// items with the docker CLI.
type DockerDeleter struct {
	Binary string
	Exec   executil.Executor
	Logger zerolog.Logger
}

var _ Deleter = (*DockerDeleter)(nil)

func (d *DockerDeleter) Delete(ctx context.Context, items []task.Item) (Result, error) {
	var res Result
	if len(items) == 0 {
		return res, nil
	}

	if _, err := d.Exec.LookPath(d.Binary); err != nil {
		return res, fmt.Errorf("docker unavailable: %w", err)
	}

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		args, problem := removeArgs(it.Path)
		if problem != "" {
			res.Errors = append(res.Errors, problem)
			continue
		}

		if _, err := d.Exec.Output(ctx, d.Binary, args...); err != nil {
			d.Logger.Debug().Err(err).Str("resource", it.Path).Msg("docker remove failed")
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to remove %s: %v", it.Path, err))
			continue
		}

		res.FilesDeleted++
		if it.Size > 0 {
			res.SpaceFreed += it.Size
		} else {
			res.SpaceFreed += FallbackDockerSize
		}
	}

	return res, nil
}

// removeArgs maps a docker:// uri to CLI arguments. The second return is a
// user-facing message when the uri cannot be handled.
func removeArgs(uri string) ([]string, string) {
	kind, id, ok := strings.Cut(strings.TrimPrefix(uri, task.DockerScheme), "/")
	if !ok || id == "" {
		return nil, "Invalid Docker resource: " + uri
	}

	switch probes.DockerKind(kind) {
	case probes.DockerContainer, probes.DockerImage, probes.DockerVolume:
		return []string{kind, "rm", id}, ""
	case probes.DockerCache:
		return []string{"builder", "prune", "-f"}, ""
	default:
		return nil, "Unknown Docker resource type: " + kind
	}
}
