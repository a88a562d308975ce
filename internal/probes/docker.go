package probes

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/hay-kot/rnclean/internal/core/task"
	"github.com/hay-kot/rnclean/pkg/executil"
)

// DockerKind selects which docker resources a DockerProbe reports.
type DockerKind string

const (
	DockerContainer DockerKind = "container"
	DockerImage     DockerKind = "image"
	DockerVolume    DockerKind = "volume"
	DockerCache     DockerKind = "cache"
)

// DefaultVolumeSize is reported for a dangling volume since docker does not
// expose per-volume size cheaply.
const DefaultVolumeSize = 1 << 20

// DockerURI builds the item path for a docker resource.
func DockerURI(kind DockerKind, id string) string {
	return task.DockerScheme + string(kind) + "/" + id
}

// DockerProbe lists reclaimable docker resources through the docker CLI. A
// missing binary or an unreachable daemon reports nothing rather than failing,
// since docker is optional for most projects.
type DockerProbe struct {
	Kind   DockerKind
	Binary string
	Exec   executil.Executor
	Logger zerolog.Logger
}

var _ task.Probe = (*DockerProbe)(nil)

func (p *DockerProbe) Scan(ctx context.Context) ([]task.Item, error) {
	if _, err := p.Exec.LookPath(p.Binary); err != nil {
		p.Logger.Debug().Str("binary", p.Binary).Msg("docker not found, skipping")
		return nil, nil
	}

	var args []string
	switch p.Kind {
	case DockerContainer:
		args = []string{"container", "ls", "-a", "--filter", "status=exited", "--format", "{{.ID}},{{.Names}},{{.Size}}"}
	case DockerImage:
		args = []string{"images", "-f", "dangling=true", "--format", "{{.ID}},{{.Size}}"}
	case DockerVolume:
		args = []string{"volume", "ls", "-f", "dangling=true", "--format", "{{.Name}}"}
	case DockerCache:
		args = []string{"system", "df", "--format", "{{.Type}}\t{{.TotalCount}}\t{{.Size}}\t{{.Reclaimable}}"}
	}

	out, err := p.Exec.Output(ctx, p.Binary, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.Logger.Warn().Err(err).Str("kind", string(p.Kind)).Msg("docker listing failed, skipping")
		return nil, nil
	}

	switch p.Kind {
	case DockerContainer:
		return parseContainers(out), nil
	case DockerImage:
		return parseImages(out), nil
	case DockerVolume:
		return parseVolumes(out), nil
	default:
		return parseBuildCache(out), nil
	}
}

func lines(out []byte) []string {
	var ls []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			ls = append(ls, l)
		}
	}
	return ls
}

// ParseDockerSize converts docker's human sizes ("1.2GB", "0B (virtual 3MB)",
// "512kB (40%)") to bytes. Docker prints SI units.
func ParseDockerSize(s string) uint64 {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return 0
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0
	}
	return n
}

func parseContainers(out []byte) []task.Item {
	var items []task.Item
	for _, l := range lines(out) {
		parts := strings.SplitN(l, ",", 3)
		if len(parts) < 3 {
			continue
		}
		size := ParseDockerSize(parts[2])
		if size == 0 {
			continue
		}
		items = append(items, task.Item{
			Path:      DockerURI(DockerContainer, parts[0]),
			Size:      size,
			Type:      "docker_container",
			Deletable: true,
		})
	}
	return items
}

func parseImages(out []byte) []task.Item {
	var items []task.Item
	for _, l := range lines(out) {
		parts := strings.SplitN(l, ",", 2)
		if len(parts) < 2 {
			continue
		}
		size := ParseDockerSize(parts[1])
		if size == 0 {
			continue
		}
		items = append(items, task.Item{
			Path:      DockerURI(DockerImage, parts[0]),
			Size:      size,
			Type:      "docker_image",
			Deletable: true,
		})
	}
	return items
}

func parseVolumes(out []byte) []task.Item {
	var items []task.Item
	for _, name := range lines(out) {
		items = append(items, task.Item{
			Path:      DockerURI(DockerVolume, name),
			Size:      DefaultVolumeSize,
			Type:      "docker_volume",
			Deletable: true,
		})
	}
	return items
}

func parseBuildCache(out []byte) []task.Item {
	for _, l := range lines(out) {
		cols := strings.Split(l, "\t")
		if len(cols) < 4 || cols[0] != "Build Cache" {
			continue
		}
		size := ParseDockerSize(cols[3])
		if size == 0 {
			return nil
		}
		return []task.Item{{
			Path:      DockerURI(DockerCache, "build"),
			Size:      size,
			Type:      "docker_cache",
			Deletable: true,
		}}
	}
	return nil
}
