// Package probes implements the scan side of every catalog task: filesystem
// cache locations, project node_modules directories, and docker resources.
package probes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hay-kot/rnclean/internal/core/task"
)

// ErrNoHome is returned when a pattern needs the home directory and none is known.
var ErrNoHome = errors.New("could not find home directory")

// Env holds the roots that pattern prefixes expand to.
type Env struct {
	Home string
	Temp string
}

// DefaultEnv reads the current user's home and temp directories.
func DefaultEnv() Env {
	home, _ := os.UserHomeDir()
	return Env{Home: home, Temp: os.TempDir()}
}

// Expand resolves a leading "~" or "$TMPDIR" in pattern.
func (e Env) Expand(pattern string) (string, error) {
	switch {
	case pattern == "~" || strings.HasPrefix(pattern, "~/"):
		if e.Home == "" {
			return "", ErrNoHome
		}
		return filepath.Join(e.Home, strings.TrimPrefix(pattern, "~")), nil
	case pattern == "$TMPDIR" || strings.HasPrefix(pattern, "$TMPDIR/"):
		return filepath.Join(e.Temp, strings.TrimPrefix(pattern, "$TMPDIR")), nil
	default:
		return pattern, nil
	}
}

// PathProbe reports one item per existing path matching any of its patterns.
// Patterns use doublestar syntax after prefix expansion, e.g.
// "~/Library/Caches/Google/AndroidStudio*" or "$TMPDIR/metro-*".
type PathProbe struct {
	Type     string
	Patterns []string
	Env      Env
	Sizer    Sizer
}

var _ task.Probe = (*PathProbe)(nil)

// Scan matches, sizes, and reports every path. Zero-sized matches are dropped.
func (p *PathProbe) Scan(ctx context.Context) ([]task.Item, error) {
	paths, err := p.Match()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}

	sizes, err := p.Sizer.SizeAll(ctx, paths)
	if err != nil {
		return nil, err
	}

	items := make([]task.Item, 0, len(paths))
	for i, path := range paths {
		if sizes[i] == 0 {
			continue
		}
		items = append(items, task.Item{
			Path:      path,
			Size:      sizes[i],
			Type:      p.Type,
			Deletable: true,
		})
	}
	return items, nil
}

// Match expands every pattern and returns existing paths, deduplicated, in
// pattern order.
func (p *PathProbe) Match() ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range p.Patterns {
		expanded, err := p.Env.Expand(pattern)
		if err != nil {
			return nil, err
		}

		matches, err := glob(expanded)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}

		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}

	return out, nil
}

// glob returns existing paths matching pattern. Literal paths are stat'ed.
func glob(pattern string) ([]string, error) {
	slashed := filepath.ToSlash(pattern)
	base, rest := doublestar.SplitPattern(slashed)

	if rest == "" || !strings.ContainsAny(rest, "*?[{") {
		if _, err := os.Lstat(pattern); err != nil {
			return nil, nil
		}
		return []string{filepath.Clean(pattern)}, nil
	}

	root := filepath.FromSlash(base)
	if _, err := os.Stat(root); err != nil {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(root), rest)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(root, filepath.FromSlash(m)))
	}
	return out, nil
}
