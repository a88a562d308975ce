// Package task defines cleaning task domain types: the static catalog of
// definitions and the per-task state machine driven by the orchestrator.
package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Category groups related cleaning tasks.
type Category string

const (
	CategoryCache  Category = "cache"
	CategoryLogs   Category = "logs"
	CategoryTemp   Category = "temp"
	CategoryBuild  Category = "build"
	CategoryDocker Category = "docker"
	CategoryTools  Category = "tools"
)

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryCache, CategoryLogs, CategoryTemp, CategoryBuild, CategoryDocker, CategoryTools:
		return true
	default:
		return false
	}
}

// DockerScheme prefixes container-resource identifiers, e.g.
// docker://image/sha256:abc or docker://cache/build.
const DockerScheme = "docker://"

// Item is a single discovered entry reported by a probe.
type Item struct {
	Path      string `json:"path"`
	Size      uint64 `json:"size"`
	Type      string `json:"type"`
	Deletable bool   `json:"deletable"`
}

// IsContainerResource reports whether the item refers to a docker resource
// rather than a filesystem path.
func (i Item) IsContainerResource() bool {
	return strings.HasPrefix(i.Path, DockerScheme)
}

// TotalSize sums the size of every item.
func TotalSize(items []Item) uint64 {
	var total uint64
	for _, it := range items {
		total += it.Size
	}
	return total
}

// Probe enumerates the items for one task category. Probes are stateless from
// the orchestrator's point of view and fail by returning an error, never by
// embedding one in a partial list.
type Probe interface {
	Scan(ctx context.Context) ([]Item, error)
}

// ProbeFunc adapts a plain function to the Probe interface.
type ProbeFunc func(ctx context.Context) ([]Item, error)

// Scan calls f.
func (f ProbeFunc) Scan(ctx context.Context) ([]Item, error) {
	return f(ctx)
}

// Definition is an immutable catalog entry.
type Definition struct {
	ID          string
	Name        string
	Description string
	Category    Category
	Probe       Probe
}

// Catalog is the ordered, immutable list of task definitions.
type Catalog struct {
	defs []Definition
}

// NewCatalog validates defs and returns a catalog preserving their order.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	seen := make(map[string]bool, len(defs))
	var errs []error
	for i, d := range defs {
		switch {
		case d.ID == "":
			errs = append(errs, fmt.Errorf("task %d: id is required", i))
		case seen[d.ID]:
			errs = append(errs, fmt.Errorf("task %q: duplicate id", d.ID))
		case !d.Category.IsValid():
			errs = append(errs, fmt.Errorf("task %q: invalid category %q", d.ID, d.Category))
		case d.Probe == nil:
			errs = append(errs, fmt.Errorf("task %q: probe is required", d.ID))
		}
		seen[d.ID] = true
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	cp := make([]Definition, len(defs))
	copy(cp, defs)
	return &Catalog{defs: cp}, nil
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}

// At returns the definition at catalog index i.
func (c *Catalog) At(i int) Definition {
	return c.defs[i]
}

// Definitions returns a copy of the definitions in catalog order.
func (c *Catalog) Definitions() []Definition {
	if c == nil {
		return nil
	}
	cp := make([]Definition, len(c.defs))
	copy(cp, c.defs)
	return cp
}

// Index returns the catalog index for id, or -1 if it is unknown.
func (c *Catalog) Index(id string) int {
	if c == nil {
		return -1
	}
	for i, d := range c.defs {
		if d.ID == id {
			return i
		}
	}
	return -1
}
