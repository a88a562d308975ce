package probes

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/hay-kot/rnclean/internal/core/task"
)

// NodeModulesProbe finds node_modules directories under project roots. It does
// not descend into a node_modules it has already reported, into .git, or
// through symlinks.
type NodeModulesProbe struct {
	Roots []string
	Env   Env
	Sizer Sizer
}

var _ task.Probe = (*NodeModulesProbe)(nil)

func (p *NodeModulesProbe) Scan(ctx context.Context) ([]task.Item, error) {
	var found []string

	for _, root := range p.Roots {
		expanded, err := p.Env.Expand(root)
		if err != nil {
			return nil, err
		}

		err = filepath.WalkDir(expanded, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != expanded {
					return fs.SkipDir
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}

			switch d.Name() {
			case ".git":
				return fs.SkipDir
			case "node_modules":
				found = append(found, path)
				return fs.SkipDir
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sizes, err := p.Sizer.SizeAll(ctx, found)
	if err != nil {
		return nil, err
	}

	items := make([]task.Item, 0, len(found))
	for i, path := range found {
		if sizes[i] == 0 {
			continue
		}
		items = append(items, task.Item{
			Path:      path,
			Size:      sizes[i],
			Type:      "node_modules",
			Deletable: true,
		})
	}
	return items, nil
}
