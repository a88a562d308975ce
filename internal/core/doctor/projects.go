package doctor

import (
	"context"
	"fmt"
	"os"
)

// PathsCheck verifies configured directories exist and are accessible.
type PathsCheck struct {
	name  string
	label string
	dirs  []string
}

// NewPathsCheck creates a check named name over dirs. label is shown when no
// directories are configured.
func NewPathsCheck(name, label string, dirs []string) *PathsCheck {
	return &PathsCheck{name: name, label: label, dirs: dirs}
}

func (c *PathsCheck) Name() string {
	return c.name
}

func (c *PathsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if len(c.dirs) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  c.label,
			Status: StatusPass,
			Detail: "none configured",
		})
		return result
	}

	for _, dir := range c.dirs {
		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			result.Items = append(result.Items, CheckItem{
				Label:  dir,
				Status: StatusWarn,
				Detail: "directory does not exist",
			})
		case err != nil:
			result.Items = append(result.Items, CheckItem{
				Label:  dir,
				Status: StatusFail,
				Detail: fmt.Sprintf("inaccessible: %v", err),
			})
		case !info.IsDir():
			result.Items = append(result.Items, CheckItem{
				Label:  dir,
				Status: StatusFail,
				Detail: "path is not a directory",
			})
		default:
			result.Items = append(result.Items, CheckItem{
				Label:  dir,
				Status: StatusPass,
			})
		}
	}

	return result
}
