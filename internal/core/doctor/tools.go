package doctor

import (
	"context"

	"github.com/hay-kot/rnclean/pkg/executil"
)

// DefaultTools are the developer tools whose caches the catalog targets.
var DefaultTools = []string{"node", "npm", "yarn", "expo", "react-native", "docker"}

// ToolsCheck reports which tools are on $PATH. A missing tool is only a
// warning since its caches simply will not exist.
type ToolsCheck struct {
	exec  executil.Executor
	tools []string
}

// NewToolsCheck creates a tools check. A nil tools list uses DefaultTools.
func NewToolsCheck(exec executil.Executor, tools []string) *ToolsCheck {
	if tools == nil {
		tools = DefaultTools
	}
	return &ToolsCheck{exec: exec, tools: tools}
}

func (c *ToolsCheck) Name() string {
	return "Tools"
}

func (c *ToolsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	for _, tool := range c.tools {
		path, err := c.exec.LookPath(tool)
		if err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  tool,
				Status: StatusWarn,
				Detail: "not found on PATH",
			})
			continue
		}
		result.Items = append(result.Items, CheckItem{
			Label:  tool,
			Status: StatusPass,
			Detail: path,
		})
	}

	return result
}
