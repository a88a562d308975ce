package doctor

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"
)

// LowSpaceThreshold is the free space below which the disk check warns.
const LowSpaceThreshold = 5 << 30

// usageFunc reads filesystem usage. Package-level variable to allow test
// overrides.
var usageFunc = disk.UsageWithContext

// DiskCheck reports free space on the volume holding path.
type DiskCheck struct {
	path string
}

// NewDiskCheck creates a disk space check for the volume containing path.
func NewDiskCheck(path string) *DiskCheck {
	return &DiskCheck{path: path}
}

func (c *DiskCheck) Name() string {
	return "Disk Space"
}

func (c *DiskCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	usage, err := usageFunc(ctx, c.path)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  c.path,
			Status: StatusWarn,
			Detail: fmt.Sprintf("could not read usage: %v", err),
		})
		return result
	}

	detail := fmt.Sprintf("%s free of %s (%.0f%% used)",
		humanize.IBytes(usage.Free), humanize.IBytes(usage.Total), usage.UsedPercent)

	status := StatusPass
	if usage.Free < LowSpaceThreshold {
		status = StatusWarn
		detail += ", consider running clean"
	}

	result.Items = append(result.Items, CheckItem{Label: c.path, Status: status, Detail: detail})
	return result
}
