package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DataDirCheck verifies the data directory exists and accepts writes.
type DataDirCheck struct {
	dir string
}

// NewDataDirCheck creates a data directory check.
func NewDataDirCheck(dir string) *DataDirCheck {
	return &DataDirCheck{dir: dir}
}

func (c *DataDirCheck) Name() string {
	return "Data Directory"
}

func (c *DataDirCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := os.Stat(c.dir)
	switch {
	case os.IsNotExist(err):
		result.Items = append(result.Items, CheckItem{
			Label:  c.dir,
			Status: StatusWarn,
			Detail: "does not exist yet, it is created on first run",
		})
		return result
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  c.dir,
			Status: StatusFail,
			Detail: fmt.Sprintf("inaccessible: %v", err),
		})
		return result
	case !info.IsDir():
		result.Items = append(result.Items, CheckItem{
			Label:  c.dir,
			Status: StatusFail,
			Detail: "path is not a directory",
		})
		return result
	}

	probe, err := os.CreateTemp(c.dir, ".doctor-*")
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  c.dir,
			Status: StatusFail,
			Detail: fmt.Sprintf("not writable: %v", err),
		})
		return result
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	result.Items = append(result.Items, CheckItem{Label: c.dir, Status: StatusPass, Detail: "writable"})
	return result
}

// Pinger is satisfied by *db.DB.
type Pinger interface {
	Ping(ctx context.Context) error
	Path() string
	SchemaVersion(ctx context.Context) (int, error)
}

// DatabaseCheck verifies the history database answers queries.
type DatabaseCheck struct {
	db Pinger
}

// NewDatabaseCheck creates a database check.
func NewDatabaseCheck(db Pinger) *DatabaseCheck {
	return &DatabaseCheck{db: db}
}

func (c *DatabaseCheck) Name() string {
	return "Database"
}

func (c *DatabaseCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}
	label := filepath.Base(c.db.Path())

	if err := c.db.Ping(ctx); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusFail,
			Detail: fmt.Sprintf("unreachable: %v", err),
		})
		return result
	}

	version, err := c.db.SchemaVersion(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusFail,
			Detail: fmt.Sprintf("schema unreadable: %v", err),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  label,
		Status: StatusPass,
		Detail: fmt.Sprintf("schema v%d, %s", version, c.db.Path()),
	})
	return result
}
