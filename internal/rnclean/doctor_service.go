package rnclean

import (
	"context"
	"slices"

	"github.com/hay-kot/rnclean/internal/core/config"
	"github.com/hay-kot/rnclean/internal/core/doctor"
	"github.com/hay-kot/rnclean/pkg/executil"
)

// DoctorService runs health checks on the rnclean setup.
type DoctorService struct {
	config *config.Config
	db     doctor.Pinger
	exec   executil.Executor
	home   string
}

// NewDoctorService creates a new DoctorService. home is the volume whose
// free space is reported.
func NewDoctorService(cfg *config.Config, db doctor.Pinger, exec executil.Executor, home string) *DoctorService {
	return &DoctorService{
		config: cfg,
		db:     db,
		exec:   exec,
		home:   home,
	}
}

// RunChecks executes all doctor checks and returns results.
func (d *DoctorService) RunChecks(ctx context.Context) []doctor.Result {
	tools := append([]string(nil), doctor.DefaultTools...)
	if i := slices.Index(tools, "docker"); i >= 0 && d.config.Docker.Binary != "" {
		tools[i] = d.config.Docker.Binary
	}

	checks := []doctor.Check{
		doctor.NewToolsCheck(d.exec, tools),
		doctor.NewDataDirCheck(d.config.DataDir),
		doctor.NewDatabaseCheck(d.db),
		doctor.NewDiskCheck(d.home),
		doctor.NewPathsCheck("Project Roots", "projects", expandAll(d.config.Catalog.Projects)),
		doctor.NewPathsCheck("Custom Folders", "custom folders", expandAll(d.config.Catalog.CustomFolders)),
	}
	return doctor.RunAll(ctx, checks)
}

func expandAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, config.ExpandHome(p))
	}
	return out
}
