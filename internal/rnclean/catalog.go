package rnclean

import (
	"github.com/rs/zerolog"

	"github.com/hay-kot/rnclean/internal/core/config"
	"github.com/hay-kot/rnclean/internal/probes"
	"github.com/hay-kot/rnclean/pkg/executil"
)

// CatalogOptions derives the catalog options from the config file and the
// stored preferences. Project roots are only scanned when deep_scan is on,
// and custom folders from both sources are merged in order without repeats.
func CatalogOptions(cfg *config.Config, prefs Preferences, exec executil.Executor, logger zerolog.Logger) probes.Options {
	docker, _ := cfg.DockerMode()

	opts := probes.Options{
		Env:           probes.DefaultEnv(),
		Exec:          exec,
		Logger:        logger,
		Docker:        docker,
		DockerBinary:  cfg.Docker.Binary,
		CustomFolders: mergeFolders(cfg.Catalog.CustomFolders, prefs.CustomFolders),
		Disabled:      cfg.Catalog.Disabled,
		SizeWorkers:   cfg.Cleaning.SizeWorkers,
	}
	if prefs.DeepScan {
		opts.Projects = cfg.Catalog.Projects
	}
	return opts
}

func mergeFolders(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, f := range list {
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
