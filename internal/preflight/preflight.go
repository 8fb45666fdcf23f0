package preflight

import (
	"context"

	"comictag/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	if cfg.Sort.Directory != "" {
		results = append(results, CheckDirectoryAccess("Sort directory", cfg.Sort.Directory))
	}

	if cfg.HashCache.Enabled {
		results = append(results, CheckHashCache(ctx, cfg.HashCache.Path))
	}

	results = append(results, CheckRunLock(cfg.LockPath()))

	return results
}
