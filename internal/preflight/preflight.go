package preflight

import (
	"context"
	"net/http"
	"time"

	"recast/internal/arr"
	"recast/internal/config"
)

// MinTempFreeBytes is the free space below which the temp directory check fails.
// A feature-length HEVC encode rarely needs more.
const MinTempFreeBytes uint64 = 20 << 30

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Library service checks only run when the service is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Failed log directory", cfg.Paths.FailedLogDir),
		CheckQueueDatabase(cfg.Paths.QueueDB),
		CheckDiskSpace(ctx, "Temp free space", cfg.Paths.TempDir, MinTempFreeBytes),
	}
	results = append(results, CheckSystemDeps(ctx, cfg)...)
	results = append(results, CheckProfileLanguages(cfg)...)

	httpClient := &http.Client{Timeout: 5 * time.Second}
	for _, svc := range []struct {
		name string
		cfg  config.Arr
	}{
		{"radarr", cfg.Radarr},
		{"sonarr", cfg.Sonarr},
	} {
		if !svc.cfg.Enabled() {
			continue
		}
		client, err := arr.NewClient(svc.name, svc.cfg, httpClient)
		if err != nil {
			results = append(results, Result{Name: displayName(svc.name), Detail: err.Error()})
			continue
		}
		results = append(results, CheckLibraryService(ctx, displayName(svc.name), client))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func displayName(service string) string {
	switch service {
	case "radarr":
		return "Radarr"
	case "sonarr":
		return "Sonarr"
	default:
		return service
	}
}
