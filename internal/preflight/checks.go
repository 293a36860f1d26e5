package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sys/unix"

	"recast/internal/arr"
	"recast/internal/config"
	"recast/internal/deps"
	"recast/internal/language"
)

// StatusChecker is satisfied by arr.Client.
type StatusChecker interface {
	Status(ctx context.Context) (arr.SystemStatus, error)
}

// CheckLibraryService verifies that a Radarr or Sonarr instance answers its
// status endpoint with the configured API key.
func CheckLibraryService(ctx context.Context, name string, client StatusChecker) Result {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status, err := client.Status(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("status check failed (%v)", err)}
	}
	detail := "Reachable"
	if status.Version != "" {
		detail = fmt.Sprintf("Reachable (%s %s)", strings.TrimSpace(status.AppName), status.Version)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckDirectoryAccess verifies that a directory exists and is readable,
// writable and searchable by the current user.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckQueueDatabase verifies the queue database file (if it exists) and its
// directory are writable. SQLite needs the directory for WAL and journal files.
func CheckQueueDatabase(path string) Result {
	const name = "Queue database"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "queue_db not configured"}
	}
	dir := CheckDirectoryAccess(name, filepath.Dir(path))
	if !dir.Passed {
		return dir
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace fails when the filesystem holding path has less than minFree
// bytes available.
func CheckDiskSpace(ctx context.Context, name, path string, minFree uint64) Result {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	detail := fmt.Sprintf("%s free of %s (%.0f%% used)", humanize.IBytes(usage.Free), humanize.IBytes(usage.Total), usage.UsedPercent)
	if usage.Free < minFree {
		return Result{Name: name, Detail: fmt.Sprintf("%s, need %s", detail, humanize.IBytes(minFree))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSystemDeps reports the encoder binaries as preflight results. Both the
// daemon and the CLI status command use this so the requirement list lives in
// one place.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []Result {
	statuses := deps.CheckWithVersions(ctx, deps.Requirements(cfg))
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		result := Result{Name: status.Name, Passed: status.Available || status.Optional}
		switch {
		case status.Available && status.Version != "":
			result.Detail = status.Version
		case status.Available:
			result.Detail = status.Path
		default:
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

// CheckProfileLanguages flags profile language codes that will never equal
// a container tag. Stream matching is exact, so "en" keeps nothing from a
// track tagged "eng".
func CheckProfileLanguages(cfg *config.Config) []Result {
	var results []Result
	for _, name := range cfg.ProfileNames() {
		profile, _ := cfg.Profile(name)
		result := Result{Name: "Profile " + name, Passed: true, Detail: "Languages match container tags"}
		if strings.TrimSpace(profile.Languages) == "" {
			result.Detail = "No language filter"
		}
		var problems []string
		for _, m := range language.Mismatches(profile.Languages) {
			if m.Expected == "" {
				problems = append(problems, fmt.Sprintf("%q is not an ISO 639 code", m.Code))
				continue
			}
			problems = append(problems, fmt.Sprintf("%q should be %q", m.Code, m.Expected))
		}
		if len(problems) > 0 {
			result.Passed = false
			result.Detail = strings.Join(problems, "; ")
		}
		results = append(results, result)
	}
	return results
}
