package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"recast/internal/config"
)

// Requirement defines an external binary recast relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Version     string
	Detail      string
}

// Requirements lists the binaries the worker executes for the given config.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for encoding",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = resolved
		results = append(results, status)
	}
	return results
}

// Version runs "<binary> -version" and returns the first line of output.
// ffmpeg and ffprobe both print "ffmpeg version N ..." style banners.
func Version(ctx context.Context, binary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", binary, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", fmt.Errorf("%s -version: empty output", binary)
}

// CheckWithVersions runs CheckBinaries and fills Version for every available
// binary. A failed version probe marks the dependency unavailable.
func CheckWithVersions(ctx context.Context, requirements []Requirement) []Status {
	results := CheckBinaries(requirements)
	for i := range results {
		if !results[i].Available {
			continue
		}
		version, err := Version(ctx, results[i].Path)
		if err != nil {
			results[i].Available = false
			results[i].Detail = fmt.Sprintf("binary %q is not runnable: %v", results[i].Command, err)
			continue
		}
		results[i].Version = version
	}
	return results
}
