package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"recast/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.TempDir = filepath.Join(base, "tmp")
	cfgVal.Paths.FailedLogDir = filepath.Join(base, "failed")
	cfgVal.Paths.QueueDB = filepath.Join(base, "state", "recast.db")
	cfgVal.Webhook.Bind = "127.0.0.1:0"
	cfgVal.Radarr.RescanDelaySeconds = 0

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithProfile registers a transcoding profile on the test config.
func WithProfile(name string, profile config.Profile) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Transcoding.Profiles == nil {
			b.cfg.Transcoding.Profiles = map[string]config.Profile{}
		}
		b.cfg.Transcoding.Profiles[name] = profile
	}
}

// WithFFmpegScript installs a shell script as the configured ffmpeg binary.
func WithFFmpegScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcoding.FFmpegBinary = WriteExecutable(b.t, filepath.Join(b.baseDir, "bin"), "ffmpeg", body)
	}
}

// WithFFprobeScript installs a shell script as the configured ffprobe binary.
func WithFFprobeScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcoding.FFprobeBinary = WriteExecutable(b.t, filepath.Join(b.baseDir, "bin"), "ffprobe", body)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "path-bin")
		for _, name := range names {
			WriteExecutable(b.t, binDir, name, "exit 0\n")
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
