package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"recast/internal/config"
	"recast/internal/testsupport"
)

const probeJSON = `{"streams":[
 {"index":0,"codec_type":"video","codec_name":"h264","width":1920,"height":1080,"disposition":{"default":1}},
 {"index":1,"codec_type":"audio","codec_name":"aac","channels":2,"tags":{"language":"ita"}},
 {"index":2,"codec_type":"audio","codec_name":"ac3","channels":6,"tags":{"language":"eng"}},
 {"index":3,"codec_type":"subtitle","codec_name":"mov_text","tags":{"language":"eng"}}
],"format":{"duration":"5400.0","size":"4096","format_name":"mov,mp4,m4a,3gp,3g2,mj2"}}`

const ffmpegStub = `for last; do :; done
echo "frame=  10 fps=1.0"
printf 'encoded' > "$last"
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	defaults := []testsupport.ConfigOption{
		testsupport.WithFFprobeScript("cat <<'JSON'\n" + probeJSON + "\nJSON\n"),
		testsupport.WithFFmpegScript(ffmpegStub),
		testsupport.WithProfile("HD-1080p", config.Profile{
			Languages:   "eng",
			VideoParams: "-c libx265 -preset medium",
			AudioParams: "-c aac -b 192k",
		}),
	}
	cfg := testsupport.NewConfig(t, append(defaults, opts...)...)
	cfg.Webhook.Enabled = false
	cfg.Workflow.IterationDelay = 0

	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	configPath := filepath.Join(base, "recast.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--config", e.configPath}, args...))
}

func runCLI(t *testing.T, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
