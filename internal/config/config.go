package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	LogDir       string `toml:"log_dir"`
	TempDir      string `toml:"temp_dir"`
	FailedLogDir string `toml:"failed_log_dir"`
	QueueDB      string `toml:"queue_db"`
}

// Profile is a named bundle of encode parameters selected by the library's
// quality profile name.
type Profile struct {
	Languages   string `toml:"languages"`
	VideoParams string `toml:"video_params"`
	AudioParams string `toml:"audio_params"`
}

// Transcoding contains encoder configuration.
type Transcoding struct {
	FFmpegBinary          string             `toml:"ffmpeg_binary"`
	FFprobeBinary         string             `toml:"ffprobe_binary"`
	HWAccel               string             `toml:"hwaccel"`
	UnsupportedExtensions []string           `toml:"unsupported_extensions"`
	Profiles              map[string]Profile `toml:"profiles"`
}

// Arr contains connection settings for a Radarr or Sonarr instance.
type Arr struct {
	URL                string `toml:"url"`
	APIKey             string `toml:"api_key"`
	RootFolder         string `toml:"root_folder"`
	RescanDelaySeconds int    `toml:"rescan_delay_seconds"`
}

// Enabled reports whether the instance has enough settings to be contacted.
func (a Arr) Enabled() bool {
	return strings.TrimSpace(a.URL) != "" && strings.TrimSpace(a.APIKey) != ""
}

// RemotePathMapping rewrites paths reported by Radarr/Sonarr into paths
// visible to this host.
type RemotePathMapping struct {
	Remote string `toml:"remote"`
	Local  string `toml:"local"`
}

// General contains settings shared by the enqueue sources.
type General struct {
	RemotePathMappings []RemotePathMapping `toml:"remote_path_mappings"`
}

// Webhook contains configuration for the download webhook listener.
type Webhook struct {
	Enabled bool   `toml:"enabled"`
	Bind    string `toml:"bind"`
}

// Notifications contains configuration for push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	PushoverUser   string `toml:"pushover_user"`
	PushoverToken  string `toml:"pushover_token"`
	PushoverDevice string `toml:"pushover_device"`
	RequestTimeout int    `toml:"request_timeout"`
	Completed      bool   `toml:"completed"`
	Downloads      bool   `toml:"downloads"`
}

// Workflow contains configuration for worker timing.
type Workflow struct {
	PollInterval       int  `toml:"poll_interval"`
	IterationDelay     int  `toml:"iteration_delay"`
	ErrorRetryInterval int  `toml:"error_retry_interval"`
	EncoderLogKeep     int  `toml:"encoder_log_keep"`
	WatchQueue         bool `toml:"watch_queue"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format            string `toml:"format"`
	Level             string `toml:"level"`
	RetentionDays     int    `toml:"retention_days"`
	RetentionSchedule string `toml:"retention_schedule"`
}

// Config encapsulates all configuration values for recast.
//
// Configuration sections by subsystem:
//   - Paths: log, temp, forensic log directories and the queue database
//   - Transcoding: encoder binaries, hardware acceleration, profiles
//   - Radarr/Sonarr: library service endpoints used for lookups and rescans
//   - General: remote path mappings applied before enqueueing
//   - Webhook: download webhook listener
//   - Notifications: ntfy and Pushover settings
//   - Workflow: worker polling and backoff intervals
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcoding   Transcoding   `toml:"transcoding"`
	Radarr        Arr           `toml:"radarr"`
	Sonarr        Arr           `toml:"sonarr"`
	General       General       `toml:"general"`
	Webhook       Webhook       `toml:"webhook"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/recast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	// A missing .env file is the common case.
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("recast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, c.Paths.TempDir, c.Paths.FailedLogDir}
	if c.Paths.QueueDB != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.QueueDB))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for encoding.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Transcoding.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used for stream inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Transcoding.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// Profile returns the transcoding profile registered under name.
func (c *Config) Profile(name string) (Profile, bool) {
	if c.Transcoding.Profiles == nil {
		return Profile{}, false
	}
	profile, ok := c.Transcoding.Profiles[strings.TrimSpace(name)]
	return profile, ok
}

// ProfileNames returns the configured profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Transcoding.Profiles))
	for name := range c.Transcoding.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
