package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func defaultTempDir() string {
	return filepath.Join(os.TempDir(), defaultTempDirName)
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTranscoding(); err != nil {
		return err
	}
	c.normalizeArr()
	if err := c.normalizeGeneral(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("RECAST_DB_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Paths.QueueDB = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.QueueDB) == "" {
		c.Paths.QueueDB = defaultQueueDB
	}
	if c.Paths.QueueDB, err = expandPath(c.Paths.QueueDB); err != nil {
		return fmt.Errorf("paths.queue_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir()
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.FailedLogDir) == "" {
		c.Paths.FailedLogDir = defaultFailedLogDir
	}
	if c.Paths.FailedLogDir, err = expandPath(c.Paths.FailedLogDir); err != nil {
		return fmt.Errorf("paths.failed_log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscoding() error {
	c.Transcoding.FFmpegBinary = strings.TrimSpace(c.Transcoding.FFmpegBinary)
	c.Transcoding.FFprobeBinary = strings.TrimSpace(c.Transcoding.FFprobeBinary)
	c.Transcoding.HWAccel = strings.TrimSpace(c.Transcoding.HWAccel)

	exts := make([]string, 0, len(c.Transcoding.UnsupportedExtensions))
	seen := make(map[string]struct{}, len(c.Transcoding.UnsupportedExtensions))
	for _, ext := range c.Transcoding.UnsupportedExtensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	c.Transcoding.UnsupportedExtensions = exts

	if c.Transcoding.Profiles == nil {
		c.Transcoding.Profiles = map[string]Profile{}
	}
	for name, profile := range c.Transcoding.Profiles {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return fmt.Errorf("transcoding.profiles: profile name must not be empty")
		}
		profile.Languages = strings.TrimSpace(profile.Languages)
		profile.VideoParams = strings.TrimSpace(profile.VideoParams)
		profile.AudioParams = strings.TrimSpace(profile.AudioParams)
		delete(c.Transcoding.Profiles, name)
		c.Transcoding.Profiles[trimmed] = profile
	}
	return nil
}

func (c *Config) normalizeArr() {
	if c.Radarr.APIKey == "" {
		if value, ok := os.LookupEnv("RECAST_RADARR_API_KEY"); ok {
			c.Radarr.APIKey = value
		}
	}
	if c.Sonarr.APIKey == "" {
		if value, ok := os.LookupEnv("RECAST_SONARR_API_KEY"); ok {
			c.Sonarr.APIKey = value
		}
	}
	for _, arr := range []*Arr{&c.Radarr, &c.Sonarr} {
		arr.URL = strings.TrimRight(strings.TrimSpace(arr.URL), "/")
		arr.APIKey = strings.TrimSpace(arr.APIKey)
		arr.RootFolder = strings.TrimSpace(arr.RootFolder)
		if arr.RescanDelaySeconds < 0 {
			arr.RescanDelaySeconds = 0
		}
	}
}

func (c *Config) normalizeGeneral() error {
	mappings := make([]RemotePathMapping, 0, len(c.General.RemotePathMappings))
	for i, mapping := range c.General.RemotePathMappings {
		remote := strings.TrimSpace(mapping.Remote)
		local := strings.TrimSpace(mapping.Local)
		if remote == "" && local == "" {
			continue
		}
		if remote == "" || local == "" {
			return fmt.Errorf("general.remote_path_mappings[%d]: remote and local must both be set", i)
		}
		mappings = append(mappings, RemotePathMapping{Remote: remote, Local: local})
	}
	c.General.RemotePathMappings = mappings
	c.Webhook.Bind = strings.TrimSpace(c.Webhook.Bind)
	if c.Webhook.Bind == "" {
		c.Webhook.Bind = defaultWebhookBind
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("RECAST_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = value
		}
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Notifications.PushoverUser = strings.TrimSpace(c.Notifications.PushoverUser)
	c.Notifications.PushoverToken = strings.TrimSpace(c.Notifications.PushoverToken)
	c.Notifications.PushoverDevice = strings.TrimSpace(c.Notifications.PushoverDevice)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	c.Logging.RetentionSchedule = strings.TrimSpace(c.Logging.RetentionSchedule)
	if c.Logging.RetentionSchedule == "" {
		c.Logging.RetentionSchedule = defaultRetentionSchedule
	}
}
