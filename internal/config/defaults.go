package config

const (
	defaultLogDir             = "~/.local/share/recast/logs"
	defaultFailedLogDir       = "~/.local/share/recast/failed"
	defaultQueueDB            = "~/.local/share/recast/recast.db"
	defaultTempDirName        = "recast"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
	defaultRetentionSchedule  = "@daily"
	defaultWebhookBind        = "0.0.0.0:9000"
	defaultRequestTimeout     = 10
	defaultPollInterval       = 3
	defaultIterationDelay     = 3
	defaultErrorRetryInterval = 10
	defaultEncoderLogKeep     = 3
	defaultRadarrRescanDelay  = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:       defaultLogDir,
			TempDir:      defaultTempDir(),
			FailedLogDir: defaultFailedLogDir,
			QueueDB:      defaultQueueDB,
		},
		Transcoding: Transcoding{
			FFmpegBinary:          defaultFFmpegBinary,
			FFprobeBinary:         defaultFFprobeBinary,
			UnsupportedExtensions: []string{".avi"},
			Profiles:              map[string]Profile{},
		},
		Radarr: Arr{
			RescanDelaySeconds: defaultRadarrRescanDelay,
		},
		Webhook: Webhook{
			Enabled: true,
			Bind:    defaultWebhookBind,
		},
		Notifications: Notifications{
			RequestTimeout: defaultRequestTimeout,
			Downloads:      true,
		},
		Workflow: Workflow{
			PollInterval:       defaultPollInterval,
			IterationDelay:     defaultIterationDelay,
			ErrorRetryInterval: defaultErrorRetryInterval,
			EncoderLogKeep:     defaultEncoderLogKeep,
			WatchQueue:         true,
		},
		Logging: Logging{
			Format:            defaultLogFormat,
			Level:             defaultLogLevel,
			RetentionDays:     defaultLogRetentionDays,
			RetentionSchedule: defaultRetentionSchedule,
		},
	}
}
