package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateProfiles(); err != nil {
		return err
	}
	if err := c.validateArr(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.QueueDB) == "" {
		return errors.New("paths.queue_db must be set")
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		return errors.New("paths.temp_dir must be set")
	}
	return nil
}

func (c *Config) validateProfiles() error {
	for _, name := range c.ProfileNames() {
		profile := c.Transcoding.Profiles[name]
		for _, code := range strings.Split(profile.Languages, ",") {
			code = strings.TrimSpace(code)
			if code == "" {
				continue
			}
			if _, err := language.Parse(code); err != nil {
				return fmt.Errorf("transcoding.profiles.%s.languages: invalid language %q: %w", name, code, err)
			}
		}
	}
	return nil
}

func (c *Config) validateArr() error {
	for name, arr := range map[string]Arr{"radarr": c.Radarr, "sonarr": c.Sonarr} {
		if arr.URL == "" && arr.APIKey == "" {
			continue
		}
		if arr.URL == "" {
			return fmt.Errorf("%s.url must be set when %s.api_key is set", name, name)
		}
		if arr.APIKey == "" {
			return fmt.Errorf("%s.api_key must be set when %s.url is set (or set RECAST_%s_API_KEY)", name, name, strings.ToUpper(name))
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"workflow.poll_interval":        c.Workflow.PollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.IterationDelay < 0 {
		return errors.New("workflow.iteration_delay must be >= 0")
	}
	if c.Workflow.EncoderLogKeep < 1 {
		return errors.New("workflow.encoder_log_keep must be >= 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if c.Logging.RetentionDays == 0 {
		return nil
	}
	if _, err := cron.ParseStandard(c.Logging.RetentionSchedule); err != nil {
		return fmt.Errorf("logging.retention_schedule: %w", err)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
