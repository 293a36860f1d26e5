package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"recast/internal/daemon"
	"recast/internal/preflight"
	"recast/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, queue and dependency health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report := newStatusReport(out)
			report.section("recast")

			running, lockErr := daemon.IsRunning(cfg)
			switch {
			case lockErr != nil:
				report.add("Daemon", statusError, lockErr.Error())
			case running:
				report.add("Daemon", statusOK, "running")
			default:
				report.add("Daemon", statusWarn, "not running")
			}

			configDetail := resolvedDir(ctx.configPath)
			if !ctx.configSeen {
				configDetail += " (missing, using defaults)"
			}
			report.add("Config", statusInfo, configDetail)

			if err := ctx.withStore(cmd, func(store *queue.Store) error {
				size, err := store.Size(cmd.Context())
				if err != nil {
					return err
				}
				report.add("Queue", statusInfo, strconv.Itoa(size)+" pending")
				return nil
			}); err != nil {
				report.add("Queue", statusError, err.Error())
			}

			if profiles := cfg.ProfileNames(); len(profiles) == 0 {
				report.add("Profiles", statusWarn, "none configured; webhook downloads are not queued")
			} else {
				report.add("Profiles", statusInfo, strings.Join(profiles, ", "))
			}
			report.add("Webhook", statusInfo, webhookDetail(cfg.Webhook.Enabled, cfg.Webhook.Bind))

			report.section("Checks")
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				report.addCheck(result)
			}

			_, err = report.WriteTo(out)
			return err
		},
	}
}

func webhookDetail(enabled bool, bind string) string {
	if !enabled {
		return "disabled"
	}
	return "bind " + bind
}
