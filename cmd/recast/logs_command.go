package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recast/internal/logging"
	"recast/internal/logstream"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var opts logstream.Options

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Follow live encoder output from the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Webhook.Enabled {
				return errors.New("the encoder stream is served by the webhook listener; enable [webhook] to use recast logs")
			}
			if strings.TrimSpace(opts.Addr) == "" {
				opts.Addr = cfg.Webhook.Bind
			}

			out := cmd.OutOrStdout()
			_, err = logstream.Stream(cmd.Context(), opts, func(evt logging.LogEvent) {
				fmt.Fprintln(out, formatStreamEvent(evt))
			})
			if errors.Is(err, logstream.ErrUnavailable) {
				return fmt.Errorf("%w; is the daemon running?", err)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Daemon listener address (defaults to webhook.bind)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Include daemon log records, not only encoder output")
	cmd.Flags().Int64Var(&opts.Filters.ItemID, "item", 0, "Only show output for this queue id")
	cmd.Flags().StringVar(&opts.Filters.Level, "level", "", "Only show log records at this level (with --all)")
	cmd.Flags().StringVar(&opts.Filters.Component, "component", "", "Only show log records from this component (with --all)")
	return cmd
}

func formatStreamEvent(evt logging.LogEvent) string {
	ts := evt.Timestamp.Local().Format("15:04:05")
	if evt.Kind == logging.EventKindEncoder {
		return fmt.Sprintf("%s #%d %s", ts, evt.ItemID, evt.Message)
	}
	parts := []string{ts, strings.ToUpper(dashIfEmpty(evt.Level))}
	if evt.Component != "" {
		parts = append(parts, "["+evt.Component+"]")
	}
	parts = append(parts, evt.Message)
	return strings.Join(parts, " ")
}
