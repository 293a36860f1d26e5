package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recast/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification through every configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			settings := cfg.Notifications
			ntfy := strings.TrimSpace(settings.NtfyTopic) != ""
			pushover := strings.TrimSpace(settings.PushoverUser) != "" && strings.TrimSpace(settings.PushoverToken) != ""
			out := cmd.OutOrStdout()
			if !ntfy && !pushover {
				fmt.Fprintln(out, "No notification backend configured (set notifications.ntfy_topic or the pushover keys)")
				return nil
			}

			service := notifications.NewService(cfg)
			if err := service.Publish(cmd.Context(), notifications.EventTest, notifications.Payload{}); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintf(out, "Test notification sent (ntfy: %s, pushover: %s)\n", yesNo(ntfy), yesNo(pushover))
			return nil
		},
	}
}
