package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"recast/internal/daemon"
	"recast/internal/notifications"
	"recast/internal/queue"
	"recast/internal/workflow"
)

func newQueueProcessCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Transcode the oldest request in the foreground (requires the daemon to be stopped)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lock, err := daemon.AcquireLock(cfg)
			if err != nil {
				if errors.Is(err, daemon.ErrLocked) {
					return errors.New("the daemon is running and owns the queue; stop it or let it process the entry")
				}
				return err
			}
			defer lock.Unlock()

			logger, err := ctx.cliLogger(cmd, logLevel)
			if err != nil {
				return err
			}

			return ctx.withStore(cmd, func(store *queue.Store) error {
				worker := daemon.NewWorker(cfg, store, logger, notifications.NewService(cfg), nil)
				out := cmd.OutOrStdout()
				for {
					outcome, err := worker.RunOnce(cmd.Context())
					if err != nil {
						return err
					}
					if outcome.Kind == workflow.OutcomeIdle {
						fmt.Fprintln(out, "Queue is empty")
						return nil
					}
					fmt.Fprintln(out, describeOutcome(outcome))
					if !all || outcome.Kind == workflow.OutcomeRetryLater || cmd.Context().Err() != nil {
						return nil
					}
				}
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Keep going until the queue is empty or an entry needs a retry")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level for this run")
	return cmd
}

func describeOutcome(outcome workflow.Outcome) string {
	switch outcome.Kind {
	case workflow.OutcomeCompleted:
		return fmt.Sprintf("#%d completed: %s", outcome.ItemID, outcome.Path)
	case workflow.OutcomeRetryLater:
		return fmt.Sprintf("#%d kept for retry (%s): %s", outcome.ItemID, outcome.Class, outcome.Reason)
	default:
		line := fmt.Sprintf("#%d dropped (%s): %s", outcome.ItemID, outcome.Class, outcome.Reason)
		if outcome.FailedLog != "" {
			line += fmt.Sprintf("\n  encoder log: %s", outcome.FailedLog)
		}
		return line
	}
}
