package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"recast/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the transcode queue",
	}

	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueSizeCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueProcessCommand(ctx))

	return queueCmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var reqFlags requestFlags
	var contentID int64

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Enqueue a file for transcoding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source, err := resolveSourceFile(args[0])
			if err != nil {
				return err
			}
			req, err := reqFlags.request(cmd, cfg, source)
			if err != nil {
				return err
			}
			if contentID > 0 {
				req.ContentID = queue.ContentIDPtr(contentID)
			}

			return ctx.withStore(cmd, func(store *queue.Store) error {
				added, err := store.Add(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued #%d %s\n", added.ID, added.Path)
				return nil
			})
		},
	}

	reqFlags.register(cmd)
	cmd.Flags().Int64Var(&contentID, "content-id", 0, "Radarr movie or Sonarr series id to rescan afterwards")
	return cmd
}

func resolveSourceFile(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("source path is required")
	}
	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve source path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat source file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("source path %q is a directory", absPath)
	}
	return absPath, nil
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pending transcode requests, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(store *queue.Store) error {
				items, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(queueColumns, buildQueueRows(items)))
				return nil
			})
		},
	}
}

var queueColumns = []column{
	{title: "ID", right: true},
	{title: "Path"},
	{title: "Size", right: true},
	{title: "Languages"},
	{title: "Video"},
	{title: "Audio"},
	{title: "Content", right: true},
	{title: "Queued"},
}

func buildQueueRows(items []*queue.Request) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		size := "missing"
		if info, err := os.Stat(item.Path); err == nil {
			size = humanize.IBytes(uint64(info.Size()))
		}
		content := "-"
		if item.ContentID != nil {
			content = strconv.FormatInt(*item.ContentID, 10)
		}
		queued := "-"
		if !item.CreatedAt.IsZero() {
			queued = humanize.Time(item.CreatedAt)
		}
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			item.Path,
			size,
			dashIfEmpty(item.Languages),
			dashIfEmpty(item.VideoParams),
			dashIfEmpty(item.AudioParams),
			content,
			queued,
		})
	}
	return rows
}

func dashIfEmpty(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func newQueueSizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Print the number of pending requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(store *queue.Store) error {
				size, err := store.Size(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), size)
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>...",
		Aliases: []string{"rm"},
		Short:   "Remove requests by id",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(cmd, func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					item, err := store.GetByID(cmd.Context(), id)
					if errors.Is(err, queue.ErrNotFound) {
						fmt.Fprintf(out, "#%d not found\n", id)
						continue
					}
					if err != nil {
						return err
					}
					if err := store.Remove(cmd.Context(), id); err != nil {
						return err
					}
					fmt.Fprintf(out, "Removed #%d %s\n", id, item.Path)
				}
				return nil
			})
		},
	}
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(arg), "#"), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every pending request",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(store *queue.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s\n", removed, pluralize(removed, "entry", "entries"))
				return nil
			})
		},
	}
}

func pluralize(n int64, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
